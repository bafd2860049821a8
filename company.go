package printone

import (
	"context"
	"fmt"
	"time"
)

type companyData struct {
	ID                    string     `json:"id"`
	FirstName             string     `json:"firstName"`
	LastName              string     `json:"lastName"`
	Email                 string     `json:"email"`
	InvoiceEmail          string     `json:"invoiceEmail"`
	FinancialContactEmail string     `json:"financialContactEmail"`
	FinancialContactName  string     `json:"financialContactName"`
	TechnicalContactEmail string     `json:"technicalContactEmail"`
	TechnicalContactName  string     `json:"technicalContactName"`
	PhoneNumber           string     `json:"phoneNumber"`
	CompanyName           string     `json:"companyName"`
	Street                string     `json:"street"`
	HouseNumber           string     `json:"houseNumber"`
	Country               string     `json:"country"`
	PostalCode            string     `json:"postalCode"`
	City                  string     `json:"city"`
	CocNumber             string     `json:"cocNumber"`
	VatNumber             string     `json:"vatNumber"`
	IBAN                  string     `json:"iban"`
	CanBeBilled           bool       `json:"canBeBilled"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
	EmailVerifiedAt       *time.Time `json:"emailVerifiedAt"`
}

// Company is the account the API key belongs to.
type Company struct {
	s    *shared
	data companyData
}

func newCompany(s *shared, data companyData) *Company {
	return &Company{s: s, data: data}
}

func (c *Company) ID() string                    { return c.data.ID }
func (c *Company) FirstName() string             { return c.data.FirstName }
func (c *Company) LastName() string              { return c.data.LastName }
func (c *Company) Email() string                 { return c.data.Email }
func (c *Company) InvoiceEmail() string          { return c.data.InvoiceEmail }
func (c *Company) FinancialContactEmail() string { return c.data.FinancialContactEmail }
func (c *Company) FinancialContactName() string  { return c.data.FinancialContactName }
func (c *Company) TechnicalContactEmail() string { return c.data.TechnicalContactEmail }
func (c *Company) TechnicalContactName() string  { return c.data.TechnicalContactName }
func (c *Company) PhoneNumber() string           { return c.data.PhoneNumber }
func (c *Company) CompanyName() string           { return c.data.CompanyName }
func (c *Company) Street() string                { return c.data.Street }
func (c *Company) HouseNumber() string           { return c.data.HouseNumber }
func (c *Company) Country() string               { return c.data.Country }
func (c *Company) PostalCode() string            { return c.data.PostalCode }
func (c *Company) City() string                  { return c.data.City }
func (c *Company) CocNumber() string             { return c.data.CocNumber }
func (c *Company) VatNumber() string             { return c.data.VatNumber }
func (c *Company) IBAN() string                  { return c.data.IBAN }
func (c *Company) CanBeBilled() bool             { return c.data.CanBeBilled }
func (c *Company) CreatedAt() time.Time          { return c.data.CreatedAt }
func (c *Company) UpdatedAt() time.Time          { return c.data.UpdatedAt }

// EmailVerifiedAt returns nil while the email address is unverified.
func (c *Company) EmailVerifiedAt() *time.Time { return c.data.EmailVerifiedAt }

// Self retrieves the company the API key belongs to.
func (c *Client) Self(ctx context.Context) (*Company, error) {
	data, err := getJSON[companyData](ctx, c.s, "companies/me", nil)
	if err != nil {
		return nil, fmt.Errorf("getting company: %w", err)
	}
	return newCompany(c.s, data), nil
}
