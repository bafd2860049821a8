package printone

// Address is a postal address as accepted and returned by the API.
type Address struct {
	Name         string `json:"name" validate:"required"`
	Address      string `json:"address" validate:"required"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	PostalCode   string `json:"postalCode" validate:"required"`
	City         string `json:"city" validate:"required"`
	Country      string `json:"country" validate:"required"`
}
