package printone

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// isoMillis matches the ISO-8601 form the API expects in filters and bodies.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// SortOrder is the direction of a sort field.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// Sort is one field of a sortBy list.
type Sort struct {
	Field string
	Order SortOrder
}

func (s Sort) String() string {
	return s.Field + ":" + string(s.Order)
}

// ParseSort parses the compact "field:ORDER" form.
func ParseSort(s string) (Sort, error) {
	field, order, ok := strings.Cut(s, ":")
	if !ok || field == "" {
		return Sort{}, fmt.Errorf("parsing sort %q: expected field:ASC or field:DESC", s)
	}
	switch o := SortOrder(strings.ToUpper(order)); o {
	case SortAsc, SortDesc:
		return Sort{Field: field, Order: o}, nil
	default:
		return Sort{}, fmt.Errorf("parsing sort %q: unknown order %q", s, order)
	}
}

// ListOptions controls paging and ordering of list endpoints.
type ListOptions struct {
	Limit  int
	Page   int
	SortBy []Sort
}

// ContainsFilter matches a single value, any of Some, or all of All.
// Exactly one of the three should be set.
type ContainsFilter struct {
	Value string
	Some  []string
	All   []string
}

// DateFilter bounds a date field. Zero times are treated as absent.
type DateFilter struct {
	From time.Time
	To   time.Time
}

// EqualsFilter matches a value, or a null field when Null is set.
type EqualsFilter struct {
	Value string
	Null  bool
}

// Equals returns a filter matching v.
func Equals(v string) *EqualsFilter { return &EqualsFilter{Value: v} }

// IsNull returns a filter matching a null field.
func IsNull() *EqualsFilter { return &EqualsFilter{Null: true} }

// Bool returns a pointer to b, for optional boolean filters.
func Bool(b bool) *bool { return &b }

func filterKey(field string) string {
	return "filter." + field
}

func encodeIn[S ~string](field string, values []S) url.Values {
	q := url.Values{}
	if len(values) == 0 {
		return q
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	q.Set(filterKey(field), "$in:"+strings.Join(parts, ","))
	return q
}

func encodeContains(field string, f *ContainsFilter) url.Values {
	q := url.Values{}
	switch {
	case f == nil:
	case f.Value != "":
		q.Set(filterKey(field), "$contains:"+f.Value)
	case len(f.Some) > 0:
		// The server spells contains-some with a double s.
		q.Set(filterKey(field), "$containss:"+strings.Join(f.Some, ","))
	case len(f.All) > 0:
		q.Set(filterKey(field), "$contains:"+strings.Join(f.All, ","))
	}
	return q
}

func encodeDateRange(field string, f DateFilter) url.Values {
	q := url.Values{}
	switch {
	case !f.From.IsZero() && !f.To.IsZero():
		q.Set(filterKey(field), "$btw:"+formatTime(f.From)+","+formatTime(f.To))
	case !f.From.IsZero():
		q.Set(filterKey(field), "$gte:"+formatTime(f.From))
	case !f.To.IsZero():
		q.Set(filterKey(field), "$lte:"+formatTime(f.To))
	}
	return q
}

// encodeInverted maps a boolean onto operator or its negation. With invert
// set, true selects the negation.
func encodeInverted(field string, value *bool, operator string, invert bool) url.Values {
	q := url.Values{}
	if value == nil {
		return q
	}
	if *value != invert {
		q.Set(filterKey(field), operator)
	} else {
		q.Set(filterKey(field), "$not:"+operator)
	}
	return q
}

func encodeEquals(field string, f *EqualsFilter) url.Values {
	q := url.Values{}
	switch {
	case f == nil:
	case f.Null:
		q.Set(filterKey(field), "$null")
	default:
		q.Set(filterKey(field), "$eq:"+f.Value)
	}
	return q
}

func encodeBool(field string, value *bool) url.Values {
	q := url.Values{}
	if value != nil {
		q.Set(filterKey(field), "$eq:"+strconv.FormatBool(*value))
	}
	return q
}

func encodeSort(o ListOptions) url.Values {
	q := url.Values{}
	if len(o.SortBy) > 0 {
		parts := make([]string, len(o.SortBy))
		for i, s := range o.SortBy {
			parts[i] = s.String()
		}
		q.Set("sortBy", strings.Join(parts, ","))
	}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	return q
}

func mergeQuery(parts ...url.Values) url.Values {
	q := url.Values{}
	for _, p := range parts {
		for k, vs := range p {
			q[k] = append(q[k], vs...)
		}
	}
	return q
}

func formatTime(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// TemplateQuery filters Client.Templates. Deleted selects deleted templates
// when true and live ones when false.
type TemplateQuery struct {
	ListOptions
	Name    []string
	Labels  *ContainsFilter
	Format  []Format
	Deleted *bool
}

func (q TemplateQuery) values() url.Values {
	return mergeQuery(
		encodeSort(q.ListOptions),
		encodeIn("name", q.Name),
		encodeContains("labels", q.Labels),
		encodeIn("format", q.Format),
		encodeInverted("deletedAt", q.Deleted, "$null", true),
	)
}

// OrderQuery filters order listings. Anonymized takes precedence over
// AnonymizedAt.
type OrderQuery struct {
	ListOptions
	FriendlyStatus []FriendlyStatus
	BillingID      []string
	Format         []Format
	Finish         []Finish
	IsBillable     *bool
	CreatedAt      DateFilter
	AnonymizedAt   DateFilter
	Anonymized     *bool
	BatchID        *EqualsFilter
	CsvOrderID     *EqualsFilter
}

func (q OrderQuery) values() url.Values {
	anonymized := encodeDateRange("anonymizedAt", q.AnonymizedAt)
	if q.Anonymized != nil {
		anonymized = encodeInverted("anonymizedAt", q.Anonymized, "$null", true)
	}
	return mergeQuery(
		encodeSort(q.ListOptions),
		encodeIn("friendlyStatus", q.FriendlyStatus),
		encodeIn("billingId", q.BillingID),
		encodeIn("format", q.Format),
		encodeIn("finish", q.Finish),
		encodeBool("isBillable", q.IsBillable),
		encodeDateRange("createdAt", q.CreatedAt),
		anonymized,
		encodeEquals("batchId", q.BatchID),
		encodeEquals("csvOrderId", q.CsvOrderID),
	)
}

// BatchQuery filters Client.Batches. Scheduled takes precedence over
// SendDate.
type BatchQuery struct {
	ListOptions
	Name        *ContainsFilter
	BillingID   []string
	IsBillable  *bool
	CreatedAt   DateFilter
	UpdatedAt   DateFilter
	SendDate    DateFilter
	Scheduled   *bool
	Finish      []Finish
	TemplateIDs []string
	Status      []BatchStatus
}

func (q BatchQuery) values() url.Values {
	sendDate := encodeDateRange("sendDate", q.SendDate)
	if q.Scheduled != nil {
		sendDate = encodeInverted("sendDate", q.Scheduled, "$null", true)
	}
	return mergeQuery(
		encodeSort(q.ListOptions),
		encodeContains("name", q.Name),
		encodeIn("billingId", q.BillingID),
		encodeBool("isBillable", q.IsBillable),
		encodeDateRange("createdAt", q.CreatedAt),
		encodeDateRange("updatedAt", q.UpdatedAt),
		sendDate,
		encodeIn("finish", q.Finish),
		encodeIn("templateId", q.TemplateIDs),
		encodeIn("status", q.Status),
	)
}

// CouponQuery filters Client.Coupons.
type CouponQuery struct {
	ListOptions
	Name *ContainsFilter
}

func (q CouponQuery) values() url.Values {
	return mergeQuery(
		encodeSort(q.ListOptions),
		encodeContains("name", q.Name),
	)
}

// CustomFileQuery pages Client.CustomFiles.
type CustomFileQuery struct {
	ListOptions
}

func (q CustomFileQuery) values() url.Values {
	return encodeSort(q.ListOptions)
}
