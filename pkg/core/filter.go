package core

import (
	"net/url"
	"strconv"
	"strings"
)

// FilterKey is a recognized filter parameter, spelled as on the wire.
type FilterKey string

const (
	FilterStatus       FilterKey = "status"
	FilterJobType      FilterKey = "job_type"
	FilterLocationType FilterKey = "location_type"
	FilterSalaryMin    FilterKey = "salary_min"
	FilterSalaryMax    FilterKey = "salary_max"
	FilterCompany      FilterKey = "company"
	FilterDateCreated  FilterKey = "date_created"
)

// filterKeys fixes the canonical order of a built query.
var filterKeys = [...]FilterKey{
	FilterStatus,
	FilterJobType,
	FilterLocationType,
	FilterSalaryMin,
	FilterSalaryMax,
	FilterCompany,
	FilterDateCreated,
}

// FilterKeys returns the recognized keys in canonical order.
func FilterKeys() []FilterKey {
	out := make([]FilterKey, len(filterKeys))
	copy(out, filterKeys[:])
	return out
}

// ParseFilterKey accepts both the wire spelling ("job_type") and the
// camelCase spelling ("jobType").
func ParseFilterKey(s string) (FilterKey, error) {
	n := normalizeWord(s)
	for _, k := range filterKeys {
		if n == normalizeWord(string(k)) {
			return k, nil
		}
	}
	return "", &ValidationError{Field: "filter", Reason: "unknown filter key " + strconv.Quote(s)}
}

// FilterSpec is the user's filter selection. Empty fields are unset.
// Values are opaque to the engine; the server parses them.
type FilterSpec struct {
	Status       string `json:"status,omitempty" yaml:"status,omitempty"`
	JobType      string `json:"job_type,omitempty" yaml:"job_type,omitempty"`
	LocationType string `json:"location_type,omitempty" yaml:"location_type,omitempty"`
	SalaryMin    string `json:"salary_min,omitempty" yaml:"salary_min,omitempty"`
	SalaryMax    string `json:"salary_max,omitempty" yaml:"salary_max,omitempty"`
	Company      string `json:"company,omitempty" yaml:"company,omitempty"`
	DateCreated  string `json:"date_created,omitempty" yaml:"date_created,omitempty"`
}

func (f *FilterSpec) field(k FilterKey) *string {
	switch k {
	case FilterStatus:
		return &f.Status
	case FilterJobType:
		return &f.JobType
	case FilterLocationType:
		return &f.LocationType
	case FilterSalaryMin:
		return &f.SalaryMin
	case FilterSalaryMax:
		return &f.SalaryMax
	case FilterCompany:
		return &f.Company
	case FilterDateCreated:
		return &f.DateCreated
	}
	return nil
}

// Get returns the value for k, or "" when k is unset or unknown.
func (f FilterSpec) Get(k FilterKey) string {
	if p := f.field(k); p != nil {
		return *p
	}
	return ""
}

// With returns a copy of f with k set to v. Unknown keys are ignored.
func (f FilterSpec) With(k FilterKey, v string) FilterSpec {
	if p := f.field(k); p != nil {
		*p = v
	}
	return f
}

// Without returns a copy of f with k cleared.
func (f FilterSpec) Without(k FilterKey) FilterSpec {
	return f.With(k, "")
}

// IsZero reports whether no filter is active.
func (f FilterSpec) IsZero() bool {
	return len(BuildQuery(f)) == 0
}

// QueryParam is one key/value pair of a built query.
type QueryParam struct {
	Key   FilterKey
	Value string
}

// Query is a canonical, order-stable filter query.
type Query []QueryParam

// BuildQuery keeps only the keys of spec that carry a value, in canonical
// key order. Whitespace-only values count as unset; values are otherwise
// passed through verbatim.
func BuildQuery(spec FilterSpec) Query {
	q := Query{}
	for _, k := range filterKeys {
		v := spec.Get(k)
		if strings.TrimSpace(v) == "" {
			continue
		}
		q = append(q, QueryParam{Key: k, Value: v})
	}
	return q
}

// Encode renders q as a URL query string. Unlike url.Values.Encode it
// keeps the canonical key order instead of sorting.
func (q Query) Encode() string {
	var sb strings.Builder
	for i, p := range q {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(string(p.Key)))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}

// Spec reverses BuildQuery.
func (q Query) Spec() FilterSpec {
	var f FilterSpec
	for _, p := range q {
		f = f.With(p.Key, p.Value)
	}
	return f
}
