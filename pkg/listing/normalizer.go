// Package listing implements the filtered listing pipeline shared by every list
// endpoint: lenient query normalisation, SQL predicate assembly and offset
// pagination.
package listing

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Warning reports a query parameter that was ignored or replaced by a default.
type Warning struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// EnumFilter is the normalised form of an enum query parameter. Exactly one of
// Values and Exclude is populated when the filter is active.
type EnumFilter struct {
	Values  []string
	Exclude []string
}

// Active reports whether the filter constrains results.
func (f EnumFilter) Active() bool {
	return len(f.Values) > 0 || len(f.Exclude) > 0
}

// Normalizer turns raw string query parameters into typed filter values. Malformed
// values never fail the request; they are dropped and recorded as warnings.
type Normalizer struct {
	values       url.Values
	defaultLimit int
	maxLimit     int
	warnings     []Warning
}

// NewNormalizer wraps the raw query values.
func NewNormalizer(values url.Values) *Normalizer {
	if values == nil {
		values = url.Values{}
	}
	return &Normalizer{values: values, defaultLimit: DefaultLimit, maxLimit: MaxLimit}
}

// WithLimits overrides the page size defaults. Non-positive values keep the defaults.
func (n *Normalizer) WithLimits(defaultLimit, maxLimit int) *Normalizer {
	if maxLimit > 0 {
		n.maxLimit = maxLimit
	}
	if defaultLimit > 0 {
		n.defaultLimit = defaultLimit
	}
	if n.defaultLimit > n.maxLimit {
		n.defaultLimit = n.maxLimit
	}
	return n
}

// Warnings returns the accumulated warnings.
func (n *Normalizer) Warnings() []Warning {
	return n.warnings
}

func (n *Normalizer) warn(field, value, reason string) {
	n.warnings = append(n.warnings, Warning{Field: field, Value: value, Reason: reason})
}

func (n *Normalizer) raw(key string) string {
	return strings.TrimSpace(n.values.Get(key))
}

// String returns the trimmed value for key.
func (n *Normalizer) String(key string) string {
	return n.raw(key)
}

// Int parses an integer parameter. Absent and unparsable values yield nil.
func (n *Normalizer) Int(key string) *int {
	raw := n.raw(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		n.warn(key, raw, "not an integer")
		return nil
	}
	return &v
}

// IntInRange parses an integer and drops it when outside [min, max].
func (n *Normalizer) IntInRange(key string, min, max int) *int {
	v := n.Int(key)
	if v == nil {
		return nil
	}
	if *v < min || *v > max {
		n.warn(key, strconv.Itoa(*v), "out of range")
		return nil
	}
	return v
}

// Float parses a decimal parameter.
func (n *Normalizer) Float(key string) *float64 {
	raw := n.raw(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		n.warn(key, raw, "not a number")
		return nil
	}
	return &v
}

// UUID returns a canonical identifier or "" when absent or malformed.
func (n *Normalizer) UUID(key string) string {
	raw := n.raw(key)
	if raw == "" {
		return ""
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		n.warn(key, raw, "not a valid identifier")
		return ""
	}
	return id.String()
}

// Bool parses true/false/1/0.
func (n *Normalizer) Bool(key string) *bool {
	raw := strings.ToLower(n.raw(key))
	if raw == "" {
		return nil
	}
	var v bool
	switch raw {
	case "true", "1":
		v = true
	case "false", "0":
		v = false
	default:
		n.warn(key, raw, "not a boolean")
		return nil
	}
	return &v
}

// Date parses YYYY-MM-DD or RFC3339 values.
func (n *Normalizer) Date(key string) *time.Time {
	raw := n.raw(key)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t
	}
	n.warn(key, raw, "not a date")
	return nil
}

// Enum matches the parameter against allowed. When other is non-empty and the value
// equals it, the filter excludes every allowed value except other itself.
func (n *Normalizer) Enum(key string, allowed []string, other string) EnumFilter {
	raw := n.raw(key)
	if raw == "" {
		return EnumFilter{}
	}
	if looksLikeObject(raw) {
		n.warn(key, raw, "malformed value")
		return EnumFilter{}
	}
	value := strings.ToUpper(raw)
	if other != "" && value == strings.ToUpper(other) {
		exclude := make([]string, 0, len(allowed))
		for _, a := range allowed {
			if !strings.EqualFold(a, other) {
				exclude = append(exclude, a)
			}
		}
		return EnumFilter{Exclude: exclude}
	}
	for _, a := range allowed {
		if strings.EqualFold(a, value) {
			return EnumFilter{Values: []string{a}}
		}
	}
	n.warn(key, raw, "unsupported value")
	return EnumFilter{}
}

// looksLikeObject detects values produced by serialising an object into a query
// string, e.g. "[object Object]" or a JSON document.
func looksLikeObject(raw string) bool {
	if strings.EqualFold(raw, "[object Object]") {
		return true
	}
	if len(raw) < 2 {
		return false
	}
	first, last := raw[0], raw[len(raw)-1]
	return (first == '{' && last == '}') || (first == '[' && last == ']')
}
