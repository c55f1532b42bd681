package listing

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	roomWithBuildingPattern = regexp.MustCompile(`(\d+)\s*\(([^)]+)\)`)
	lettersOnlyPattern      = regexp.MustCompile(`^[\p{L}\s]+$`)
	likeEscaper             = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

// Predicate accumulates SQL conditions joined by AND, binding every value as a
// PostgreSQL positional parameter.
type Predicate struct {
	conditions []string
	args       []interface{}
}

// NewPredicate returns an empty predicate. Initial args are bound before any
// condition, for queries whose joins already reference $1..$n.
func NewPredicate(initialArgs ...interface{}) *Predicate {
	return &Predicate{args: append([]interface{}(nil), initialArgs...)}
}

func (p *Predicate) bind(value interface{}) string {
	p.args = append(p.args, value)
	return fmt.Sprintf("$%d", len(p.args))
}

// Eq adds column = value.
func (p *Predicate) Eq(column string, value interface{}) *Predicate {
	p.conditions = append(p.conditions, fmt.Sprintf("%s = %s", column, p.bind(value)))
	return p
}

// Gte adds column >= value.
func (p *Predicate) Gte(column string, value interface{}) *Predicate {
	p.conditions = append(p.conditions, fmt.Sprintf("%s >= %s", column, p.bind(value)))
	return p
}

// Lte adds column <= value.
func (p *Predicate) Lte(column string, value interface{}) *Predicate {
	p.conditions = append(p.conditions, fmt.Sprintf("%s <= %s", column, p.bind(value)))
	return p
}

// Contains adds a case-insensitive substring match.
func (p *Predicate) Contains(column, value string) *Predicate {
	p.conditions = append(p.conditions, fmt.Sprintf("%s ILIKE %s", column, p.bind(likePattern(value))))
	return p
}

// AnyContains matches value as a substring of any of the columns.
func (p *Predicate) AnyContains(value string, columns ...string) *Predicate {
	if len(columns) == 0 {
		return p
	}
	placeholder := p.bind(likePattern(value))
	parts := make([]string, len(columns))
	for i, column := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE %s", column, placeholder)
	}
	p.conditions = append(p.conditions, "("+strings.Join(parts, " OR ")+")")
	return p
}

// In adds column IN (values...).
func (p *Predicate) In(column string, values ...string) *Predicate {
	if len(values) == 0 {
		return p
	}
	p.conditions = append(p.conditions, fmt.Sprintf("%s IN (%s)", column, p.bindAll(values)))
	return p
}

// NotIn adds column NOT IN (values...).
func (p *Predicate) NotIn(column string, values ...string) *Predicate {
	if len(values) == 0 {
		return p
	}
	p.conditions = append(p.conditions, fmt.Sprintf("%s NOT IN (%s)", column, p.bindAll(values)))
	return p
}

func (p *Predicate) bindAll(values []string) string {
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = p.bind(v)
	}
	return strings.Join(placeholders, ", ")
}

// Enum applies a normalised enum filter.
func (p *Predicate) Enum(column string, filter EnumFilter) *Predicate {
	if len(filter.Values) > 0 {
		return p.In(column, filter.Values...)
	}
	return p.NotIn(column, filter.Exclude...)
}

// Raw adds a condition without parameters.
func (p *Predicate) Raw(condition string) *Predicate {
	p.conditions = append(p.conditions, condition)
	return p
}

// Cond adds a condition whose %[1]s verbs are replaced by the placeholder bound to value.
func (p *Predicate) Cond(format string, value interface{}) *Predicate {
	p.conditions = append(p.conditions, fmt.Sprintf(format, p.bind(value)))
	return p
}

// RoomSearch interprets raw as a room reference. The first matching form wins:
// "306 (B3)" filters on room number and building name, a letters-only string
// filters on building name, anything else on room number.
func (p *Predicate) RoomSearch(raw, numberColumn, buildingColumn string) *Predicate {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return p
	}
	if m := roomWithBuildingPattern.FindStringSubmatch(raw); m != nil {
		p.Contains(numberColumn, m[1])
		return p.Contains(buildingColumn, strings.TrimSpace(m[2]))
	}
	if lettersOnlyPattern.MatchString(raw) {
		return p.Contains(buildingColumn, raw)
	}
	return p.Contains(numberColumn, raw)
}

// Len returns the number of conditions.
func (p *Predicate) Len() int {
	return len(p.conditions)
}

// Args returns the bound parameters in placeholder order.
func (p *Predicate) Args() []interface{} {
	return p.args
}

// Where renders " WHERE a AND b" or "" when no condition was added.
func (p *Predicate) Where() string {
	if len(p.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.conditions, " AND ")
}

func likePattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}
