package payload

// Predicate reports whether a resolved value should be treated as excluded,
// for exclusion criteria that plain literals cannot express (e.g. "an object
// whose values are all null").
type Predicate func(any) bool

// Exclusion is the set of values that do NOT count as a meaningful presence
// for a field: a value is excluded when it equals any literal or matches any
// predicate.
type Exclusion struct {
	literals   []any
	predicates []Predicate
}

// Default exclusion sets by semantic field type.
var (
	// ExcludeAbsent excludes only null/absent.
	ExcludeAbsent = Exclusion{literals: []any{nil}}
	// ExcludeString additionally excludes the empty string.
	ExcludeString = Exclusion{literals: []any{nil, ""}}
	// ExcludeList additionally excludes empty sequences.
	ExcludeList = Exclusion{literals: []any{nil}, predicates: []Predicate{emptyList}}
	// ExcludeObject additionally excludes empty objects and all-null objects.
	ExcludeObject = Exclusion{literals: []any{nil}, predicates: []Predicate{emptyMap, noValueMap}}
)

// With returns a copy of the exclusion extended with extra literals, for
// per-field sentinels like "unknown" or "notspecified".
func (e Exclusion) With(literals ...any) Exclusion {
	out := Exclusion{
		literals:   append(append([]any{}, e.literals...), literals...),
		predicates: e.predicates,
	}
	return out
}

// Excludes reports whether v is a member of the exclusion set.
func (e Exclusion) Excludes(v any) bool {
	for _, lit := range e.literals {
		if equal(v, lit) {
			return true
		}
	}
	for _, pred := range e.predicates {
		if v != nil && pred(v) {
			return true
		}
	}
	return false
}

// Accept reports whether v counts as meaningfully present against excl.
func Accept(v any, excl Exclusion) bool {
	return !excl.Excludes(v)
}

// Indicator declares one boolean has_<Field> column.
type Indicator struct {
	Field   string
	Exclude Exclusion
}

// Indicators evaluates a static indicator table against a payload. Every
// declared field yields exactly one "has_" + Field entry.
func Indicators(p Payload, table []Indicator) map[string]bool {
	out := make(map[string]bool, len(table))
	for _, ind := range table {
		v, _ := Resolve(p, ind.Field)
		out["has_"+ind.Field] = Accept(v, ind.Exclude)
	}
	return out
}

// equal compares a resolved JSON value with an exclusion literal. Numbers are
// compared as float64 since JSON decoding and Go literals disagree on types.
func equal(v, lit any) bool {
	if v == nil || lit == nil {
		return v == nil && lit == nil
	}
	if vf, ok := asFloat(v); ok {
		if lf, ok := asFloat(lit); ok {
			return vf == lf
		}
		return false
	}
	return v == lit
}

func emptyList(v any) bool {
	l, ok := v.([]any)
	return ok && len(l) == 0
}

func emptyMap(v any) bool {
	m, ok := v.(map[string]any)
	return ok && len(m) == 0
}

func noValueMap(v any) bool {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return false
	}
	for _, vv := range m {
		if vv != nil {
			return false
		}
	}
	return true
}
