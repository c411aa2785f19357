package algorithm

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

// UnknownPolicy decides what Resolve does with undeclared parameter names.
type UnknownPolicy int

const (
	RejectUnknown UnknownPolicy = iota
	// KeepUnknown retains undeclared values verbatim; they take part in the cache key.
	KeepUnknown
)

// Params is a resolved, immutable parameter set.
type Params struct {
	values map[string]any
	names  []string
}

// Resolve merges sources over the declared defaults, later sources winning.
// A nil value in a source leaves the previous value in place.
func Resolve(descs []Descriptor, policy UnknownPolicy, sources ...map[string]any) (Params, error) {
	byName := make(map[string]Descriptor, len(descs))
	values := make(map[string]any, len(descs))
	for _, d := range descs {
		byName[d.Name] = d
		values[d.Name] = d.Default
	}

	var errs error
	for _, src := range sources {
		for _, k := range sortedKeys(src) {
			v := src[k]
			if v == nil {
				continue
			}
			d, declared := byName[k]
			if !declared {
				if policy == KeepUnknown {
					values[k] = v
					continue
				}
				errs = multierr.Append(errs, &ParameterError{Name: k, Value: v, Constraint: "unknown parameter"})
				continue
			}
			n, ok := d.normalize(v)
			if !ok {
				errs = multierr.Append(errs, &ParameterError{Name: k, Value: v, Constraint: constraintOf(d)})
				continue
			}
			values[k] = n
		}
	}
	if errs != nil {
		return Params{}, errs
	}
	return Params{values: values, names: orderNames(descs, values)}, nil
}

func constraintOf(d Descriptor) string {
	typ := "any"
	if d.Type != nil {
		typ = d.Type.String()
	}
	if d.Constraint == "" {
		return "must be " + typ
	}
	return typ + ", " + d.Constraint
}

func orderNames(descs []Descriptor, values map[string]any) []string {
	declared := append([]Descriptor(nil), descs...)
	sort.SliceStable(declared, func(i, j int) bool { return declared[i].Order < declared[j].Order })

	names := make([]string, 0, len(values))
	seen := make(map[string]bool, len(declared))
	for _, d := range declared {
		names = append(names, d.Name)
		seen[d.Name] = true
	}
	for _, k := range sortedKeys(values) {
		if !seen[k] {
			names = append(names, k)
		}
	}
	return names
}

func (p Params) Get(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Float returns a float parameter, or NaN when it is absent.
func (p Params) Float(name string) float64 {
	if f, ok := toFloat(p.values[name]); ok {
		return f
	}
	return math.NaN()
}

func (p Params) Int(name string) int {
	if i, ok := p.values[name].(int); ok {
		return i
	}
	return 0
}

func (p Params) Floats(name string) []float64 {
	xs, _ := p.values[name].([]float64)
	return append([]float64(nil), xs...)
}

// Names lists declared parameters first, then any kept unknown ones.
func (p Params) Names() []string {
	return append([]string(nil), p.names...)
}

func (p Params) Len() int { return len(p.values) }

// Map returns a copy of the values.
func (p Params) Map() map[string]any {
	m := make(map[string]any, len(p.values))
	for k, v := range p.values {
		m[k] = v
	}
	return m
}

// String renders the canonical form {name:value ...} with names sorted.
func (p Params) String() string {
	return canonical(p.values)
}

// Subset renders name=value pairs for the given names, in that order.
func (p Params) Subset(names []string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if v, ok := p.values[n]; ok {
			parts = append(parts, n+"="+canonical(v))
		}
	}
	return strings.Join(parts, ",")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// canonical renders v deterministically: strings unquoted but escaped,
// Stringers through String, maps with sorted keys. Distinct values render
// distinctly.
func canonical(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case fmt.Stringer:
		return escape(x.String())
	case string:
		return escape(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case []float64:
		parts := make([]string, len(x))
		for i, f := range x {
			parts[i] = canonical(f)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case []string:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = escape(e)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = canonical(e)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case map[string]any:
		parts := make([]string, 0, len(x))
		for _, k := range sortedKeys(x) {
			parts = append(parts, escape(k)+":"+canonical(x[k]))
		}
		return "{" + strings.Join(parts, " ") + "}"
	}
	return fmt.Sprintf("%v", v)
}

// delimiters are the characters canonical composes values with.
const delimiters = " :{}[],=\\"

// escape backslash-escapes the delimiters in s. A string that would read as a
// number, a bool or nil is prefixed with a backslash as well.
func escape(s string) string {
	var b strings.Builder
	if readsAsScalar(s) {
		b.WriteByte('\\')
	}
	for _, r := range s {
		if strings.ContainsRune(delimiters, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func readsAsScalar(s string) bool {
	if s == "<nil>" {
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	_, err := strconv.ParseBool(s)
	return err == nil
}
