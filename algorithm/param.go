package algorithm

import (
	"math"
	"reflect"
)

var (
	floatType  = reflect.TypeOf(float64(0))
	intType    = reflect.TypeOf(int(0))
	floatsType = reflect.TypeOf([]float64(nil))
)

// Descriptor declares one parameter of an algorithm.
type Descriptor struct {
	Name        string
	Default     any
	Type        reflect.Type
	Description string
	// Order positions the parameter in Params.Names; ties keep declaration order.
	Order int
	// Check is applied after the value has been normalised to Type.
	Check      func(any) bool
	Constraint string
}

func Float(name string, def float64, description string) Descriptor {
	return Descriptor{Name: name, Default: def, Type: floatType, Description: description}
}

func Int(name string, def int, description string) Descriptor {
	return Descriptor{Name: name, Default: def, Type: intType, Description: description}
}

// Floats declares a vector parameter. A nil default means "not set".
func Floats(name string, def []float64, description string) Descriptor {
	return Descriptor{Name: name, Default: def, Type: floatsType, Description: description}
}

// Where attaches a constraint to d.
func (d Descriptor) Where(constraint string, check func(any) bool) Descriptor {
	d.Constraint = constraint
	d.Check = check
	return d
}

// Positive constrains a numeric parameter to be > 0.
func (d Descriptor) Positive() Descriptor {
	return d.Where("must be > 0", func(v any) bool {
		switch x := v.(type) {
		case float64:
			return x > 0
		case int:
			return x > 0
		}
		return false
	})
}

// Increasing constrains a vector parameter to be nil or strictly increasing.
func (d Descriptor) Increasing() Descriptor {
	return d.Where("must be strictly increasing", func(v any) bool {
		xs, _ := v.([]float64)
		for i := 1; i < len(xs); i++ {
			if !(xs[i] > xs[i-1]) {
				return false
			}
		}
		return true
	})
}

func (d Descriptor) DefaultValue() any {
	return d.Default
}

// Validate reports whether v is acceptable for d.
func (d Descriptor) Validate(v any) bool {
	_, ok := d.normalize(v)
	return ok
}

// normalize converts v to the declared type and applies Check.
func (d Descriptor) normalize(v any) (any, bool) {
	n, ok := convert(d.Type, v)
	if !ok {
		return nil, false
	}
	if d.Check != nil && !d.Check(n) {
		return nil, false
	}
	return n, true
}

func convert(t reflect.Type, v any) (any, bool) {
	switch t {
	case nil:
		return v, true
	case floatType:
		f, ok := toFloat(v)
		if !ok || math.IsNaN(f) {
			return nil, false
		}
		return f, true
	case intType:
		switch x := v.(type) {
		case int:
			return x, true
		case int64:
			return int(x), true
		case int32:
			return int(x), true
		case float64:
			if x == math.Trunc(x) && !math.IsInf(x, 0) {
				return int(x), true
			}
		}
		return nil, false
	case floatsType:
		switch xs := v.(type) {
		case []float64:
			return append([]float64(nil), xs...), true
		case []any:
			out := make([]float64, len(xs))
			for i, x := range xs {
				f, ok := toFloat(x)
				if !ok {
					return nil, false
				}
				out[i] = f
			}
			return out, true
		}
		return nil, false
	}
	if reflect.TypeOf(v) == t {
		return v, true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	}
	return 0, false
}
