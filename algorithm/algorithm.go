package algorithm

import (
	"context"
	"fmt"

	"github.com/on-the-ground/physio_ive_go/log"
	"github.com/on-the-ground/physio_ive_go/series"
	"github.com/on-the-ground/physio_ive_go/shared/helper"
)

// Algorithm is a named, parameterised, pure computation over a series.
type Algorithm interface {
	Name() string
	Params() Params
	Compute(ctx context.Context, s *series.Series) (any, error)
}

// Indicator is an algorithm producing one value per series, usually a float64.
type Indicator interface {
	Algorithm
	// UsedParams lists the parameters that distinguish two instances in a label.
	UsedParams() []string
}

// Base carries the name and resolved parameters of a concrete algorithm.
// Concrete algorithms embed it and provide Compute.
type Base struct {
	name   string
	params Params
	descs  []Descriptor
}

// NewBase resolves sources (caller mapping, then overrides) over descs.
func NewBase(name string, descs []Descriptor, policy UnknownPolicy, sources ...map[string]any) (Base, error) {
	params, err := Resolve(descs, policy, sources...)
	if err != nil {
		return Base{}, fmt.Errorf("%s: %w", name, err)
	}
	return Base{name: name, params: params, descs: descs}, nil
}

func (b Base) Name() string { return b.name }

func (b Base) Params() Params { return b.params }

func (b Base) Descriptors() []Descriptor {
	return append([]Descriptor(nil), b.descs...)
}

// UsedParams defaults to every declared parameter.
func (b Base) UsedParams() []string {
	names := make([]string, len(b.descs))
	for i, d := range b.descs {
		names[i] = d.Name
	}
	return names
}

func (b Base) Compute(context.Context, *series.Series) (any, error) {
	return nil, fmt.Errorf("%w: %s", ErrAbstractInstantiation, b.name)
}

// Invoke evaluates a on s through the cache of s.
func Invoke(ctx context.Context, a Algorithm, s *series.Series) (any, error) {
	return Evaluate(ctx, a, s, true)
}

// Evaluate runs a on s, consulting and filling the cache of s when useCache is set.
func Evaluate(ctx context.Context, a Algorithm, s *series.Series, useCache bool) (any, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil series", ErrTypeWrongType)
	}
	switch a.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil algorithm", ErrTypeWrongType)
	case Base, *Base:
		return nil, fmt.Errorf("%w: %T", ErrAbstractInstantiation, a)
	}
	if !useCache {
		return a.Compute(ctx, s)
	}
	return GetOrCompute(ctx, s, a)
}

// Get is Invoke with the result asserted to T.
func Get[T any](ctx context.Context, a Algorithm, s *series.Series) (T, error) {
	return helper.GetTypedValueOf[T](func() (any, error) {
		return Invoke(ctx, a, s)
	})
}

func logMiss(ctx context.Context, a Algorithm, s *series.Series) {
	log.Log(ctx, log.LogDebug, "cache miss", map[string]interface{}{
		"algorithm": a.Name(),
		"params":    a.Params().String(),
		"series":    s.ID().String(),
	})
}
