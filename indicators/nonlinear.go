package indicators

import (
	"context"
	"math"

	"github.com/on-the-ground/physio_ive_go/algorithm"
	"github.com/on-the-ground/physio_ive_go/series"
)

// PoincareSD1 is the dispersion of the Poincaré plot across the identity line.
type PoincareSD1 struct{ algorithm.Base }

func NewPoincareSD1() *PoincareSD1 { return &PoincareSD1{plain("PoincareSD1")} }

func (p *PoincareSD1) Compute(ctx context.Context, s *series.Series) (any, error) {
	sdsd, err := algorithm.Get[float64](ctx, NewSDSD(), s)
	if err != nil {
		return nil, err
	}
	return sdsd / math.Sqrt2, nil
}

// PoincareSD2 is the dispersion of the Poincaré plot along the identity line.
type PoincareSD2 struct{ algorithm.Base }

func NewPoincareSD2() *PoincareSD2 { return &PoincareSD2{plain("PoincareSD2")} }

func (p *PoincareSD2) Compute(ctx context.Context, s *series.Series) (any, error) {
	sd, err := algorithm.Get[float64](ctx, NewStDev(), s)
	if err != nil {
		return nil, err
	}
	sdsd, err := algorithm.Get[float64](ctx, NewSDSD(), s)
	if err != nil {
		return nil, err
	}
	v := 2*sd*sd - sdsd*sdsd/2
	if v < 0 {
		// float error on near-constant input
		v = 0
	}
	return math.Sqrt(v), nil
}

// PoincareSD12 is SD1 / SD2.
type PoincareSD12 struct{ algorithm.Base }

func NewPoincareSD12() *PoincareSD12 { return &PoincareSD12{plain("PoincareSD12")} }

func (p *PoincareSD12) Compute(ctx context.Context, s *series.Series) (any, error) {
	sd1, err := algorithm.Get[float64](ctx, NewPoincareSD1(), s)
	if err != nil {
		return nil, err
	}
	sd2, err := algorithm.Get[float64](ctx, NewPoincareSD2(), s)
	if err != nil {
		return nil, err
	}
	if sd2 == 0 {
		return algorithm.Degenerate(ctx, p, "SD2 is zero"), nil
	}
	return sd1 / sd2, nil
}
