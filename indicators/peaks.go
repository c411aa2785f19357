package indicators

import (
	"context"
	"math"

	"github.com/on-the-ground/physio_ive_go/algorithm"
	"github.com/on-the-ground/physio_ive_go/series"
	"github.com/on-the-ground/physio_ive_go/tools"
)

// PeaksConfig configures PeaksMax, PeaksMin, PeaksMean and PeaksNum.
type PeaksConfig = tools.PeakConfig

// PeakShapeConfig configures the Duration* and Slope* indicators.
type PeakShapeConfig = tools.SelectionConfig

// peaksIndicator is shared by the indicators summarising detected maxima.
type peaksIndicator struct {
	algorithm.Base
}

func newPeaksBase(name string, sources ...map[string]any) (peaksIndicator, error) {
	b, err := algorithm.NewBase(name, tools.PeakDescriptors(), algorithm.RejectUnknown, sources...)
	return peaksIndicator{b}, err
}

// maxima returns the detected maximum values, or false after logging a warning.
func (p peaksIndicator) maxima(ctx context.Context, self algorithm.Algorithm, s *series.Series) ([]float64, bool, error) {
	detection, err := tools.NewPeakDetection(tools.PeakConfig{Delta: p.Params().Float("delta")})
	if err != nil {
		return nil, false, err
	}
	peaks, err := algorithm.Get[tools.Peaks](ctx, detection, s)
	if err != nil {
		return nil, false, err
	}
	if len(peaks.Maxima) == 0 {
		algorithm.Degenerate(ctx, self, "no peaks detected")
		return nil, false, nil
	}
	return peaks.MaxValues(), true, nil
}

type PeaksMax struct{ peaksIndicator }

func NewPeaksMax(cfg PeaksConfig) (*PeaksMax, error) {
	b, err := newPeaksBase("PeaksMax", cfg.Map())
	if err != nil {
		return nil, err
	}
	return &PeaksMax{b}, nil
}

func (p *PeaksMax) Compute(ctx context.Context, s *series.Series) (any, error) {
	return p.summarise(ctx, p, s, maxOf)
}

type PeaksMin struct{ peaksIndicator }

func NewPeaksMin(cfg PeaksConfig) (*PeaksMin, error) {
	b, err := newPeaksBase("PeaksMin", cfg.Map())
	if err != nil {
		return nil, err
	}
	return &PeaksMin{b}, nil
}

func (p *PeaksMin) Compute(ctx context.Context, s *series.Series) (any, error) {
	return p.summarise(ctx, p, s, minOf)
}

type PeaksMean struct{ peaksIndicator }

func NewPeaksMean(cfg PeaksConfig) (*PeaksMean, error) {
	b, err := newPeaksBase("PeaksMean", cfg.Map())
	if err != nil {
		return nil, err
	}
	return &PeaksMean{b}, nil
}

func (p *PeaksMean) Compute(ctx context.Context, s *series.Series) (any, error) {
	return p.summarise(ctx, p, s, mean)
}

// PeaksNum counts the detected maxima.
type PeaksNum struct{ peaksIndicator }

func NewPeaksNum(cfg PeaksConfig) (*PeaksNum, error) {
	b, err := newPeaksBase("PeaksNum", cfg.Map())
	if err != nil {
		return nil, err
	}
	return &PeaksNum{b}, nil
}

func (p *PeaksNum) Compute(ctx context.Context, s *series.Series) (any, error) {
	return p.summarise(ctx, p, s, func(xs []float64) float64 { return float64(len(xs)) })
}

func (p peaksIndicator) summarise(ctx context.Context, self algorithm.Algorithm, s *series.Series, fn func([]float64) float64) (any, error) {
	values, ok, err := p.maxima(ctx, self, s)
	if err != nil {
		return nil, err
	}
	if !ok {
		return math.NaN(), nil
	}
	return reduceVector(ctx, self, values, fn), nil
}

// shapeIndicator is shared by the indicators summarising peak durations or slopes.
type shapeIndicator struct {
	algorithm.Base
}

func newShapeBase(name string, sources ...map[string]any) (shapeIndicator, error) {
	b, err := algorithm.NewBase(name, tools.SelectionDescriptors(), algorithm.RejectUnknown, sources...)
	return shapeIndicator{b}, err
}

func (p shapeIndicator) config() tools.SelectionConfig {
	return tools.SelectionConfig{
		Delta:   p.Params().Float("delta"),
		PreMax:  p.Params().Float("pre_max"),
		PostMax: p.Params().Float("post_max"),
	}
}

func (p shapeIndicator) durations(ctx context.Context, self algorithm.Algorithm, s *series.Series, fn func([]float64) float64) (any, error) {
	d, err := tools.NewDurations(p.config())
	if err != nil {
		return nil, err
	}
	return p.summarise(ctx, self, s, d, fn)
}

func (p shapeIndicator) slopes(ctx context.Context, self algorithm.Algorithm, s *series.Series, fn func([]float64) float64) (any, error) {
	sl, err := tools.NewSlopes(p.config())
	if err != nil {
		return nil, err
	}
	return p.summarise(ctx, self, s, sl, fn)
}

func (p shapeIndicator) summarise(ctx context.Context, self algorithm.Algorithm, s *series.Series, tool algorithm.Algorithm, fn func([]float64) float64) (any, error) {
	values, err := algorithm.Get[[]float64](ctx, tool, s)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return algorithm.Degenerate(ctx, self, "no peaks selected"), nil
	}
	return reduceVector(ctx, self, values, fn), nil
}

type DurationMin struct{ shapeIndicator }

func NewDurationMin(cfg PeakShapeConfig) (*DurationMin, error) {
	b, err := newShapeBase("DurationMin", cfg.Map())
	if err != nil {
		return nil, err
	}
	return &DurationMin{b}, nil
}

func (d *DurationMin) Compute(ctx context.Context, s *series.Series) (any, error) {
	return d.durations(ctx, d, s, minOf)
}

type DurationMax struct{ shapeIndicator }

func NewDurationMax(cfg PeakShapeConfig) (*DurationMax, error) {
	b, err := newShapeBase("DurationMax", cfg.Map())
	if err != nil {
		return nil, err
	}
	return &DurationMax{b}, nil
}

func (d *DurationMax) Compute(ctx context.Context, s *series.Series) (any, error) {
	return d.durations(ctx, d, s, maxOf)
}

type DurationMean struct{ shapeIndicator }

func NewDurationMean(cfg PeakShapeConfig) (*DurationMean, error) {
	b, err := newShapeBase("DurationMean", cfg.Map())
	if err != nil {
		return nil, err
	}
	return &DurationMean{b}, nil
}

func (d *DurationMean) Compute(ctx context.Context, s *series.Series) (any, error) {
	return d.durations(ctx, d, s, mean)
}

type SlopeMin struct{ shapeIndicator }

func NewSlopeMin(cfg PeakShapeConfig) (*SlopeMin, error) {
	b, err := newShapeBase("SlopeMin", cfg.Map())
	if err != nil {
		return nil, err
	}
	return &SlopeMin{b}, nil
}

func (d *SlopeMin) Compute(ctx context.Context, s *series.Series) (any, error) {
	return d.slopes(ctx, d, s, minOf)
}

type SlopeMax struct{ shapeIndicator }

func NewSlopeMax(cfg PeakShapeConfig) (*SlopeMax, error) {
	b, err := newShapeBase("SlopeMax", cfg.Map())
	if err != nil {
		return nil, err
	}
	return &SlopeMax{b}, nil
}

func (d *SlopeMax) Compute(ctx context.Context, s *series.Series) (any, error) {
	return d.slopes(ctx, d, s, maxOf)
}

type SlopeMean struct{ shapeIndicator }

func NewSlopeMean(cfg PeakShapeConfig) (*SlopeMean, error) {
	b, err := newShapeBase("SlopeMean", cfg.Map())
	if err != nil {
		return nil, err
	}
	return &SlopeMean{b}, nil
}

func (d *SlopeMean) Compute(ctx context.Context, s *series.Series) (any, error) {
	return d.slopes(ctx, d, s, mean)
}
