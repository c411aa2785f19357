package indicators

import (
	"errors"
	"fmt"

	"github.com/on-the-ground/physio_ive_go/algorithm"
	"github.com/on-the-ground/physio_ive_go/tools"
)

var ErrUnknownIndicator = errors.New("unknown indicator")

// Factory builds an indicator from parameter mappings, later mappings winning.
type Factory func(sources ...map[string]any) (algorithm.Indicator, error)

type registration struct {
	name   string
	family string
	descs  []algorithm.Descriptor
	build  Factory
}

const (
	FamilyTimeDomain = "time-domain"
	FamilyHRV        = "hrv"
	FamilyNonLinear  = "non-linear"
	FamilyPeaks      = "peaks"
)

var registry = []registration{
	parameterless(FamilyTimeDomain, "Mean", func() algorithm.Indicator { return NewMean() }),
	parameterless(FamilyTimeDomain, "Min", func() algorithm.Indicator { return NewMin() }),
	parameterless(FamilyTimeDomain, "Max", func() algorithm.Indicator { return NewMax() }),
	parameterless(FamilyTimeDomain, "Range", func() algorithm.Indicator { return NewRange() }),
	parameterless(FamilyTimeDomain, "Median", func() algorithm.Indicator { return NewMedian() }),
	parameterless(FamilyTimeDomain, "StDev", func() algorithm.Indicator { return NewStDev() }),
	parameterless(FamilyTimeDomain, "Sum", func() algorithm.Indicator { return NewSum() }),
	parameterless(FamilyTimeDomain, "AUC", func() algorithm.Indicator { return NewAUC() }),

	parameterless(FamilyHRV, "RMSSD", func() algorithm.Indicator { return NewRMSSD() }),
	parameterless(FamilyHRV, "SDSD", func() algorithm.Indicator { return NewSDSD() }),
	parameterised(FamilyHRV, "NNx", nnxDescs, func(b algorithm.Base) algorithm.Indicator { return &NNx{b} }),
	parameterised(FamilyHRV, "PNNx", nnxDescs, func(b algorithm.Base) algorithm.Indicator { return &PNNx{b} }),
	parameterised(FamilyHRV, "Triang", triangularDescs, func(b algorithm.Base) algorithm.Indicator { return &Triang{b} }),
	parameterised(FamilyHRV, "TINN", triangularDescs, func(b algorithm.Base) algorithm.Indicator { return &TINN{b} }),

	parameterless(FamilyNonLinear, "PoincareSD1", func() algorithm.Indicator { return NewPoincareSD1() }),
	parameterless(FamilyNonLinear, "PoincareSD2", func() algorithm.Indicator { return NewPoincareSD2() }),
	parameterless(FamilyNonLinear, "PoincareSD12", func() algorithm.Indicator { return NewPoincareSD12() }),

	parameterised(FamilyPeaks, "PeaksMax", tools.PeakDescriptors(), func(b algorithm.Base) algorithm.Indicator { return &PeaksMax{peaksIndicator{b}} }),
	parameterised(FamilyPeaks, "PeaksMin", tools.PeakDescriptors(), func(b algorithm.Base) algorithm.Indicator { return &PeaksMin{peaksIndicator{b}} }),
	parameterised(FamilyPeaks, "PeaksMean", tools.PeakDescriptors(), func(b algorithm.Base) algorithm.Indicator { return &PeaksMean{peaksIndicator{b}} }),
	parameterised(FamilyPeaks, "PeaksNum", tools.PeakDescriptors(), func(b algorithm.Base) algorithm.Indicator { return &PeaksNum{peaksIndicator{b}} }),
	parameterised(FamilyPeaks, "DurationMin", tools.SelectionDescriptors(), func(b algorithm.Base) algorithm.Indicator { return &DurationMin{shapeIndicator{b}} }),
	parameterised(FamilyPeaks, "DurationMax", tools.SelectionDescriptors(), func(b algorithm.Base) algorithm.Indicator { return &DurationMax{shapeIndicator{b}} }),
	parameterised(FamilyPeaks, "DurationMean", tools.SelectionDescriptors(), func(b algorithm.Base) algorithm.Indicator { return &DurationMean{shapeIndicator{b}} }),
	parameterised(FamilyPeaks, "SlopeMin", tools.SelectionDescriptors(), func(b algorithm.Base) algorithm.Indicator { return &SlopeMin{shapeIndicator{b}} }),
	parameterised(FamilyPeaks, "SlopeMax", tools.SelectionDescriptors(), func(b algorithm.Base) algorithm.Indicator { return &SlopeMax{shapeIndicator{b}} }),
	parameterised(FamilyPeaks, "SlopeMean", tools.SelectionDescriptors(), func(b algorithm.Base) algorithm.Indicator { return &SlopeMean{shapeIndicator{b}} }),
}

func parameterless(family, name string, fn func() algorithm.Indicator) registration {
	return registration{
		name:   name,
		family: family,
		build: func(sources ...map[string]any) (algorithm.Indicator, error) {
			if _, err := algorithm.Resolve(nil, algorithm.RejectUnknown, sources...); err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return fn(), nil
		},
	}
}

func parameterised(family, name string, descs []algorithm.Descriptor, wrap func(algorithm.Base) algorithm.Indicator) registration {
	return registration{
		name:   name,
		family: family,
		descs:  descs,
		build: func(sources ...map[string]any) (algorithm.Indicator, error) {
			b, err := algorithm.NewBase(name, descs, algorithm.RejectUnknown, sources...)
			if err != nil {
				return nil, err
			}
			return wrap(b), nil
		},
	}
}

// Build resolves an indicator by name. params is the caller mapping and
// overrides takes precedence over it; unknown parameter names are rejected.
func Build(name string, params, overrides map[string]any) (algorithm.Indicator, error) {
	for _, r := range registry {
		if r.name == name {
			return r.build(params, overrides)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownIndicator, name)
}

// Describe returns the parameters an indicator accepts.
func Describe(name string) ([]algorithm.Descriptor, bool) {
	for _, r := range registry {
		if r.name == name {
			return append([]algorithm.Descriptor(nil), r.descs...), true
		}
	}
	return nil, false
}

// Names lists every registered indicator, family by family.
func Names() []string {
	names := make([]string, len(registry))
	for i, r := range registry {
		names[i] = r.name
	}
	return names
}

// Family returns the family an indicator is registered under.
func Family(name string) (string, bool) {
	for _, r := range registry {
		if r.name == name {
			return r.family, true
		}
	}
	return "", false
}

func defaults(family string) []algorithm.Indicator {
	var out []algorithm.Indicator
	for _, r := range registry {
		if family != "" && r.family != family {
			continue
		}
		ind, err := r.build()
		if err != nil {
			panic(fmt.Sprintf("indicators: default %s does not build: %v", r.name, err))
		}
		out = append(out, ind)
	}
	return out
}

// TimeDomain returns fresh default instances of the time-domain indicators.
func TimeDomain() []algorithm.Indicator { return defaults(FamilyTimeDomain) }

func HRV() []algorithm.Indicator { return defaults(FamilyHRV) }

func NonLinear() []algorithm.Indicator { return defaults(FamilyNonLinear) }

func PeaksDescription() []algorithm.Indicator { return defaults(FamilyPeaks) }

// All returns fresh default instances of every registered indicator.
func All() []algorithm.Indicator { return defaults("") }
