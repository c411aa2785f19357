package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/on-the-ground/physio_ive_go/config"
	"github.com/on-the-ground/physio_ive_go/log"
	"github.com/on-the-ground/physio_ive_go/mapper"
	"github.com/on-the-ground/physio_ive_go/series"
	"github.com/on-the-ground/physio_ive_go/tabular"
	"github.com/on-the-ground/physio_ive_go/window"
	"go.uber.org/zap"
)

func run(ctx context.Context, cfg *config.Config) (err error) {
	in := io.Reader(os.Stdin)
	if cfg.Input != "-" {
		f, err := os.Open(cfg.Input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	out := io.Writer(os.Stdout)
	if cfg.Output != "-" {
		f, cerr := os.Create(cfg.Output)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
		}()
		out = f
	}

	return process(ctx, cfg, in, out)
}

// process reads the interval series from in, maps the configured indicators
// over its windows and writes the result table to out.
func process(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	s, err := readSeries(cfg, in)
	if err != nil {
		return err
	}
	gen, err := generator(cfg, s)
	if err != nil {
		return err
	}
	inds, err := cfg.Indicators()
	if err != nil {
		return err
	}

	m, err := mapper.New(s, gen, inds)
	if err != nil {
		return err
	}
	if err := m.ComputeAll(ctx); err != nil {
		return err
	}

	table := m.Table()
	logger := log.FromContext(ctx)
	for i, w := range table.Windows {
		span := window.Bound{Window: w, Series: s}.TimeSpan()
		logger.Debug("window",
			zap.Int("row", i),
			zap.Stringer("window", w),
			zap.Time("from", span.Start()),
			zap.Time("to", span.End()),
		)
	}
	return tabular.WriteTable(out, table.Labels, table.Rows, cfg.Separator)
}

func readSeries(cfg *config.Config, in io.Reader) (*series.Series, error) {
	names := []string{cfg.Column}
	if cfg.LabelColumn != "" {
		names = append(names, cfg.LabelColumn)
	}
	cols, err := tabular.ReadColumns(in, cfg.Separator, names...)
	if err != nil {
		return nil, err
	}
	ibi, err := cols.Floats(cfg.Column)
	if err != nil {
		return nil, err
	}

	sc := series.Config{Epoch: cfg.Epoch, Unit: time.Millisecond}
	if cfg.LabelColumn != "" {
		if sc.Labels, err = cols.Strings(cfg.LabelColumn); err != nil {
			return nil, err
		}
	}
	return series.FromIntervals(ibi, sc)
}

func generator(cfg *config.Config, s *series.Series) (window.Generator, error) {
	switch cfg.Mode {
	case config.ModeTime:
		return window.NewLinearTime(cfg.Step, cfg.Width, s)
	case config.ModeIndex:
		return window.NewLinearIndex(int(cfg.Step), int(cfg.Width), s)
	case config.ModeLabels:
		return window.NewLabeled(s)
	}
	return nil, fmt.Errorf("%w: unknown mode %q", config.ErrInvalidConfig, cfg.Mode)
}
