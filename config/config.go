// Package config loads the settings of the physiowin command.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/on-the-ground/physio_ive_go/algorithm"
	"github.com/on-the-ground/physio_ive_go/indicators"
	"github.com/on-the-ground/physio_ive_go/log"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Window modes.
const (
	ModeTime   = "time"
	ModeIndex  = "index"
	ModeLabels = "labels"
)

// Config holds everything one physiowin run needs.
type Config struct {
	// Input
	Input       string
	Column      string
	LabelColumn string
	Separator   rune

	// Windowing
	Mode  string
	Step  float64
	Width float64

	// Epoch anchors series time, in milliseconds, to wall-clock time.
	Epoch time.Time

	// Output
	Output   string
	LogLevel zapcore.Level

	// Batch lists the indicators to compute; empty means every registered one.
	Batch []IndicatorEntry
}

// IndicatorEntry is one indicator of a batch file.
type IndicatorEntry struct {
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params,omitempty"`
}

type batchFile struct {
	Indicators []IndicatorEntry `yaml:"indicators"`
}

// Load reads settings from the process environment, falling back to the
// given .env files (default ".env") and then to built-in defaults, and reads
// the indicator batch from batchPath when set. Only malformed values are
// rejected here; callers apply their overrides and then Validate.
func Load(batchPath string, envFiles ...string) (*Config, error) {
	var errs error

	file, err := godotenv.Read(envFiles...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = multierr.Append(errs, fmt.Errorf("reading env file: %w", err))
	}
	e := env{file: file}

	cfg := &Config{
		Input:       e.get("PHYSIO_INPUT", ""),
		Column:      e.get("PHYSIO_COLUMN", "IBI"),
		LabelColumn: e.get("PHYSIO_LABEL_COLUMN", ""),
		Mode:        e.get("PHYSIO_MODE", ModeTime),
		Output:      e.get("PHYSIO_OUTPUT", "-"),
		LogLevel:    log.ParseLevel(e.get("PHYSIO_LOG_LEVEL", "info")),
	}

	cfg.Separator, err = ParseSeparator(e.get("PHYSIO_SEPARATOR", `\t`))
	errs = multierr.Append(errs, err)
	cfg.Step, err = e.float("PHYSIO_STEP", 20000)
	errs = multierr.Append(errs, err)
	cfg.Width, err = e.float("PHYSIO_WIDTH", 20000)
	errs = multierr.Append(errs, err)
	cfg.Epoch, err = ParseEpoch(e.get("PHYSIO_EPOCH", ""))
	errs = multierr.Append(errs, err)

	if batchPath != "" {
		cfg.Batch, err = ReadBatch(batchPath)
		errs = multierr.Append(errs, err)
	}

	if errs != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, errs)
	}
	return cfg, nil
}

// ReadBatch parses a YAML batch file of the form
//
//	indicators:
//	  - name: PNNx
//	    params: {threshold: 20}
func ReadBatch(path string) ([]IndicatorEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch: %w", err)
	}
	var batch batchFile
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("parsing batch %s: %w", path, err)
	}
	return batch.Indicators, nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs error
	if c.Input == "" {
		errs = multierr.Append(errs, errors.New("input file must be set"))
	}
	if c.Column == "" {
		errs = multierr.Append(errs, errors.New("value column must be set"))
	}
	switch c.Mode {
	case ModeTime, ModeIndex:
		if !(c.Step > 0) || !(c.Width > 0) {
			errs = multierr.Append(errs, fmt.Errorf("step %v and width %v must be positive", c.Step, c.Width))
		}
	case ModeLabels:
		if c.LabelColumn == "" {
			errs = multierr.Append(errs, errors.New("labels mode needs a label column"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown mode %q", c.Mode))
	}
	if _, err := c.Indicators(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errs)
	}
	return nil
}

// Indicators builds the configured batch, or every registered indicator.
func (c *Config) Indicators() ([]algorithm.Indicator, error) {
	if len(c.Batch) == 0 {
		return indicators.All(), nil
	}
	var errs error
	out := make([]algorithm.Indicator, 0, len(c.Batch))
	for _, entry := range c.Batch {
		ind, err := indicators.Build(entry.Name, entry.Params, nil)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out = append(out, ind)
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

// ParseSeparator accepts a single character, `\t` or "tab".
func ParseSeparator(s string) (rune, error) {
	switch s {
	case `\t`, "tab", "\t":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("separator %q must be a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// ParseEpoch reads an RFC 3339 timestamp; empty means the zero time.
func ParseEpoch(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch %q: %w", s, err)
	}
	return t, nil
}

// env resolves keys from the process environment, then the .env file.
type env struct {
	file map[string]string
}

func (e env) get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value := e.file[key]; value != "" {
		return value
	}
	return defaultValue
}

func (e env) float(key string, defaultValue float64) (float64, error) {
	valueStr := e.get(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
