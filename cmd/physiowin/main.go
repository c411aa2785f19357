package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/on-the-ground/physio_ive_go/config"
	"github.com/on-the-ground/physio_ive_go/indicators"
	"github.com/on-the-ground/physio_ive_go/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "physiowin",
	Short: "Windowed indicators over physiological series",
	Long: `physiowin computes a batch of indicators on every window of an
inter-beat interval series and writes one row per window.

Settings come from flags, then the environment (PHYSIO_*), then a .env file.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Map indicators over the windows of an input file",
	Long: `Read an interval column from a delimited file, window it and compute
every indicator of the batch on each window.

Example usage:
  physiowin run --input ibi.tsv --step 20000 --width 40000
  physiowin run --input ibi.tsv --mode labels --label-column phase
  physiowin run --input ibi.tsv --batch hrv.yaml --output out.tsv`,
	RunE: runMapping,
}

var indicatorsCmd = &cobra.Command{
	Use:   "indicators",
	Short: "List the registered indicators and their parameters",
	RunE:  listIndicators,
}

var (
	batchPath string
	envFile   string

	inputPath   string
	column      string
	labelColumn string
	separator   string
	mode        string
	step        float64
	width       float64
	epoch       string
	outputPath  string
	logLevel    string
)

func init() {
	rootCmd.AddCommand(runCmd, indicatorsCmd)

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file with PHYSIO_* defaults")

	runCmd.Flags().StringVar(&batchPath, "batch", "", "YAML batch of indicators (default: all)")
	runCmd.Flags().StringVar(&inputPath, "input", "", "Input file, - for stdin")
	runCmd.Flags().StringVar(&column, "column", "", "Interval column in milliseconds")
	runCmd.Flags().StringVar(&labelColumn, "label-column", "", "Per-sample label column")
	runCmd.Flags().StringVar(&separator, "sep", "", `Field separator, e.g. "," or "\t"`)
	runCmd.Flags().StringVar(&mode, "mode", "", "Windowing: time, index or labels")
	runCmd.Flags().Float64Var(&step, "step", 0, "Distance between window starts")
	runCmd.Flags().Float64Var(&width, "width", 0, "Window width")
	runCmd.Flags().StringVar(&epoch, "epoch", "", "RFC 3339 wall-clock time of series time 0")
	runCmd.Flags().StringVar(&outputPath, "output", "", "Output file, - for stdout")
	runCmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runMapping(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(batchPath, envFile)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, teardown := log.WithConsoleLogger(cmd.Context(), cfg.LogLevel)
	defer teardown()
	return run(ctx, cfg)
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = inputPath
	}
	if flags.Changed("column") {
		cfg.Column = column
	}
	if flags.Changed("label-column") {
		cfg.LabelColumn = labelColumn
	}
	if flags.Changed("mode") {
		cfg.Mode = strings.ToLower(mode)
	}
	if flags.Changed("step") {
		cfg.Step = step
	}
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("output") {
		cfg.Output = outputPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = log.ParseLevel(logLevel)
	}
	if flags.Changed("sep") {
		sep, err := config.ParseSeparator(separator)
		if err != nil {
			return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
		cfg.Separator = sep
	}
	if flags.Changed("epoch") {
		t, err := config.ParseEpoch(epoch)
		if err != nil {
			return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
		cfg.Epoch = t
	}
	return nil
}

func listIndicators(cmd *cobra.Command, _ []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tFAMILY\tPARAMETERS")
	for _, name := range indicators.Names() {
		family, _ := indicators.Family(name)
		descs, _ := indicators.Describe(name)
		sort.SliceStable(descs, func(i, j int) bool { return descs[i].Order < descs[j].Order })
		params := make([]string, len(descs))
		for i, d := range descs {
			params[i] = fmt.Sprintf("%s=%v", d.Name, d.Default)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, family, strings.Join(params, " "))
	}
	return w.Flush()
}
