package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/example/ack/config"
	"github.com/example/ack/interpreter"
)

var rootCmd = &cobra.Command{
	Use:           "ack",
	Short:         "Tree-walking evaluator for a small JavaScript subset",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

// settings is the merged result of the config file and the flags.
var settings config.Config

func main() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(astCmd)
	rootCmd.AddCommand(testCmd)

	rootCmd.PersistentFlags().String("config", "", "path to ack.toml or ack.yaml (default: search upward for ack.toml)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text|json)")
	rootCmd.PersistentFlags().Bool("strict", false, "make assignment to undeclared names a ReferenceError")
	rootCmd.PersistentFlags().Int("max-call-depth", 0, "maximum nested calls (0 = config value)")
	rootCmd.PersistentFlags().Int("gc-threshold", 0, "allocations between store collections (0 = config value, -1 = off)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	settings = cfg

	mode, _ := cmd.Flags().GetString("color")
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (want auto, on or off)", mode)
	}

	level, err := config.ParseLevel(settings.Log.Level)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(newHandler(os.Stderr, settings.Log.Format, level)))
	return nil
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		found, ok, err := config.Find(".")
		if err != nil {
			return cfg, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("strict") {
		cfg.Runtime.StrictAssignment, _ = flags.GetBool("strict")
	}
	if flags.Changed("max-call-depth") {
		cfg.Runtime.MaxCallDepth, _ = flags.GetInt("max-call-depth")
	}
	if flags.Changed("gc-threshold") {
		cfg.Runtime.GCThreshold, _ = flags.GetInt("gc-threshold")
	}
	return cfg, cfg.Validate()
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// interpreterOptions translates the runtime settings.
func interpreterOptions(cfg config.RuntimeConfig) []interpreter.Option {
	gc := cfg.GCThreshold
	if gc < 0 {
		gc = 0
	}
	return []interpreter.Option{
		interpreter.WithLogger(slog.Default()),
		interpreter.WithStrictAssignment(cfg.StrictAssignment),
		interpreter.WithMaxCallDepth(cfg.MaxCallDepth),
		interpreter.WithGCThreshold(gc),
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
