package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/example/ack/testrunner"
)

var testCmd = &cobra.Command{
	Use:   "test [dir]",
	Short: "Run every .js script under dir with the assert_eq harness",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc := settings.Runner
		if len(args) > 0 {
			rc.Dir = args[0]
		}
		flags := cmd.Flags()
		if flags.Changed("jobs") {
			rc.Jobs, _ = flags.GetInt("jobs")
		}
		if flags.Changed("filter") {
			rc.Filter, _ = flags.GetString("filter")
		}
		if flags.Changed("verbose") {
			rc.Verbose, _ = flags.GetBool("verbose")
		}
		timeout, err := rc.TimeoutDuration()
		if err != nil {
			return err
		}

		results, summary, err := testrunner.Run(cmd.Context(), testrunner.Config{
			Dir:     rc.Dir,
			Filter:  rc.Filter,
			Jobs:    rc.Jobs,
			Timeout: timeout,
			Verbose: rc.Verbose,
			Options: interpreterOptions(settings.Runtime),
			Stdout:  cmd.OutOrStdout(),
			Logger:  slog.Default(),
		})
		if err != nil {
			return fmt.Errorf("run scripts: %w", err)
		}
		testrunner.Report(cmd.OutOrStdout(), results, summary, rc.Verbose)
		if !summary.OK() {
			return errors.New("some scripts failed")
		}
		return nil
	},
}

func init() {
	testCmd.Flags().IntP("jobs", "j", 0, "scripts to run in parallel (0 = GOMAXPROCS)")
	testCmd.Flags().String("filter", "", "only run scripts whose path contains this substring")
	testCmd.Flags().BoolP("verbose", "v", false, "list passing scripts too")
}
