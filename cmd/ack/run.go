package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/ack/builtins"
	"github.com/example/ack/interpreter"
	"github.com/example/ack/runtime"
)

var runCmd = &cobra.Command{
	Use:   "run [file.js]",
	Short: "Evaluate a script and print its completion value",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetString("eval")
		name, source, err := readSource(code, args)
		if err != nil {
			return err
		}

		interp := interpreter.New(interpreterOptions(settings.Runtime)...)
		builtins.RegisterAll(interp, builtins.WithStdout(cmd.OutOrStdout()))

		result, err := interp.EvalNamed(name, source)
		if err != nil {
			return locate(name, err)
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		if !quiet && !result.IsUndefined() {
			fmt.Fprintln(cmd.OutOrStdout(), interp.Store().Inspect(result))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringP("eval", "e", "", "evaluate inline code instead of a file")
	runCmd.Flags().BoolP("quiet", "q", false, "do not print the completion value")
}

func readSource(code string, args []string) (string, string, error) {
	if code != "" {
		return "<eval>", code, nil
	}
	if len(args) == 0 {
		return "", "", errors.New("a script path or -e code is required")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("read script: %w", err)
	}
	return args[0], string(data), nil
}

// locate prefixes evaluation errors with file:line:col when the position is
// known.
func locate(name string, err error) error {
	var rerr *runtime.Error
	if errors.As(err, &rerr) && rerr.Line > 0 {
		return fmt.Errorf("%s:%d:%d: %w", name, rerr.Line, rerr.Column, err)
	}
	return err
}
