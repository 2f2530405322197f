package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/example/ack/parser"
)

var astCmd = &cobra.Command{
	Use:   "ast [file.js]",
	Short: "Parse a script and dump its syntax tree as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetString("eval")
		name, source, err := readSource(code, args)
		if err != nil {
			return err
		}
		program, err := parser.ParseProgram(name, source)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(program)
	},
}

func init() {
	astCmd.Flags().StringP("eval", "e", "", "parse inline code instead of a file")
}
