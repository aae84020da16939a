package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/panyam/treefill/config"
	"github.com/panyam/treefill/formatter"
)

var (
	formatInput           string
	formatOutput          string
	formatKeepTrailing    bool
	formatTrailingNewline bool
)

// formatCmd represents the format command
var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Format a single tree file",
	Long: `Format one input file and write the result, without reading any config file.

Blank lines are dropped, every line is uppercased, and each line's leading
whitespace is replaced by the same number of characters taken from the
previous formatted line. The output has no trailing newline unless
--trailing-newline is given. Use "-" for stdin or stdout.

Examples:
  treefill format                          # tree.txt -> tree_plus.txt
  treefill format -i solver.txt -o out.txt # explicit files
  cat tree.txt | treefill format -i - -o - # filter mode`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runFormat(cmd.Context(), os.Stdin, os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(formatCmd)

	formatCmd.Flags().StringVarP(&formatInput, "input", "i", config.DefaultInput, "Input file (\"-\" for stdin)")
	formatCmd.Flags().StringVarP(&formatOutput, "output", "o", config.DefaultOutput, "Output file (\"-\" for stdout)")
	formatCmd.Flags().BoolVar(&formatKeepTrailing, "keep-trailing", false, "Keep trailing whitespace on non-blank lines")
	formatCmd.Flags().BoolVar(&formatTrailingNewline, "trailing-newline", false, "End the output with a newline")
}

func runFormat(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := formatter.Options{
		KeepTrailingSpace: formatKeepTrailing,
		TrailingNewline:   formatTrailingNewline,
	}

	switch {
	case formatInput == "-" && formatOutput == "-":
		_, err := formatter.FormatStream(ctx, stdin, stdout, opts)
		return err
	case formatInput == "-":
		lines, err := formatter.ReadLines(stdin, opts)
		if err != nil {
			return &formatter.FileError{Op: "read", Path: "-", Err: err}
		}
		_, err = formatter.WriteFile(formatOutput, formatter.Fill(lines), opts)
		return err
	case formatOutput == "-":
		lines, err := formatter.ReadFile(formatInput, opts)
		if err != nil {
			return err
		}
		if err := formatter.WriteLines(stdout, formatter.Fill(lines), opts); err != nil {
			return &formatter.FileError{Op: "write", Path: "-", Err: err}
		}
		return nil
	}

	res, err := formatter.FormatFile(ctx, formatInput, formatOutput, opts)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Formatted %s -> %s (%d lines)\n", res.Input, res.Output, res.Lines)
	}
	return nil
}
