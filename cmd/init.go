package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/panyam/treefill/config"
)

var (
	initOutput string
	initInput  string
	initForce  bool
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new .treefill.yaml configuration file",
	Long: `Create a starter .treefill.yaml with one job for a single tree file and one
pattern job for a directory of trees.

Examples:
  treefill init                        # Create .treefill.yaml
  treefill init --input solver.txt     # Use another file for the first job
  treefill init -o ci.yaml --force     # Overwrite an existing file`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runInit(os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initOutput, "output", "o", ".treefill.yaml", "Output file path")
	initCmd.Flags().StringVar(&initInput, "input", config.DefaultInput, "Input file of the first job")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing configuration file")
}

func runInit(stdout io.Writer) error {
	if _, err := os.Stat(initOutput); err == nil && !initForce {
		return fmt.Errorf("configuration file %s already exists, use --force to overwrite", initOutput)
	}

	data, err := config.Sample(initInput, config.OutputPath(initInput, config.DefaultOutputSuffix))
	if err != nil {
		return fmt.Errorf("failed to generate configuration: %w", err)
	}
	if err := os.WriteFile(initOutput, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", initOutput, err)
	}

	fmt.Fprintf(stdout, "✅ Created %s\n", initOutput)
	return nil
}
