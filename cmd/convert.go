package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/panyam/treefill/config"
)

var (
	convertInput  string
	convertOutput string
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert .treefill.toml configuration to .treefill.yaml",
	Long: `Convert a TOML configuration file to the equivalent YAML configuration.

Unknown keys in the TOML file are rejected so typos do not silently vanish
during the conversion. The YAML is printed to stdout unless --output is given.

Examples:
  treefill convert                          # Convert .treefill.toml in current directory
  treefill convert -i ci.toml               # Convert a specific file
  treefill convert -o .treefill.yaml        # Write the result to a file`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runConvert(os.Stdout))
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertInput, "input", "i", ".treefill.toml", "Path to the .treefill.toml input file")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Write YAML to this file instead of stdout")
}

func runConvert(stdout io.Writer) error {
	yamlData, err := config.ConvertTOML(convertInput)
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", convertInput, err)
	}

	if convertOutput == "" {
		_, err := stdout.Write(yamlData)
		return err
	}
	if err := os.WriteFile(convertOutput, yamlData, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", convertOutput, err)
	}
	fmt.Fprintf(stdout, "✅ Successfully converted %s to %s\n", convertInput, convertOutput)
	return nil
}
