package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/panyam/treefill/config"
	"github.com/panyam/treefill/utils"
)

// Version is the treefill release, overridden at build time with -ldflags.
var Version = "0.1.0"

var (
	configPath string
	verbose    bool
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "treefill",
	Short: "Fill in omitted indentation of decision-tree dumps",
	Long: `Treefill rewrites tree-shaped text dumps in which each line only prints the
part that differs from the line above it. Every line inherits its leading span
from the previous formatted line, so each line carries its full path again:

  ROOT                 ROOT
     CHILD-A     ->    ROOCHILD-A
        LEAF-1         ROOCHILEAF-1

Jobs are read from .treefill.yaml (or .treefill.toml). Without a config file,
treefill formats tree.txt into tree_plus.txt.

By default, treefill runs all configured jobs once when no subcommand is given.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		runCmd.Run(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for external use
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to the .treefill.yaml or .treefill.toml configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored log prefixes")
}

// loadConfig loads the config file. When the default path is used and no
// config exists there (nor a .treefill.toml next to it), the single-job
// default config is returned instead.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	explicit := cmd != nil && cmd.Flags().Changed("config")

	if !explicit {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			tomlPath := filepath.Join(filepath.Dir(path), ".treefill.toml")
			if _, err := os.Stat(tomlPath); err != nil {
				cfg := config.Default(config.DefaultInput, config.DefaultOutput)
				cfg.Settings.Verbose = verbose
				return cfg, nil
			}
			path = tomlPath
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Settings.Verbose = true
	}
	return cfg, nil
}

// initLogging sets up the global logger from the config settings.
func initLogging(cfg *config.Config) *utils.ColorManager {
	colorManager := utils.NewColorManager(&cfg.Settings)
	if noColor {
		colorManager.DisableColors()
	}
	utils.InitGlobalLogger(cfg.Settings.PrefixLogs, cfg.Settings.PrefixMaxLength, colorManager)
	return colorManager
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
