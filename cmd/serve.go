package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/panyam/treefill/server"
)

var (
	servePort      int
	serveHost      string
	serveEnableMCP bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the formatter over HTTP and MCP",
	Long: `Start an HTTP server that formats request bodies.

Endpoints:
  POST /format    body is the raw tree text, response is the formatted text
                  (?keep_trailing=1, ?trailing_newline=1 override settings)
  GET  /healthz   liveness probe
  /mcp            MCP (Model Context Protocol) endpoint exposing the
                  format_tree tool, unless --enable-mcp=false

Examples:
  treefill serve                   # Listen on localhost:9999
  treefill serve --port 8080
  curl --data-binary @tree.txt localhost:9999/format`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runServe(cmd))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 9999, "Port for the HTTP server")
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Host interface to bind")
	serveCmd.Flags().BoolVar(&serveEnableMCP, "enable-mcp", true, "Enable MCP server for AI tool integration")
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	initLogging(cfg)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Options{
		Addr:      fmt.Sprintf("%s:%d", serveHost, servePort),
		Version:   Version,
		EnableMCP: serveEnableMCP,
		Format:    cfg.Settings.FormatOptions(),
		Verbose:   cfg.Settings.Verbose,
	})
	return srv.ListenAndServe(ctx)
}
