package server

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/panyam/treefill/formatter"
)

// FormatToolName is the MCP tool that formats a block of tree text.
const FormatToolName = "format_tree"

// NewMCPServer creates an MCP server exposing the format_tree tool.
func NewMCPServer(version string, defaults formatter.Options) *server.MCPServer {
	mcpServer := server.NewMCPServer("treefill", version,
		server.WithToolCapabilities(false),
	)

	tool := mcp.NewTool(FormatToolName,
		mcp.WithDescription("Fill omitted leading indentation of a decision-tree text dump. "+
			"Each line copies its leading span from the previous formatted line; output is uppercased."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Tree text, one node per line"),
		),
		mcp.WithBoolean("keep_trailing",
			mcp.Description("Keep trailing whitespace on non-blank lines"),
		),
	)
	mcpServer.AddTool(tool, formatToolHandler(defaults))
	return mcpServer
}

func formatToolHandler(defaults formatter.Options) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		text, ok := args["text"].(string)
		if !ok {
			return mcp.NewToolResultError("missing required string argument \"text\""), nil
		}

		opts := defaults
		switch v := args["keep_trailing"].(type) {
		case bool:
			opts.KeepTrailingSpace = v
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid keep_trailing %q", v)), nil
			}
			opts.KeepTrailingSpace = b
		}

		return mcp.NewToolResultText(formatter.FormatString(text, opts)), nil
	}
}
