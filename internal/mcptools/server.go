package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewFormatMCPServer creates an MCP server with the formatting tools
// registered. version is the binary version reported to MCP clients.
func NewFormatMCPServer(svc *FormatService, version string) *mcp.Server {
	if version == "" {
		version = "dev"
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "refit-format",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "format_check",
		Description: "Analyze a workspace with the registered format rules and report diagnostics without modifying any file.",
	}, svc.Check)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "format_apply",
		Description: "Format a workspace: run every fixer in parallel against the original documents, merge their edits per document, report dropped conflicting fragments, and write changed files back to disk.",
	}, svc.Apply)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_rules",
		Description: "List the registered format rules in precedence order. Later rules win when merged edits overlap.",
	}, svc.ListRules)

	return server
}

// RunMCPServer starts an HTTP server exposing the formatting MCP tools.
func RunMCPServer(ctx context.Context, svc *FormatService, addr, version string) error {
	server := NewFormatMCPServer(svc, version)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
