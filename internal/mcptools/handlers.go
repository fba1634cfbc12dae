package mcptools

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/refit/internal/lang"
	"github.com/dusk-indust/refit/internal/orchestrator"
	"github.com/dusk-indust/refit/internal/rules"
	"github.com/dusk-indust/refit/internal/workspace"
)

// FormatService runs format checks and fixes on behalf of MCP tool handlers.
type FormatService struct {
	registry *rules.Registry
	logger   *slog.Logger
}

// NewFormatService creates a FormatService with the given rule registry.
func NewFormatService(registry *rules.Registry, logger *slog.Logger) *FormatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FormatService{registry: registry, logger: logger}
}

// CheckInput selects what to analyze.
type CheckInput struct {
	// Root is the workspace directory to load.
	Root string `json:"root"`

	// Rules lists rule names to run; empty runs every registered rule.
	Rules []string `json:"rules,omitempty"`

	// Paths restricts analysis to the given workspace-relative paths.
	Paths []string `json:"paths,omitempty"`
}

// Finding is one diagnostic in tool output.
type Finding struct {
	Doc      string `json:"doc"`
	Line     int    `json:"line"`
	Col      int    `json:"col"`
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
}

// CheckOutput reports diagnostics without mutating anything.
type CheckOutput struct {
	DocsScanned int            `json:"docsScanned"`
	Total       int            `json:"total"`
	BySeverity  map[string]int `json:"bySeverity"`
	Findings    []Finding      `json:"findings"`
}

// ApplyInput selects what to format.
type ApplyInput struct {
	Root  string   `json:"root"`
	Rules []string `json:"rules,omitempty"`
	Paths []string `json:"paths,omitempty"`
}

// ConflictPayload is one dropped merge fragment in tool output.
type ConflictPayload struct {
	Doc      string `json:"doc"`
	Rule     string `json:"rule"`
	Fragment string `json:"fragment"`
}

// ApplyOutput reports what a format run changed on disk.
type ApplyOutput struct {
	DocsScanned int               `json:"docsScanned"`
	DocsChanged []string          `json:"docsChanged"`
	Conflicts   []ConflictPayload `json:"conflicts,omitempty"`
}

// ListRulesInput has no parameters.
type ListRulesInput struct{}

// ListRulesOutput lists registered rule names in precedence order.
type ListRulesOutput struct {
	Rules []string `json:"rules"`
}

// Check loads the workspace under root and runs a diagnostics-only pass.
func (s *FormatService) Check(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CheckInput,
) (*mcp.CallToolResult, CheckOutput, error) {
	_, report, err := s.run(ctx, input.Root, input.Rules, input.Paths, false)
	if err != nil {
		return nil, CheckOutput{}, err
	}

	out := CheckOutput{
		DocsScanned: report.DocsScanned,
		Total:       report.TotalDiagnostics(),
		BySeverity:  report.DiagnosticsBySeverity,
	}
	ids := make([]string, 0, len(report.Diagnostics))
	for id := range report.Diagnostics {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, d := range report.Diagnostics[workspace.DocID(id)] {
			out.Findings = append(out.Findings, Finding{
				Doc:      string(d.Doc),
				Line:     d.Line,
				Col:      d.Col,
				Severity: d.Severity.String(),
				Rule:     d.Rule,
				Message:  d.Message,
			})
		}
	}
	return nil, out, nil
}

// Apply loads the workspace under root, formats it, and writes the changed
// documents back to disk.
func (s *FormatService) Apply(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ApplyInput,
) (*mcp.CallToolResult, ApplyOutput, error) {
	final, report, err := s.run(ctx, input.Root, input.Rules, input.Paths, true)
	if err != nil {
		return nil, ApplyOutput{}, err
	}

	if err := workspace.Save(final, report.DocsChanged, input.Root); err != nil {
		return nil, ApplyOutput{}, err
	}

	out := ApplyOutput{DocsScanned: report.DocsScanned}
	for _, id := range report.DocsChanged {
		out.DocsChanged = append(out.DocsChanged, string(id))
	}
	for _, c := range report.Conflicts {
		out.Conflicts = append(out.Conflicts, ConflictPayload{
			Doc:      string(c.Doc),
			Rule:     c.Rule,
			Fragment: c.Fragment,
		})
	}
	return nil, out, nil
}

// ListRules returns the registered rule names in precedence order.
func (s *FormatService) ListRules(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListRulesInput,
) (*mcp.CallToolResult, ListRulesOutput, error) {
	return nil, ListRulesOutput{Rules: s.registry.Names()}, nil
}

// run loads a workspace from disk and executes one engine pass over it.
func (s *FormatService) run(ctx context.Context, root string, ruleNames, paths []string, save bool) (*workspace.Workspace, *orchestrator.Report, error) {
	if root == "" {
		return nil, nil, fmt.Errorf("root is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot access root: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("root is not a directory: %s", root)
	}

	ws, err := workspace.Load(root, workspace.LoadOptions{})
	if err != nil {
		return nil, nil, err
	}

	ruleSet, err := s.registry.Build(ruleNames)
	if err != nil {
		return nil, nil, err
	}

	engine := orchestrator.New(ruleSet, s.logger)
	defer engine.Close()
	engine.SetVerifier(lang.NewVerifier())

	scope := make([]workspace.DocID, 0, len(paths))
	for _, p := range paths {
		scope = append(scope, workspace.DocID(p))
	}

	final, report, err := engine.Format(ctx, ws, orchestrator.Options{
		SaveChanges: save,
		Paths:       scope,
	})
	if err != nil {
		return nil, nil, err
	}
	return final, report, nil
}
