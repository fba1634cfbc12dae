package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dusk-indust/refit/internal/config"
	"github.com/dusk-indust/refit/internal/history"
	"github.com/dusk-indust/refit/internal/lang"
	"github.com/dusk-indust/refit/internal/orchestrator"
	"github.com/dusk-indust/refit/internal/rules"
	"github.com/dusk-indust/refit/internal/workspace"
)

// runFormat executes one format (or check) run over the workspace at
// flags.Root and prints a summary. The process exit status reflects
// HasFailures for check runs.
func runFormat(ctx context.Context, flags cliFlags, cfg *config.ProjectConfig, registry *rules.Registry, logger *slog.Logger) error {
	started := time.Now()

	ws, err := workspace.Load(flags.Root, workspace.LoadOptions{
		IncludeExts: cfg.IncludeExts,
		ExcludeDirs: cfg.ExcludeDirs,
	})
	if err != nil {
		return err
	}

	ruleNames := cfg.Rules
	if flags.Rules != "" {
		ruleNames = splitComma(flags.Rules)
	}
	ruleSet, err := registry.Build(ruleNames)
	if err != nil {
		return err
	}

	engine := orchestrator.New(ruleSet, logger)
	engine.SetVerifier(lang.NewVerifier())

	// Drain progress events; print them only in verbose mode.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range engine.Progress() {
			if flags.Verbose {
				fmt.Println(orchestrator.FormatProgress(ev))
			}
		}
	}()

	scope := make([]workspace.DocID, 0, len(flags.Paths))
	for _, p := range flags.Paths {
		scope = append(scope, workspace.DocID(p))
	}

	final, report, err := engine.Format(ctx, ws, orchestrator.Options{
		SaveChanges:           !flags.Check,
		TreatWarningsAsErrors: flags.Strict,
		Paths:                 scope,
	})
	engine.Close()
	wg.Wait()
	if err != nil {
		return err
	}

	if !flags.Check {
		if err := workspace.Save(final, report.DocsChanged, flags.Root); err != nil {
			return err
		}
	}

	printSummary(report, flags.Check)

	if flags.HistoryDB != "" {
		recordRun(ctx, flags, report, started, logger)
	}

	if flags.Check && report.HasFailures(flags.Strict) {
		return fmt.Errorf("found %d formatting issue(s)", report.TotalDiagnostics())
	}
	return nil
}

// printSummary writes the human-readable run outcome to stdout.
func printSummary(report *orchestrator.Report, check bool) {
	fmt.Printf("scanned %d document(s), %d diagnostic(s)\n",
		report.DocsScanned, report.TotalDiagnostics())
	for sev, n := range report.DiagnosticsBySeverity {
		fmt.Printf("  %s: %d\n", sev, n)
	}

	if check {
		for _, id := range sortedDiagDocs(report) {
			for _, d := range report.Diagnostics[id] {
				fmt.Println(d)
			}
		}
		return
	}

	fmt.Printf("changed %d document(s)\n", len(report.DocsChanged))
	for _, id := range report.DocsChanged {
		fmt.Printf("  %s\n", id)
	}
	for _, c := range report.Conflicts {
		fmt.Printf("warning: %s: conflicting edit from %s dropped: %s\n", c.Doc, c.Rule, c.Fragment)
	}
	for _, f := range report.RuleFailures {
		fmt.Printf("warning: rule %s failed: %v\n", f.Rule, f.Err)
	}
	for _, id := range report.SyntaxWarnings {
		fmt.Printf("warning: %s: merged result has a syntax error the original did not\n", id)
	}
}

// recordRun persists the run outcome; failures are logged, never fatal.
func recordRun(ctx context.Context, flags cliFlags, report *orchestrator.Report, started time.Time, logger *slog.Logger) {
	store, err := openHistoryStore(flags.HistoryDB)
	if err != nil {
		logger.Warn("history store unavailable", "error", err)
		return
	}
	defer store.Close()

	runID := history.NewRunID(started)
	run := history.RunRecord{
		ID:          runID,
		StartedAt:   started,
		Root:        flags.Root,
		DocsScanned: report.DocsScanned,
		DocsChanged: len(report.DocsChanged),
		Diagnostics: report.TotalDiagnostics(),
		Conflicts:   len(report.Conflicts),
		CheckOnly:   flags.Check,
	}
	changes := make([]history.ChangeRecord, 0, len(report.DocsChanged))
	for _, id := range report.DocsChanged {
		changes = append(changes, history.ChangeRecord{RunID: runID, Doc: string(id)})
	}
	conflicts := make([]history.ConflictRecord, 0, len(report.Conflicts))
	for _, c := range report.Conflicts {
		conflicts = append(conflicts, history.ConflictRecord{
			RunID:    runID,
			Doc:      string(c.Doc),
			Rule:     c.Rule,
			Fragment: c.Fragment,
		})
	}
	if err := history.RecordRun(ctx, store, run, changes, conflicts); err != nil {
		logger.Warn("recording run history failed", "error", err)
	}
}

// sortedDiagDocs returns the documents with diagnostics in sorted order.
func sortedDiagDocs(report *orchestrator.Report) []workspace.DocID {
	ids := make([]workspace.DocID, 0, len(report.Diagnostics))
	for id := range report.Diagnostics {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// splitComma splits a comma-separated flag value, dropping empty entries.
func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
