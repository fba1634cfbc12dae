//go:build cgo

package main

import (
	"context"
	"fmt"

	"github.com/dusk-indust/refit/internal/history"
)

// openHistoryStore opens the persistent run-history database.
func openHistoryStore(dbPath string) (history.Store, error) {
	return history.NewKuzuFileStore(dbPath)
}

// runHistory prints the most recent format runs with their changed documents
// and conflicts.
func runHistory(dbPath string) error {
	if dbPath == "" {
		return fmt.Errorf("history requires -history-db (or historyDB in refit.yml)")
	}
	store, err := openHistoryStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.InitSchema(ctx); err != nil {
		return err
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for i, run := range runs {
		if i > 0 {
			fmt.Println()
		}
		mode := "format"
		if run.CheckOnly {
			mode = "check"
		}
		fmt.Printf("%s  %s  %s (%s)\n", run.ID, run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.Root, mode)
		fmt.Printf("  scanned %d, changed %d, diagnostics %d, conflicts %d\n",
			run.DocsScanned, run.DocsChanged, run.Diagnostics, run.Conflicts)

		changes, err := store.RunChanges(ctx, run.ID)
		if err != nil {
			return err
		}
		for _, c := range changes {
			fmt.Printf("  ~ %s\n", c.Doc)
		}

		conflicts, err := store.RunConflicts(ctx, run.ID)
		if err != nil {
			return err
		}
		for _, c := range conflicts {
			fmt.Printf("  ! %s: %s dropped %s\n", c.Doc, c.Rule, c.Fragment)
		}
	}
	return nil
}
