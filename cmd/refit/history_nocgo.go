//go:build !cgo

package main

import (
	"fmt"

	"github.com/dusk-indust/refit/internal/history"
)

// openHistoryStore reports that persistent history needs the CGO build.
func openHistoryStore(string) (history.Store, error) {
	return nil, fmt.Errorf("run history requires a CGO-enabled build")
}

func runHistory(string) error {
	return fmt.Errorf("run history requires a CGO-enabled build")
}
