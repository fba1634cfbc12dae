package orchestrator

import "fmt"

// Phase identifies a step of a format run.
type Phase string

const (
	PhaseAnalyze  Phase = "analyze"
	PhaseFix      Phase = "fix"
	PhaseMerge    Phase = "merge"
	PhaseAssemble Phase = "assemble"
)

// ProgressStatus is the state of a subject within a phase.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// ProgressEvent is emitted to the user during a format run. Subject names
// the unit of work: a project during analysis, a rule during fixing, a
// document during merging.
type ProgressEvent struct {
	Phase   Phase
	Subject string
	Status  ProgressStatus
	Message string
}

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full, the event is silently dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
		// Drop the event if the channel is full.
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s/%s (pending)", event.Phase, event.Subject)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s/%s...", event.Phase, event.Subject)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ %s/%s complete", event.Phase, event.Subject)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s/%s failed: %s", event.Phase, event.Subject, event.Message)
	default:
		return fmt.Sprintf("  ? %s/%s (unknown status)", event.Phase, event.Subject)
	}
}
