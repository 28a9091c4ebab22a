// Package record turns raw shell input into stored history: sanitize,
// classify, then upsert through the store.
package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/shlex"

	"github.com/recall-sh/recall/internal/sanitize"
	"github.com/recall-sh/recall/internal/store"
)

// ErrIgnored marks commands that are valid but deliberately not recorded
// (navigation noise, too short). Callers treat it as a silent skip.
var ErrIgnored = errors.New("command ignored")

// Event is one raw command execution to record.
type Event struct {
	Command         string
	ProjectPath     string
	ExecutionTimeMs *int64
	ExitCode        *int
	Context         *string
}

// Recorder validates, cleans, and persists command events.
type Recorder struct {
	store     store.Store
	sanitizer *sanitize.Sanitizer
	logger    *slog.Logger
}

// NewRecorder creates a recorder over the given store.
func NewRecorder(st store.Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:     st,
		sanitizer: sanitize.NewSanitizer(),
		logger:    logger,
	}
}

// Record cleans and validates a single event, then upserts it. Returns the
// command row id. Noise commands return ErrIgnored; commands carrying
// secrets return sanitize.ErrSensitive and never reach the store.
func (r *Recorder) Record(ctx context.Context, ev Event) (int64, error) {
	cleaned := r.sanitizer.Clean(ev.Command)
	if r.sanitizer.ShouldIgnore(cleaned) {
		return 0, ErrIgnored
	}
	if err := r.sanitizer.Validate(cleaned); err != nil {
		return 0, fmt.Errorf("invalid command: %w", err)
	}

	var tags []string
	if sanitize.IsDestructive(cleaned) {
		tags = append(tags, string(sanitize.RiskDestructive))
	}

	id, err := r.store.RecordCommand(ctx, store.CommandInput{
		ProjectPath:     ev.ProjectPath,
		Command:         cleaned,
		ExecutionTimeMs: ev.ExecutionTimeMs,
		ExitCode:        ev.ExitCode,
		Tags:            tags,
		Context:         ev.Context,
		WordCount:       wordCount(cleaned),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record command: %w", err)
	}
	return id, nil
}

// RecordBatch records events in order. Per-event failures are logged and
// skipped; the batch never aborts. Returns the number recorded.
func (r *Recorder) RecordBatch(ctx context.Context, events []Event) int {
	recorded := 0
	for _, ev := range events {
		if _, err := r.Record(ctx, ev); err != nil {
			if !errors.Is(err, ErrIgnored) {
				r.logger.Warn("skipping command in batch", "error", err)
			}
			continue
		}
		recorded++
	}
	return recorded
}

// wordCount splits shell-aware: quoted arguments count as one word. Falls
// back to whitespace splitting when the command has unbalanced quotes.
func wordCount(command string) int {
	words, err := shlex.Split(command)
	if err != nil {
		return len(strings.Fields(command))
	}
	return len(words)
}
