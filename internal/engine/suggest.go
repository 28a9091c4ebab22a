package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/recall-sh/recall/internal/shellctx"
	"github.com/recall-sh/recall/internal/store"
)

// maxSuggestions is the default cap on suggestions returned per invocation.
const maxSuggestions = 5

// SmartSuggestion is an ephemeral suggestion with a human-readable
// justification. The persisted form additionally tracks feedback counters
// (see store.SuggestionRecord).
type SmartSuggestion struct {
	Command    string
	Reason     string
	Confidence float64
}

// ContextProvider produces fresh context snapshots.
// *shellctx.Detector is the production implementation.
type ContextProvider interface {
	Capture() (*shellctx.Snapshot, error)
}

// EngineOptions configures suggestion generation.
type EngineOptions struct {
	// MaxResults caps how many suggestions one Generate call returns.
	// Values below 1 fall back to the default of 5.
	MaxResults int
}

// Engine generates ranked command suggestions from detected patterns and
// the current shell context.
type Engine struct {
	store    store.Store
	miner    *Miner
	provider ContextProvider
	logger   *slog.Logger
	opts     EngineOptions
}

// NewEngine creates a suggestion engine with the default result cap.
func NewEngine(st store.Store, miner *Miner, provider ContextProvider, logger *slog.Logger) *Engine {
	return NewEngineWithOptions(st, miner, provider, logger, EngineOptions{MaxResults: maxSuggestions})
}

// NewEngineWithOptions creates a suggestion engine with explicit options.
func NewEngineWithOptions(st store.Store, miner *Miner, provider ContextProvider, logger *slog.Logger, opts EngineOptions) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if provider == nil {
		provider = shellctx.NewDetector()
	}
	if opts.MaxResults < 1 {
		opts.MaxResults = maxSuggestions
	}
	return &Engine{store: st, miner: miner, provider: provider, logger: logger, opts: opts}
}

// Generate produces up to MaxResults suggestions for the current context,
// highest confidence first. Candidates from different sources are not
// deduplicated; ties sort in insertion order (stable sort).
//
// Surviving suggestions are persisted best-effort; per-item write failures
// become diagnostics and never affect the returned list. A context snapshot
// failure aborts generation entirely.
func (e *Engine) Generate(ctx context.Context) ([]SmartSuggestion, []Diagnostic, error) {
	snap, err := e.provider.Capture()
	if err != nil {
		return nil, nil, fmt.Errorf("context unavailable: %w", err)
	}

	var suggestions []SmartSuggestion
	var diags []Diagnostic

	fromPatterns, patternDiags, err := e.suggestFromPatterns(ctx, snap)
	if err != nil {
		return nil, nil, err
	}
	suggestions = append(suggestions, fromPatterns...)
	diags = append(diags, patternDiags...)

	suggestions = append(suggestions, suggestFromContext(snap)...)
	suggestions = append(suggestions, suggestFromTime(snap)...)

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	if len(suggestions) > e.opts.MaxResults {
		suggestions = suggestions[:e.opts.MaxResults]
	}

	diags = append(diags, e.persistSuggestions(ctx, snap, suggestions)...)

	return suggestions, diags, nil
}

// suggestFromPatterns predicts the next command in a detected sequence
// based on the most recently executed command.
func (e *Engine) suggestFromPatterns(ctx context.Context, snap *shellctx.Snapshot) ([]SmartSuggestion, []Diagnostic, error) {
	patterns, diags, err := e.miner.DetectPatterns(ctx, snap.WorkingDirectory)
	if err != nil {
		return nil, nil, err
	}

	recent, err := e.store.RecentCommands(ctx, snap.WorkingDirectory, 5)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch recent commands: %w", err)
	}
	if len(recent) == 0 {
		return nil, diags, nil
	}
	lastCmd := recent[0].Command

	var suggestions []SmartSuggestion
	for _, p := range patterns {
		if len(p.Commands) < 2 {
			continue
		}
		next, ok := PredictNextInSequence(lastCmd, p.Commands)
		if !ok {
			continue
		}
		suggestions = append(suggestions, SmartSuggestion{
			Command:    next,
			Reason:     fmt.Sprintf("You usually run '%s' after '%s'", next, lastCmd),
			Confidence: p.Confidence,
		})
	}
	return suggestions, diags, nil
}

// PredictNextInSequence scans sequence left-to-right for the first exact
// match of lastCmd and returns its successor. The last element has no
// successor; only the first matching position is considered.
func PredictNextInSequence(lastCmd string, sequence []string) (string, bool) {
	for i, cmd := range sequence {
		if cmd == lastCmd && i+1 < len(sequence) {
			return sequence[i+1], true
		}
	}
	return "", false
}

// suggestFromContext contributes fixed suggestions keyed by project type
// and git branch.
func suggestFromContext(snap *shellctx.Snapshot) []SmartSuggestion {
	var suggestions []SmartSuggestion

	switch snap.ProjectType {
	case shellctx.TypeNode:
		suggestions = append(suggestions,
			SmartSuggestion{Command: "npm install", Reason: "Node project: install dependencies", Confidence: 0.7},
			SmartSuggestion{Command: "npm test", Reason: "Node project: run tests", Confidence: 0.65},
		)
	case shellctx.TypeRust:
		suggestions = append(suggestions,
			SmartSuggestion{Command: "cargo build", Reason: "Rust project: build project", Confidence: 0.7},
			SmartSuggestion{Command: "cargo test", Reason: "Rust project: run tests", Confidence: 0.65},
		)
	case shellctx.TypePython:
		suggestions = append(suggestions,
			SmartSuggestion{Command: "pip install -r requirements.txt", Reason: "Python project: install dependencies", Confidence: 0.7},
			SmartSuggestion{Command: "python -m pytest", Reason: "Python project: run tests", Confidence: 0.65},
		)
	}

	if branch := snap.GitBranch; branch != "" {
		if strings.Contains(branch, "feature") || strings.Contains(branch, "feat") {
			suggestions = append(suggestions, SmartSuggestion{
				Command:    "git push",
				Reason:     fmt.Sprintf("On feature branch '%s': push changes", branch),
				Confidence: 0.6,
			})
		}
	}

	return suggestions
}

// suggestFromTime contributes suggestions tied to the day and time bucket.
func suggestFromTime(snap *shellctx.Snapshot) []SmartSuggestion {
	var suggestions []SmartSuggestion

	if snap.Day == time.Monday && snap.TimeOfDay == shellctx.Morning {
		suggestions = append(suggestions, SmartSuggestion{
			Command:    "git pull",
			Reason:     "Monday morning: sync with latest changes",
			Confidence: 0.65,
		})
	}
	if snap.Day == time.Friday && snap.TimeOfDay == shellctx.Afternoon {
		suggestions = append(suggestions, SmartSuggestion{
			Command:    "git status",
			Reason:     "Friday afternoon: check for uncommitted changes",
			Confidence: 0.6,
		})
	}

	return suggestions
}

// persistSuggestions writes generated suggestions through the store.
// Per-item failures are logged and collected as diagnostics.
func (e *Engine) persistSuggestions(ctx context.Context, snap *shellctx.Snapshot, suggestions []SmartSuggestion) []Diagnostic {
	var diags []Diagnostic
	timeOfDay := string(snap.TimeOfDay)
	for _, sug := range suggestions {
		reason := sug.Reason
		_, err := e.store.StoreSuggestion(ctx, store.SuggestionRecord{
			ProjectPath:      snap.WorkingDirectory,
			Context:          &timeOfDay,
			SuggestedCommand: sug.Command,
			Reason:           &reason,
			Confidence:       sug.Confidence,
		})
		if err != nil {
			e.logger.Warn("failed to persist suggestion", "command", sug.Command, "error", err)
			diags = append(diags, Diagnostic{Op: "store_suggestion", Err: err})
		}
	}
	return diags
}

// StoredSuggestions returns previously persisted suggestions for a scope,
// highest confidence first. An empty scope matches all projects.
func (e *Engine) StoredSuggestions(ctx context.Context, scope string) ([]store.SuggestionRecord, error) {
	return e.store.Suggestions(ctx, scope, "")
}

// RecordFeedback increments the accepted or rejected counter on a stored
// suggestion. Stored confidence is left untouched; the acceptance rate is
// available to future scoring passes via store.SuggestionRecord.
func (e *Engine) RecordFeedback(ctx context.Context, suggestionID int64, accepted bool) error {
	return e.store.RecordFeedback(ctx, suggestionID, accepted)
}
