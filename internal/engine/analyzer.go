package engine

import (
	"context"
	"log/slog"

	"github.com/recall-sh/recall/internal/store"
)

// AnalysisReport packages one detection run and one suggestion run for the
// presentation layer.
type AnalysisReport struct {
	PatternCount    int
	SuggestionCount int
	Patterns        []Pattern
	Suggestions     []SmartSuggestion
	Diagnostics     []Diagnostic
}

// Analyzer composes the pattern miner and the suggestion engine.
type Analyzer struct {
	miner  *Miner
	engine *Engine
}

// NewAnalyzer creates an analyzer over the given store and context provider,
// with default mining and suggestion options.
func NewAnalyzer(st store.Store, provider ContextProvider, logger *slog.Logger) *Analyzer {
	return NewAnalyzerWithOptions(st, provider, logger,
		MinerOptions{Chronological: true}, EngineOptions{MaxResults: maxSuggestions})
}

// NewAnalyzerWithOptions creates an analyzer with explicit mining and
// suggestion options.
func NewAnalyzerWithOptions(st store.Store, provider ContextProvider, logger *slog.Logger, mopts MinerOptions, eopts EngineOptions) *Analyzer {
	miner := NewMinerWithOptions(st, logger, mopts)
	return &Analyzer{
		miner:  miner,
		engine: NewEngineWithOptions(st, miner, provider, logger, eopts),
	}
}

// Engine returns the underlying suggestion engine.
func (a *Analyzer) Engine() *Engine {
	return a.engine
}

// Miner returns the underlying pattern miner.
func (a *Analyzer) Miner() *Miner {
	return a.miner
}

// Analyze runs pattern detection for scope, then suggestion generation for
// the current context, and returns both result sets. If either sub-call
// fails the whole analysis fails; there is no partial report.
func (a *Analyzer) Analyze(ctx context.Context, scope string) (*AnalysisReport, error) {
	patterns, patternDiags, err := a.miner.DetectPatterns(ctx, scope)
	if err != nil {
		return nil, err
	}

	suggestions, suggestionDiags, err := a.engine.Generate(ctx)
	if err != nil {
		return nil, err
	}

	return &AnalysisReport{
		PatternCount:    len(patterns),
		SuggestionCount: len(suggestions),
		Patterns:        patterns,
		Suggestions:     suggestions,
		Diagnostics:     append(patternDiags, suggestionDiags...),
	}, nil
}
