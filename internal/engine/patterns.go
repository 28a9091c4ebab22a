package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/recall-sh/recall/internal/store"
)

// PatternKind identifies how a pattern was detected. The set is closed;
// new detection strategies are compile-time changes, not plugins.
type PatternKind string

const (
	KindSequential   PatternKind = "sequence"
	KindFrequency    PatternKind = "frequency"
	KindTimeBased    PatternKind = "time_based"
	KindContextBased PatternKind = "context_based"
)

const (
	// minPatternOccurrences is how many times a window must repeat before
	// it counts as a pattern.
	minPatternOccurrences = 3

	// MinConfidence is the persistence threshold: only patterns at least
	// this confident are written through the store.
	MinConfidence = 0.6

	// sequentialFetchLimit bounds the history fed into sequence mining.
	sequentialFetchLimit = 1000

	// frequencyFetchLimit bounds the commands fed into frequency mining.
	frequencyFetchLimit = 50
)

// windowSizes are the sequence lengths tried during sequential mining.
var windowSizes = []int{2, 3, 4, 5}

// Pattern is a detected command pattern. Instances are owned by the
// detection run that produced them and are superseded, not merged, by the
// next run.
type Pattern struct {
	Kind        PatternKind
	Commands    []string
	Confidence  float64
	Occurrences int
	ProjectPath string // empty = global
}

// MinerOptions configures pattern detection.
type MinerOptions struct {
	// Chronological controls the windowing direction of sequential mining.
	// The store returns history most-recent-first; when true (the default
	// via NewMiner), the fetched slice is reversed so windows read in true
	// execution order and "A then B" means A actually preceded B.
	Chronological bool
}

// Miner detects patterns in recorded command history.
type Miner struct {
	store  store.Store
	logger *slog.Logger
	opts   MinerOptions
}

// NewMiner creates a pattern miner with chronological windowing.
func NewMiner(st store.Store, logger *slog.Logger) *Miner {
	return NewMinerWithOptions(st, logger, MinerOptions{Chronological: true})
}

// NewMinerWithOptions creates a pattern miner with explicit options.
func NewMinerWithOptions(st store.Store, logger *slog.Logger, opts MinerOptions) *Miner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Miner{store: st, logger: logger, opts: opts}
}

// DetectPatterns mines the history for the given scope (empty = all
// projects) and returns the detected patterns. Order is not guaranteed to
// be by confidence; callers must re-sort if order matters.
//
// Patterns with confidence >= MinConfidence are written through the store
// best-effort; write failures are returned as diagnostics, never as the
// call's error. Store read failures propagate and no partial result is
// returned.
func (m *Miner) DetectPatterns(ctx context.Context, scope string) ([]Pattern, []Diagnostic, error) {
	var patterns []Pattern

	sequential, err := m.detectSequential(ctx, scope)
	if err != nil {
		return nil, nil, err
	}
	patterns = append(patterns, sequential...)

	frequency, err := m.detectFrequency(ctx, scope)
	if err != nil {
		return nil, nil, err
	}
	patterns = append(patterns, frequency...)

	diags := m.persistPatterns(ctx, patterns)
	return patterns, diags, nil
}

// persistPatterns writes qualifying patterns through the store. Failures
// are collected, logged, and swallowed: detection succeeding and
// persistence succeeding are independent outcomes.
func (m *Miner) persistPatterns(ctx context.Context, patterns []Pattern) []Diagnostic {
	var diags []Diagnostic
	for _, p := range patterns {
		if p.Confidence < MinConfidence {
			continue
		}

		metadata, _ := json.Marshal(map[string]string{
			"detected_at": time.Now().UTC().Format(time.RFC3339),
			"method":      "auto",
		})

		_, err := m.store.StorePattern(ctx, store.PatternRecord{
			PatternType:  string(p.Kind),
			Commands:     p.Commands,
			ProjectPath:  p.ProjectPath,
			Confidence:   p.Confidence,
			Occurrences:  p.Occurrences,
			MetadataJSON: string(metadata),
		})
		if err != nil {
			m.logger.Warn("failed to persist pattern", "kind", p.Kind, "error", err)
			diags = append(diags, Diagnostic{Op: "store_pattern", Err: err})
		}
	}
	return diags
}

// detectSequential finds command sequences that repeat in execution order.
func (m *Miner) detectSequential(ctx context.Context, scope string) ([]Pattern, error) {
	commands, err := m.store.RecentCommands(ctx, scope, sequentialFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent commands: %w", err)
	}
	if len(commands) < minPatternOccurrences {
		return nil, nil
	}

	texts := make([]string, len(commands))
	for i, c := range commands {
		texts[i] = c.Command
	}
	if m.opts.Chronological {
		reverse(texts)
	}

	var patterns []Pattern
	for _, size := range windowSizes {
		patterns = append(patterns, frequentSequences(texts, size)...)
	}
	return patterns, nil
}

// frequentSequences counts every contiguous window of the given size and
// keeps those that repeat at least minPatternOccurrences times.
func frequentSequences(texts []string, size int) []Pattern {
	if len(texts) < size {
		return nil
	}

	counts := make(map[string]int)
	firstSeen := make(map[string][]string)
	for i := 0; i+size <= len(texts); i++ {
		window := texts[i : i+size]
		key := strings.Join(window, "\x00")
		counts[key]++
		if _, ok := firstSeen[key]; !ok {
			seq := make([]string, size)
			copy(seq, window)
			firstSeen[key] = seq
		}
	}

	var patterns []Pattern
	for key, count := range counts {
		if count < minPatternOccurrences {
			continue
		}
		patterns = append(patterns, Pattern{
			Kind:        KindSequential,
			Commands:    firstSeen[key],
			Confidence:  sequenceConfidence(count, size),
			Occurrences: count,
		})
	}
	return patterns
}

// sequenceConfidence grows with occurrence count and sequence length:
// min(occurrences/10, 0.7) + min(size/10, 0.3), capped at 1.0.
func sequenceConfidence(occurrences, windowSize int) float64 {
	base := min(float64(occurrences)/10.0, 0.7)
	lengthBonus := min(float64(windowSize)/10.0, 0.3)
	return min(base+lengthBonus, 1.0)
}

// detectFrequency finds heavily-used tool categories.
func (m *Miner) detectFrequency(ctx context.Context, scope string) ([]Pattern, error) {
	commands, err := m.store.MostUsedCommands(ctx, scope, frequencyFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch most used commands: %w", err)
	}

	// Group by category, preserving store order within each group.
	groups := make(map[string][]store.Command)
	var order []string
	for _, cmd := range commands {
		cat := Category(cmd.Command)
		if _, ok := groups[cat]; !ok {
			order = append(order, cat)
		}
		groups[cat] = append(groups[cat], cmd)
	}

	var patterns []Pattern
	for _, cat := range order {
		members := groups[cat]
		if len(members) < 3 {
			continue
		}

		var totalUsage int64
		texts := make([]string, len(members))
		for i, c := range members {
			totalUsage += c.UsageCount
			texts[i] = c.Command
		}
		avgUsage := float64(totalUsage) / float64(len(members))
		confidence := min(avgUsage/20.0, 0.95)
		if confidence < MinConfidence {
			continue
		}

		patterns = append(patterns, Pattern{
			Kind:        KindFrequency,
			Commands:    texts,
			Confidence:  confidence,
			Occurrences: int(totalUsage),
			ProjectPath: scope,
		})
	}
	return patterns, nil
}

// Category returns the coarse grouping key for a command: its first
// whitespace-delimited token, verbatim and case-sensitive.
func Category(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "other"
	}
	return fields[0]
}

func reverse(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
