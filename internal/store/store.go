// Package store provides SQLite-based persistent storage for recall.
// It holds the command history, detected patterns, and generated
// suggestions, and is the single durable collaborator of the engine.
package store

import (
	"context"
	"encoding/json"
)

// Store defines the interface for all storage operations.
type Store interface {
	// Commands
	RecordCommand(ctx context.Context, input CommandInput) (int64, error)
	RecentCommands(ctx context.Context, scope string, limit int) ([]Command, error)
	MostUsedCommands(ctx context.Context, scope string, limit int) ([]Command, error)
	SearchCommands(ctx context.Context, query, scope string, limit int) ([]Command, error)
	CommandByID(ctx context.Context, id int64) (*Command, error)

	// Patterns
	StorePattern(ctx context.Context, rec PatternRecord) (int64, error)
	Patterns(ctx context.Context, scope string) ([]PatternRecord, error)

	// Suggestions
	StoreSuggestion(ctx context.Context, rec SuggestionRecord) (int64, error)
	Suggestions(ctx context.Context, scope, contextLabel string) ([]SuggestionRecord, error)
	SuggestionByID(ctx context.Context, id int64) (*SuggestionRecord, error)
	RecordFeedback(ctx context.Context, id int64, accepted bool) error

	// Lifecycle
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}

// Command represents a recorded command event. Uniqueness is
// (project_path, command): re-recording the same command in the same
// project increments UsageCount instead of creating a new row.
type Command struct {
	ID              int64
	CommandID       string // uuid, stable across usage increments
	ProjectPath     string
	Command         string
	TsUnixMs        int64
	UsageCount      int64
	ExecutionTimeMs *int64
	ExitCode        *int
	Tags            string // JSON array
	Context         *string
	WordCount       int
}

// TagList decodes the JSON tags column. Malformed tags decode to nil.
func (c *Command) TagList() []string {
	if c.Tags == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(c.Tags), &tags); err != nil {
		return nil
	}
	return tags
}

// CommandInput is the payload for recording a command event.
// Inputs are assumed to be sanitized by the caller (see internal/record).
type CommandInput struct {
	ProjectPath     string
	Command         string
	ExecutionTimeMs *int64
	ExitCode        *int
	Tags            []string
	Context         *string
	WordCount       int
}

// PatternRecord is a durable detected pattern.
type PatternRecord struct {
	ID           int64
	PatternType  string
	Commands     []string
	ProjectPath  string // empty = global
	Confidence   float64
	Occurrences  int
	LastSeenMs   int64
	MetadataJSON string
}

// SuggestionRecord is a durable generated suggestion with feedback counters.
type SuggestionRecord struct {
	ID               int64
	ProjectPath      string
	Context          *string
	SuggestedCommand string
	Reason           *string
	Confidence       float64
	TimesAccepted    int
	TimesRejected    int
	CreatedAtMs      int64
	LastSuggestedMs  *int64
}

// AcceptanceRate returns accepted/(accepted+rejected), or 0.0 when no
// feedback has been recorded yet.
func (s *SuggestionRecord) AcceptanceRate() float64 {
	total := s.TimesAccepted + s.TimesRejected
	if total == 0 {
		return 0.0
	}
	return float64(s.TimesAccepted) / float64(total)
}

// Stats summarizes the database contents.
type Stats struct {
	TotalCommands    int64
	TotalPatterns    int64
	TotalSuggestions int64
}
