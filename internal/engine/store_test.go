package engine

import (
	"context"
	"sync/atomic"

	"github.com/recall-sh/recall/internal/store"
)

// fakeStore is an in-memory Store for engine tests. History slices are
// most-recent-first, matching the real store's read contract.
type fakeStore struct {
	recent   []store.Command
	mostUsed []store.Command

	readErr    error
	patternErr error
	suggestErr error

	storedPatterns    []store.PatternRecord
	storedSuggestions []store.SuggestionRecord

	nextID atomic.Int64
}

func (f *fakeStore) RecordCommand(ctx context.Context, input store.CommandInput) (int64, error) {
	return f.nextID.Add(1), nil
}

func (f *fakeStore) RecentCommands(ctx context.Context, scope string, limit int) ([]store.Command, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	if limit > 0 && limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeStore) MostUsedCommands(ctx context.Context, scope string, limit int) ([]store.Command, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	if limit > 0 && limit < len(f.mostUsed) {
		return f.mostUsed[:limit], nil
	}
	return f.mostUsed, nil
}

func (f *fakeStore) SearchCommands(ctx context.Context, query, scope string, limit int) ([]store.Command, error) {
	return nil, nil
}

func (f *fakeStore) CommandByID(ctx context.Context, id int64) (*store.Command, error) {
	return nil, store.ErrCommandNotFound
}

func (f *fakeStore) StorePattern(ctx context.Context, rec store.PatternRecord) (int64, error) {
	if f.patternErr != nil {
		return 0, f.patternErr
	}
	rec.ID = f.nextID.Add(1)
	f.storedPatterns = append(f.storedPatterns, rec)
	return rec.ID, nil
}

func (f *fakeStore) Patterns(ctx context.Context, scope string) ([]store.PatternRecord, error) {
	return f.storedPatterns, nil
}

func (f *fakeStore) StoreSuggestion(ctx context.Context, rec store.SuggestionRecord) (int64, error) {
	if f.suggestErr != nil {
		return 0, f.suggestErr
	}
	rec.ID = f.nextID.Add(1)
	f.storedSuggestions = append(f.storedSuggestions, rec)
	return rec.ID, nil
}

func (f *fakeStore) Suggestions(ctx context.Context, scope, contextLabel string) ([]store.SuggestionRecord, error) {
	return f.storedSuggestions, nil
}

func (f *fakeStore) SuggestionByID(ctx context.Context, id int64) (*store.SuggestionRecord, error) {
	for i := range f.storedSuggestions {
		if f.storedSuggestions[i].ID == id {
			return &f.storedSuggestions[i], nil
		}
	}
	return nil, store.ErrSuggestionNotFound
}

func (f *fakeStore) RecordFeedback(ctx context.Context, id int64, accepted bool) error {
	for i := range f.storedSuggestions {
		if f.storedSuggestions[i].ID == id {
			if accepted {
				f.storedSuggestions[i].TimesAccepted++
			} else {
				f.storedSuggestions[i].TimesRejected++
			}
			return nil
		}
	}
	return store.ErrSuggestionNotFound
}

func (f *fakeStore) Stats(ctx context.Context) (*store.Stats, error) {
	return &store.Stats{}, nil
}

func (f *fakeStore) Close() error { return nil }

// historyMostRecentFirst builds a most-recent-first command slice from
// events listed in chronological (execution) order.
func historyMostRecentFirst(chronological ...string) []store.Command {
	n := len(chronological)
	commands := make([]store.Command, n)
	for i, text := range chronological {
		commands[n-1-i] = store.Command{
			ID:          int64(i + 1),
			Command:     text,
			ProjectPath: "/work/app",
			TsUnixMs:    int64(1000 * (i + 1)),
			UsageCount:  1,
		}
	}
	return commands
}

func repeatSequence(times int, seq ...string) []string {
	var out []string
	for i := 0; i < times; i++ {
		out = append(out, seq...)
	}
	return out
}
