package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func mustRecord(t *testing.T, st *SQLiteStore, project, command string) int64 {
	t.Helper()
	id, err := st.RecordCommand(context.Background(), CommandInput{
		ProjectPath: project,
		Command:     command,
	})
	require.NoError(t, err)
	return id
}

func setTimestamp(t *testing.T, st *SQLiteStore, id, tsMs int64) {
	t.Helper()
	_, err := st.DB().Exec("UPDATE commands SET ts_unix_ms = ? WHERE id = ?", tsMs, id)
	require.NoError(t, err)
}

func TestRecordCommandUpsert(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first := mustRecord(t, st, "/work/app", "git status")
	second := mustRecord(t, st, "/work/app", "git status")
	assert.Equal(t, first, second, "re-recording must hit the same row")

	cmd, err := st.CommandByID(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cmd.UsageCount)
	assert.NotEmpty(t, cmd.CommandID)

	// Same text in a different project is a separate row.
	other := mustRecord(t, st, "/work/lib", "git status")
	assert.NotEqual(t, first, other)
	otherCmd, err := st.CommandByID(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, int64(1), otherCmd.UsageCount)
}

func TestRecordCommandValidation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.RecordCommand(ctx, CommandInput{Command: "git status"})
	assert.Error(t, err)
	_, err = st.RecordCommand(ctx, CommandInput{ProjectPath: "/work/app"})
	assert.Error(t, err)
}

func TestRecordCommandMetadata(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	execTime := int64(230)
	exitCode := 1
	label := "morning"
	id, err := st.RecordCommand(ctx, CommandInput{
		ProjectPath:     "/work/app",
		Command:         "go test ./...",
		ExecutionTimeMs: &execTime,
		ExitCode:        &exitCode,
		Tags:            []string{"destructive"},
		Context:         &label,
		WordCount:       3,
	})
	require.NoError(t, err)

	cmd, err := st.CommandByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, cmd.ExecutionTimeMs)
	assert.Equal(t, int64(230), *cmd.ExecutionTimeMs)
	require.NotNil(t, cmd.ExitCode)
	assert.Equal(t, 1, *cmd.ExitCode)
	assert.Equal(t, []string{"destructive"}, cmd.TagList())
	require.NotNil(t, cmd.Context)
	assert.Equal(t, "morning", *cmd.Context)
	assert.Equal(t, 3, cmd.WordCount)
}

func TestRecentCommandsOrdering(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a := mustRecord(t, st, "/work/app", "git add .")
	b := mustRecord(t, st, "/work/app", "git commit")
	c := mustRecord(t, st, "/work/app", "git push")
	setTimestamp(t, st, a, 1000)
	setTimestamp(t, st, b, 2000)
	setTimestamp(t, st, c, 3000)

	recent, err := st.RecentCommands(ctx, "/work/app", 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "git push", recent[0].Command)
	assert.Equal(t, "git commit", recent[1].Command)
	assert.Equal(t, "git add .", recent[2].Command)

	limited, err := st.RecentCommands(ctx, "/work/app", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestScopeFiltering(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	mustRecord(t, st, "/work/app", "npm test")
	mustRecord(t, st, "/work/lib", "cargo test")

	scoped, err := st.RecentCommands(ctx, "/work/app", 10)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "npm test", scoped[0].Command)

	all, err := st.RecentCommands(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMostUsedCommands(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		mustRecord(t, st, "/work/app", "git status")
	}
	mustRecord(t, st, "/work/app", "git push")

	most, err := st.MostUsedCommands(ctx, "/work/app", 10)
	require.NoError(t, err)
	require.Len(t, most, 2)
	assert.Equal(t, "git status", most[0].Command)
	assert.Equal(t, int64(3), most[0].UsageCount)
}

func TestSearchCommands(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	mustRecord(t, st, "/work/app", "docker run -it ubuntu")
	mustRecord(t, st, "/work/app", "docker ps")
	mustRecord(t, st, "/work/app", "git status")

	results, err := st.SearchCommands(ctx, "docker", "", 10)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	none, err := st.SearchCommands(ctx, "kubectl", "", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCommandByIDNotFound(t *testing.T) {
	st := newTestStore(t)
	_, err := st.CommandByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrCommandNotFound)
}

func TestPatternRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, err := st.StorePattern(ctx, PatternRecord{
		PatternType:  "sequence",
		Commands:     []string{"git add .", "git commit", "git push"},
		ProjectPath:  "/work/app",
		Confidence:   0.6,
		Occurrences:  3,
		MetadataJSON: `{"method":"auto"}`,
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	// A global pattern has no project path.
	_, err = st.StorePattern(ctx, PatternRecord{
		PatternType: "frequency",
		Commands:    []string{"git status", "git push", "git pull"},
		Confidence:  0.75,
		Occurrences: 45,
	})
	require.NoError(t, err)

	patterns, err := st.Patterns(ctx, "/work/app")
	require.NoError(t, err)
	require.Len(t, patterns, 2, "scoped query includes global patterns")
	assert.Equal(t, "frequency", patterns[0].PatternType, "highest confidence first")
	assert.Equal(t, []string{"git add .", "git commit", "git push"}, patterns[1].Commands)
	assert.Equal(t, `{"method":"auto"}`, patterns[1].MetadataJSON)

	other, err := st.Patterns(ctx, "/work/lib")
	require.NoError(t, err)
	require.Len(t, other, 1, "other scopes only see global patterns")
	assert.Empty(t, other[0].ProjectPath)
}

func TestStorePatternValidation(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.StorePattern(ctx, PatternRecord{Commands: []string{"a"}})
	assert.Error(t, err, "pattern_type is required")
	_, err = st.StorePattern(ctx, PatternRecord{PatternType: "sequence"})
	assert.Error(t, err, "commands must be non-empty")
}

func TestSuggestionFeedback(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	reason := "Node project: run tests"
	id, err := st.StoreSuggestion(ctx, SuggestionRecord{
		ProjectPath:      "/work/app",
		SuggestedCommand: "npm test",
		Reason:           &reason,
		Confidence:       0.65,
	})
	require.NoError(t, err)

	sug, err := st.SuggestionByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sug.AcceptanceRate(), "no feedback yet")
	assert.Nil(t, sug.LastSuggestedMs)
	require.NotNil(t, sug.Reason)
	assert.Equal(t, reason, *sug.Reason)
}

func TestSuggestionFeedbackCounters(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, err := st.StoreSuggestion(ctx, SuggestionRecord{
		ProjectPath:      "/work/app",
		SuggestedCommand: "npm test",
		Confidence:       0.65,
	})
	require.NoError(t, err)

	require.NoError(t, st.RecordFeedback(ctx, id, true))
	require.NoError(t, st.RecordFeedback(ctx, id, true))
	require.NoError(t, st.RecordFeedback(ctx, id, false))

	sug, err := st.SuggestionByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, sug.TimesAccepted)
	assert.Equal(t, 1, sug.TimesRejected)
	assert.InDelta(t, 2.0/3.0, sug.AcceptanceRate(), 1e-9)
	assert.NotNil(t, sug.LastSuggestedMs, "feedback stamps last_suggested")
	assert.InDelta(t, 0.65, sug.Confidence, 1e-9, "feedback never adjusts confidence")
}

func TestRecordFeedbackNotFound(t *testing.T) {
	st := newTestStore(t)
	err := st.RecordFeedback(context.Background(), 999, true)
	assert.ErrorIs(t, err, ErrSuggestionNotFound)
}

func TestSuggestionsQuery(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	morning := "morning"
	night := "night"
	_, err := st.StoreSuggestion(ctx, SuggestionRecord{
		ProjectPath: "/work/app", SuggestedCommand: "git pull", Context: &morning, Confidence: 0.65,
	})
	require.NoError(t, err)
	_, err = st.StoreSuggestion(ctx, SuggestionRecord{
		ProjectPath: "/work/app", SuggestedCommand: "npm install", Context: &night, Confidence: 0.7,
	})
	require.NoError(t, err)

	all, err := st.Suggestions(ctx, "/work/app", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "npm install", all[0].SuggestedCommand, "highest confidence first")

	filtered, err := st.Suggestions(ctx, "/work/app", "morning")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "git pull", filtered[0].SuggestedCommand)
}

func TestSuggestionsEmptyScopeMatchesAllProjects(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, rec := range []SuggestionRecord{
		{ProjectPath: "/work/app", SuggestedCommand: "npm test", Confidence: 0.65},
		{ProjectPath: "/work/api", SuggestedCommand: "cargo build", Confidence: 0.7},
	} {
		_, err := st.StoreSuggestion(ctx, rec)
		require.NoError(t, err)
	}

	all, err := st.Suggestions(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, all, 2, "empty scope matches all projects, like command queries")

	scoped, err := st.Suggestions(ctx, "/work/api", "")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "cargo build", scoped[0].SuggestedCommand)
}

func TestStats(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	mustRecord(t, st, "/work/app", "git status")
	mustRecord(t, st, "/work/app", "git push")
	_, err := st.StorePattern(ctx, PatternRecord{
		PatternType: "sequence",
		Commands:    []string{"a", "b"},
		Confidence:  0.6,
		Occurrences: 3,
	})
	require.NoError(t, err)

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalCommands)
	assert.Equal(t, int64(1), stats.TotalPatterns)
	assert.Equal(t, int64(0), stats.TotalSuggestions)
}
