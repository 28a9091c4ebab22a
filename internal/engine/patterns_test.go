package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-sh/recall/internal/store"
)

func findPattern(patterns []Pattern, kind PatternKind, commands ...string) *Pattern {
	for i, p := range patterns {
		if p.Kind != kind || len(p.Commands) != len(commands) {
			continue
		}
		match := true
		for j := range commands {
			if p.Commands[j] != commands[j] {
				match = false
				break
			}
		}
		if match {
			return &patterns[i]
		}
	}
	return nil
}

func TestDetectSequentialGitWorkflow(t *testing.T) {
	// git add / commit / push executed three times over.
	history := repeatSequence(3, "git add .", "git commit -m 'test'", "git push")
	fs := &fakeStore{recent: historyMostRecentFirst(history...)}
	miner := NewMiner(fs, nil)

	patterns, diags, err := miner.DetectPatterns(context.Background(), "/work/app")
	require.NoError(t, err)
	assert.Empty(t, diags)

	p := findPattern(patterns, KindSequential, "git add .", "git commit -m 'test'", "git push")
	require.NotNil(t, p, "expected the three-step git sequence to be detected")
	assert.GreaterOrEqual(t, p.Occurrences, 3)
	assert.GreaterOrEqual(t, p.Confidence, 0.6)
}

func TestDetectSequentialConfidence(t *testing.T) {
	// Three occurrences of a window of size 3: 3/10 + 3/10.
	assert.InDelta(t, 0.6, sequenceConfidence(3, 3), 1e-9)
	// Occurrence term caps at 0.7, length term at 0.3, sum at 1.0.
	assert.InDelta(t, 1.0, sequenceConfidence(100, 5), 1e-9)
	assert.InDelta(t, 0.7+0.3, sequenceConfidence(7, 3), 1e-9)
	assert.InDelta(t, 0.5, sequenceConfidence(3, 2), 1e-9)
}

func TestDetectSequentialBelowMinOccurrences(t *testing.T) {
	history := repeatSequence(2, "make build", "make test")
	fs := &fakeStore{recent: historyMostRecentFirst(history...)}
	miner := NewMiner(fs, nil)

	patterns, _, err := miner.DetectPatterns(context.Background(), "")
	require.NoError(t, err)
	for _, p := range patterns {
		assert.NotEqual(t, KindSequential, p.Kind, "two repeats must not form a pattern")
	}
}

func TestChronologicalWindowing(t *testing.T) {
	history := repeatSequence(3, "a", "b", "c")
	mostRecentFirst := historyMostRecentFirst(history...)

	t.Run("chronological order", func(t *testing.T) {
		fs := &fakeStore{recent: mostRecentFirst}
		miner := NewMinerWithOptions(fs, nil, MinerOptions{Chronological: true})

		patterns, _, err := miner.DetectPatterns(context.Background(), "")
		require.NoError(t, err)
		assert.NotNil(t, findPattern(patterns, KindSequential, "a", "b", "c"))
		assert.Nil(t, findPattern(patterns, KindSequential, "c", "b", "a"))
	})

	t.Run("fetch order", func(t *testing.T) {
		fs := &fakeStore{recent: mostRecentFirst}
		miner := NewMinerWithOptions(fs, nil, MinerOptions{Chronological: false})

		patterns, _, err := miner.DetectPatterns(context.Background(), "")
		require.NoError(t, err)
		assert.NotNil(t, findPattern(patterns, KindSequential, "c", "b", "a"))
		assert.Nil(t, findPattern(patterns, KindSequential, "a", "b", "c"))
	})
}

func TestDetectFrequencyPatterns(t *testing.T) {
	fs := &fakeStore{
		mostUsed: []store.Command{
			{Command: "git status", UsageCount: 20},
			{Command: "git push", UsageCount: 15},
			{Command: "git pull", UsageCount: 10},
			// Heavily used but only two members: no pattern.
			{Command: "docker ps", UsageCount: 40},
			{Command: "docker build .", UsageCount: 40},
			// Three members but too little usage: below threshold.
			{Command: "npm install", UsageCount: 2},
			{Command: "npm test", UsageCount: 2},
			{Command: "npm run dev", UsageCount: 2},
		},
	}
	miner := NewMiner(fs, nil)

	patterns, _, err := miner.DetectPatterns(context.Background(), "/work/app")
	require.NoError(t, err)

	p := findPattern(patterns, KindFrequency, "git status", "git push", "git pull")
	require.NotNil(t, p, "expected a frequency pattern for the git category")
	// avg usage 15 of 20 cap
	assert.InDelta(t, 0.75, p.Confidence, 1e-9)
	assert.Equal(t, 45, p.Occurrences)
	assert.Equal(t, "/work/app", p.ProjectPath)

	for _, p := range patterns {
		if p.Kind != KindFrequency {
			continue
		}
		assert.NotEqual(t, "docker", Category(p.Commands[0]), "two-member category must not cluster")
		assert.NotEqual(t, "npm", Category(p.Commands[0]), "low-usage category must not cluster")
	}
}

func TestFrequencyConfidenceCap(t *testing.T) {
	fs := &fakeStore{
		mostUsed: []store.Command{
			{Command: "git status", UsageCount: 500},
			{Command: "git push", UsageCount: 500},
			{Command: "git pull", UsageCount: 500},
		},
	}
	patterns, _, err := NewMiner(fs, nil).DetectPatterns(context.Background(), "")
	require.NoError(t, err)

	p := findPattern(patterns, KindFrequency, "git status", "git push", "git pull")
	require.NotNil(t, p)
	assert.InDelta(t, 0.95, p.Confidence, 1e-9)
}

func TestCategory(t *testing.T) {
	assert.Equal(t, "git", Category("git add ."))
	assert.Equal(t, "docker", Category("  docker ps"))
	assert.Equal(t, "Git", Category("Git status"), "categories are case-sensitive")
	assert.Equal(t, "other", Category(""))
	assert.Equal(t, "other", Category("   "))
}

func TestPersistPatternsThreshold(t *testing.T) {
	// a,b,c repeated three times yields size-2 windows at 0.5 confidence
	// and size-3 windows at 0.6; only the latter may be persisted.
	history := repeatSequence(3, "a", "b", "c")
	fs := &fakeStore{recent: historyMostRecentFirst(history...)}
	miner := NewMiner(fs, nil)

	_, diags, err := miner.DetectPatterns(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, diags)

	require.NotEmpty(t, fs.storedPatterns)
	for _, rec := range fs.storedPatterns {
		assert.GreaterOrEqual(t, rec.Confidence, 0.6)
		assert.Contains(t, rec.MetadataJSON, `"method":"auto"`)
	}
}

func TestPersistFailureBecomesDiagnostic(t *testing.T) {
	history := repeatSequence(3, "git add .", "git commit -m 'test'", "git push")
	fs := &fakeStore{
		recent:     historyMostRecentFirst(history...),
		patternErr: errors.New("disk full"),
	}
	miner := NewMiner(fs, nil)

	patterns, diags, err := miner.DetectPatterns(context.Background(), "")
	require.NoError(t, err, "persistence failure must not fail detection")
	assert.NotEmpty(t, patterns)
	require.NotEmpty(t, diags)
	assert.Equal(t, "store_pattern", diags[0].Op)
}

func TestDetectPatternsStoreReadFailure(t *testing.T) {
	fs := &fakeStore{readErr: errors.New("db locked")}
	miner := NewMiner(fs, nil)

	patterns, diags, err := miner.DetectPatterns(context.Background(), "")
	require.Error(t, err)
	assert.Nil(t, patterns)
	assert.Nil(t, diags)
}
