package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestionScore(t *testing.T) {
	tests := []struct {
		name         string
		frequency    float64
		recency      float64
		patternConf  float64
		contextMatch float64
		acceptance   float64
		want         float64
	}{
		{"all factors at max", 1, 1, 1, 1, 1, 1.0},
		{"all factors at zero", 0, 0, 0, 0, 0, 0.0},
		{"frequency only", 0.5, 0, 0, 0, 0, 0.125},
		{"recency only", 0, 1, 0, 0, 0, 0.20},
		{"pattern confidence only", 0, 0, 1, 0, 0, 0.25},
		{"acceptance only", 0, 0, 0, 0, 1, 0.10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestionScore(tt.frequency, tt.recency, tt.patternConf, tt.contextMatch, tt.acceptance)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSuggestionScoreClampsOutOfRange(t *testing.T) {
	assert.Equal(t, 1.0, SuggestionScore(2, 2, 2, 2, 2))
	assert.Equal(t, 0.0, SuggestionScore(-1, -1, -1, -1, -1))
}

func TestRecencyWeight(t *testing.T) {
	assert.Equal(t, 1.0, RecencyWeight(0))
	assert.InDelta(t, 0.5, RecencyWeight(7), 1e-9)
	assert.InDelta(t, 0.25, RecencyWeight(14), 1e-9)

	// Strictly decreasing
	prev := RecencyWeight(0)
	for days := 1.0; days <= 30; days++ {
		cur := RecencyWeight(days)
		assert.Less(t, cur, prev, "recency must decay at day %v", days)
		prev = cur
	}
}

func TestFrequencyWeight(t *testing.T) {
	assert.Equal(t, 0.5, FrequencyWeight(5, 10))
	assert.Equal(t, 1.0, FrequencyWeight(10, 10))
	assert.Equal(t, 0.0, FrequencyWeight(10, 0), "zero max count floors to 0.0")
	assert.Equal(t, 1.0, FrequencyWeight(20, 10), "over-max clamps to 1.0")
}

func TestContextMatch(t *testing.T) {
	assert.Equal(t, 0.5, ContextMatch(2, 4))
	assert.Equal(t, 1.0, ContextMatch(4, 4))
	assert.Equal(t, 0.0, ContextMatch(1, 0), "zero factors floors to 0.0")
}
