// Package engine implements the pattern-mining and suggestion-scoring core
// of recall: sequence extraction over ordered history, frequency-based tool
// clustering, multi-factor confidence scoring, and context-aware suggestion
// synthesis.
package engine

import "math"

// Suggestion score factor weights. They sum to 1.0 by construction.
const (
	weightFrequency      = 0.25
	weightRecency        = 0.20
	weightPatternConf    = 0.25
	weightContextMatch   = 0.20
	weightAcceptanceRate = 0.10
)

// recencyHalfLifeDays is the half-life of the recency decay, in days.
const recencyHalfLifeDays = 7.0

// SuggestionScore combines normalized factors into a single confidence in
// [0,1]. Inputs are expected to be pre-normalized to [0,1]; out-of-range
// inputs are a caller bug and are only caught by the final clamp.
func SuggestionScore(frequency, recency, patternConfidence, contextMatch, acceptanceRate float64) float64 {
	score := frequency*weightFrequency +
		recency*weightRecency +
		patternConfidence*weightPatternConf +
		contextMatch*weightContextMatch +
		acceptanceRate*weightAcceptanceRate

	return clamp01(score)
}

// FrequencyWeight normalizes a usage count against the maximum count in the
// dataset. Returns 0.0 when maxCount is zero.
func FrequencyWeight(usageCount, maxCount int64) float64 {
	if maxCount == 0 {
		return 0.0
	}
	return clamp01(float64(usageCount) / float64(maxCount))
}

// RecencyWeight maps days-since-last-use to (0,1] using exponential decay
// with a 7-day half-life. RecencyWeight(0) is exactly 1.0. Negative inputs
// must be clamped by the caller.
func RecencyWeight(daysAgo float64) float64 {
	return math.Exp(-daysAgo / recencyHalfLifeDays * math.Ln2)
}

// ContextMatch returns the fraction of context factors that match. Returns
// 0.0 when totalFactors is zero.
func ContextMatch(factorsMatched, totalFactors int) float64 {
	if totalFactors == 0 {
		return 0.0
	}
	return clamp01(float64(factorsMatched) / float64(totalFactors))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
