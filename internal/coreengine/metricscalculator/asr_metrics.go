package metricscalculator

import (
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Normalization policy: both hypothesis and reference are lower-cased before
// either metric is computed. WER then tokenizes on whitespace; CER compares
// rune sequences directly. All functions in this package are pure and
// deterministic: identical string inputs always produce bit-identical
// float64 results.

// editOptions makes every edit cost 1; the library's DefaultOptions
// charges substitutions as a delete plus an insert, which is not the WER
// convention.
var editOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// WER computes the Word Error Rate between a reference and a hypothesis:
// (substitutions + insertions + deletions) / reference word count.
// An empty reference yields 0.0 against an empty hypothesis and 1.0 against
// anything else.
func WER(reference, hypothesis string) float64 {
	refWords := strings.Fields(strings.ToLower(reference))
	hypWords := strings.Fields(strings.ToLower(hypothesis))

	if len(refWords) == 0 {
		if len(hypWords) == 0 {
			return 0.0
		}
		return 1.0
	}

	// The library aligns rune sequences, so each distinct word is interned
	// to a synthetic rune shared by both sequences and the alignment runs
	// over those symbols.
	symbols := make(map[string]rune, len(refWords)+len(hypWords))
	source := internWords(refWords, symbols)
	target := internWords(hypWords, symbols)

	distance := levenshtein.DistanceForStrings(source, target, editOptions)
	return float64(distance) / float64(len(refWords))
}

// CER computes the Character Error Rate between a reference and a
// hypothesis, with the same normalization and edge-case policy as WER but
// over the rune sequences of the full strings.
func CER(reference, hypothesis string) float64 {
	refRunes := []rune(strings.ToLower(reference))
	hypRunes := []rune(strings.ToLower(hypothesis))

	if len(refRunes) == 0 {
		if len(hypRunes) == 0 {
			return 0.0
		}
		return 1.0
	}

	distance := levenshtein.DistanceForStrings(refRunes, hypRunes, editOptions)
	return float64(distance) / float64(len(refRunes))
}

func internWords(words []string, symbols map[string]rune) []rune {
	runes := make([]rune, len(words))
	for i, w := range words {
		r, ok := symbols[w]
		if !ok {
			r = rune(len(symbols))
			symbols[w] = r
		}
		runes[i] = r
	}
	return runes
}

// WordOverlapRatio computes the number of distinct reference words that
// also occur in the hypothesis, divided by the number of distinct
// reference words. It is order-insensitive, unlike WER. An empty reference
// yields 0.0.
func WordOverlapRatio(reference, hypothesis string) float64 {
	refSet := wordSet(reference)
	if len(refSet) == 0 {
		return 0.0
	}
	hypSet := wordSet(hypothesis)

	common := 0
	for w := range refSet {
		if hypSet[w] {
			common++
		}
	}
	return float64(common) / float64(len(refSet))
}

// MatchKeyTerms reports which of the configured key terms occur in the
// hypothesis, matched case-insensitively as substrings. The returned slice
// is sorted for determinism.
func MatchKeyTerms(hypothesis string, keyTerms []string) []string {
	hypLower := strings.ToLower(hypothesis)

	var matched []string
	seen := map[string]bool{}
	for _, term := range keyTerms {
		t := strings.ToLower(strings.TrimSpace(term))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		if strings.Contains(hypLower, t) {
			matched = append(matched, t)
		}
	}
	sort.Strings(matched)
	return matched
}

func wordSet(text string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
	}
	return set
}
