package metricscalculator

import (
	"math"
	"testing"
	"time"

	"asr-benchmark-platform/internal/coreengine/modeladapters"
)

const epsilon = 1e-12

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestWER(t *testing.T) {
	tests := []struct {
		name       string
		reference  string
		hypothesis string
		expect     float64
	}{
		{"identical", "the quick brown fox", "the quick brown fox", 0.0},
		{"one_deletion", "the quick brown fox", "the quick fox", 0.25},
		{"one_substitution", "the quick brown fox", "the quick black fox", 0.25},
		{"one_insertion", "the quick brown fox", "the very quick brown fox", 0.25},
		{"case_insensitive", "The Quick Brown Fox", "the quick brown fox", 0.0},
		{"both_empty", "", "", 0.0},
		{"empty_reference", "", "anything", 1.0},
		{"whitespace_reference", "   ", "anything", 1.0},
		{"empty_hypothesis", "the quick brown fox", "", 1.0},
		{"completely_wrong", "a b", "c d", 1.0},
		{"unbounded_above", "one", "a b c", 3.0},
		{"words_not_characters", "ab", "a b", 2.0},
		{"repeated_vocabulary_swap", "a b c a", "a c b a", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WER(tt.reference, tt.hypothesis)
			if !approxEqual(got, tt.expect) {
				t.Errorf("WER(%q, %q) = %v, want %v", tt.reference, tt.hypothesis, got, tt.expect)
			}
		})
	}
}

func TestWERDeterminism(t *testing.T) {
	reference := "the quick brown fox jumps over the lazy dog"
	hypothesis := "the quig brown fox jump over lazy dog"
	first := WER(reference, hypothesis)
	for i := 0; i < 100; i++ {
		if got := WER(reference, hypothesis); got != first {
			t.Fatalf("WER not deterministic: run %d produced %v, first run produced %v", i, got, first)
		}
	}
}

func TestWERIdentity(t *testing.T) {
	for _, reference := range []string{"hello", "the quick brown fox", "Vaporeon is a Pokemon"} {
		if got := WER(reference, reference); got != 0.0 {
			t.Errorf("WER(%q, %q) = %v, want 0.0", reference, reference, got)
		}
		if got := CER(reference, reference); got != 0.0 {
			t.Errorf("CER(%q, %q) = %v, want 0.0", reference, reference, got)
		}
	}
}

func TestWERMonotonicOnInsertedError(t *testing.T) {
	reference := "the quick brown fox"
	hypotheses := []string{
		"the quick brown fox",
		"the quick fox",
		"completely different words here",
	}
	for _, hypothesis := range hypotheses {
		base := WER(reference, hypothesis)
		worse := WER(reference, hypothesis+" zzzz")
		if worse < base {
			t.Errorf("inserting an incorrect word decreased WER: %q went from %v to %v", hypothesis, base, worse)
		}
	}
}

func TestCER(t *testing.T) {
	tests := []struct {
		name       string
		reference  string
		hypothesis string
		expect     float64
	}{
		{"identical", "the quick brown fox", "the quick brown fox", 0.0},
		{"case_normalized", "ABC", "abc", 0.0},
		{"single_char_substitution", "abcd", "abed", 0.25},
		{"both_empty", "", "", 0.0},
		{"empty_reference", "", "x", 1.0},
		{"unicode_runes", "héllo", "hallo", 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CER(tt.reference, tt.hypothesis)
			if !approxEqual(got, tt.expect) {
				t.Errorf("CER(%q, %q) = %v, want %v", tt.reference, tt.hypothesis, got, tt.expect)
			}
		})
	}
}

func TestWordOverlapRatio(t *testing.T) {
	tests := []struct {
		name       string
		reference  string
		hypothesis string
		expect     float64
	}{
		{"identical", "the quick brown fox", "the quick brown fox", 1.0},
		{"order_insensitive", "the quick brown fox", "fox brown quick the", 1.0},
		{"half_overlap", "alpha beta gamma delta", "alpha beta nope nada", 0.5},
		{"no_overlap", "one two", "three four", 0.0},
		{"empty_reference", "", "anything", 0.0},
		{"duplicate_words_counted_once", "fox fox fox dog", "fox", 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WordOverlapRatio(tt.reference, tt.hypothesis)
			if !approxEqual(got, tt.expect) {
				t.Errorf("WordOverlapRatio(%q, %q) = %v, want %v", tt.reference, tt.hypothesis, got, tt.expect)
			}
		})
	}
}

func TestMatchKeyTerms(t *testing.T) {
	tests := []struct {
		name       string
		hypothesis string
		terms      []string
		expect     []string
	}{
		{"single_hit", "the quick brown fox", []string{"fox", "dog"}, []string{"fox"}},
		{"case_insensitive", "VAPOREON is weird", []string{"vaporeon"}, []string{"vaporeon"}},
		{"substring_match", "pokemons everywhere", []string{"pokemon"}, []string{"pokemon"}},
		{"no_hits", "nothing relevant", []string{"fox", "dog"}, nil},
		{"empty_terms", "anything", nil, nil},
		{"duplicate_terms_deduped", "fox fox", []string{"fox", "FOX"}, []string{"fox"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchKeyTerms(tt.hypothesis, tt.terms)
			if len(got) != len(tt.expect) {
				t.Fatalf("MatchKeyTerms(%q, %v) = %v, want %v", tt.hypothesis, tt.terms, got, tt.expect)
			}
			for i := range got {
				if got[i] != tt.expect[i] {
					t.Errorf("MatchKeyTerms(%q, %v)[%d] = %q, want %q", tt.hypothesis, tt.terms, i, got[i], tt.expect[i])
				}
			}
		})
	}
}

func TestComputeRecord(t *testing.T) {
	result := &modeladapters.TranscriptionResult{
		Text:           "the quick brown fox",
		ProcessingTime: 1500 * time.Millisecond,
	}
	reference := ReferenceTranscript{
		Text:     "the quick brown fox",
		KeyTerms: []string{"fox", "dog"},
	}

	record := ComputeRecord(result, reference)
	if record.WER != 0.0 {
		t.Errorf("WER = %v, want 0.0", record.WER)
	}
	if record.CER != 0.0 {
		t.Errorf("CER = %v, want 0.0", record.CER)
	}
	if record.WordOverlapRatio != 1.0 {
		t.Errorf("WordOverlapRatio = %v, want 1.0", record.WordOverlapRatio)
	}
	if record.KeyTermsFound != 1 {
		t.Errorf("KeyTermsFound = %d, want 1", record.KeyTermsFound)
	}
	if len(record.KeyTermsMatched) != 1 || record.KeyTermsMatched[0] != "fox" {
		t.Errorf("KeyTermsMatched = %v, want [fox]", record.KeyTermsMatched)
	}
	if !approxEqual(record.ProcessingTimeSeconds, 1.5) {
		t.Errorf("ProcessingTimeSeconds = %v, want 1.5", record.ProcessingTimeSeconds)
	}
}
