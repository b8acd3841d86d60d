package metricscalculator

import (
	"asr-benchmark-platform/internal/coreengine/modeladapters"
)

// ReferenceTranscript is the ground truth for one audio sample. It is
// created once per evaluation dataset and read-only during evaluation.
type ReferenceTranscript struct {
	Text string `json:"text"`
	// KeyTerms are case-insensitive strings expected to appear in a good
	// hypothesis.
	KeyTerms []string `json:"key_terms,omitempty"`
}

// MetricRecord captures one model's performance against one reference.
// It is derived entirely from a TranscriptionResult plus a
// ReferenceTranscript and never mutated after creation.
type MetricRecord struct {
	WER              float64 `json:"wer"`
	CER              float64 `json:"cer"`
	WordOverlapRatio float64 `json:"word_overlap_ratio"`
	// KeyTermsFound is a count, not a ratio; callers apply their own
	// thresholds.
	KeyTermsFound   int      `json:"key_terms_found"`
	KeyTermsMatched []string `json:"key_terms_matched,omitempty"`

	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

// ComputeRecord scores a transcription result against a reference
// transcript. All four quality metrics are pure functions of the two texts
// and the key-term set.
func ComputeRecord(result *modeladapters.TranscriptionResult, reference ReferenceTranscript) MetricRecord {
	matched := MatchKeyTerms(result.Text, reference.KeyTerms)
	return MetricRecord{
		WER:                   WER(reference.Text, result.Text),
		CER:                   CER(reference.Text, result.Text),
		WordOverlapRatio:      WordOverlapRatio(reference.Text, result.Text),
		KeyTermsFound:         len(matched),
		KeyTermsMatched:       matched,
		ProcessingTimeSeconds: result.ProcessingTime.Seconds(),
	}
}
