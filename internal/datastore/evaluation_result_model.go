package datastore

import (
	"database/sql"
	"encoding/json"
	"time"
)

// EvaluationResult maps to the evaluation_results table. One row per
// (model, sample) pair of a job; failed pairs carry a failure_reason and
// NULL metrics.
type EvaluationResult struct {
	ID                    int             `json:"id"`
	JobID                 int             `json:"job_id"`
	SampleID              int             `json:"sample_id"`
	RequestedModel        string          `json:"requested_model"`
	ModelUsed             sql.NullString  `json:"model_used,omitempty"`
	FellBack              bool            `json:"fell_back"`
	SkippedModels         json.RawMessage `json:"skipped_models,omitempty"` // [{"model": ..., "reason": ...}]
	Transcript            sql.NullString  `json:"transcript,omitempty"`
	WER                   sql.NullFloat64 `json:"wer,omitempty"`
	CER                   sql.NullFloat64 `json:"cer,omitempty"`
	WordOverlapRatio      sql.NullFloat64 `json:"word_overlap_ratio,omitempty"`
	KeyTermsFound         sql.NullInt64   `json:"key_terms_found,omitempty"`
	KeyTermsMatched       json.RawMessage `json:"key_terms_matched,omitempty"`
	ProcessingTimeSeconds sql.NullFloat64 `json:"processing_time_seconds,omitempty"`
	FailureReason         sql.NullString  `json:"failure_reason,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// LeaderboardRow is one aggregated leaderboard entry computed over stored
// results.
type LeaderboardRow struct {
	ModelName                string  `json:"model_name"`
	AvgWER                   float64 `json:"avg_wer"`
	BestWER                  float64 `json:"best_wer"`
	AvgCER                   float64 `json:"avg_cer"`
	AvgWordOverlapRatio      float64 `json:"avg_word_overlap_ratio"`
	AvgProcessingTimeSeconds float64 `json:"avg_processing_time_seconds"`
	SampleCount              int     `json:"sample_count"`
}
