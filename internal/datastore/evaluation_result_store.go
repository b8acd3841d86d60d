package datastore

import (
	"encoding/json"
	"fmt"
	"time"
)

// CreateEvaluationResult inserts a new evaluation result.
func (s *Store) CreateEvaluationResult(result *EvaluationResult) (int, error) {
	query := `
		INSERT INTO evaluation_results (
			job_id, sample_id, requested_model, model_used, fell_back,
			skipped_models, transcript, wer, cer, word_overlap_ratio,
			key_terms_found, key_terms_matched, processing_time_seconds,
			failure_reason, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	result.CreatedAt = time.Now()

	var skippedJSON, matchedJSON []byte
	if len(result.SkippedModels) > 0 {
		skippedJSON = result.SkippedModels
	} else {
		skippedJSON = json.RawMessage("null")
	}
	if len(result.KeyTermsMatched) > 0 {
		matchedJSON = result.KeyTermsMatched
	} else {
		matchedJSON = json.RawMessage("null")
	}

	var id int
	err := s.db.QueryRow(
		query,
		result.JobID,
		result.SampleID,
		result.RequestedModel,
		result.ModelUsed,
		result.FellBack,
		skippedJSON,
		result.Transcript,
		result.WER,
		result.CER,
		result.WordOverlapRatio,
		result.KeyTermsFound,
		matchedJSON,
		result.ProcessingTimeSeconds,
		result.FailureReason,
		result.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create evaluation result: %w", err)
	}
	result.ID = id
	return id, nil
}

// GetEvaluationResultsForJob retrieves all results for a given job ID.
func (s *Store) GetEvaluationResultsForJob(jobID int) ([]*EvaluationResult, error) {
	query := `
		SELECT id, job_id, sample_id, requested_model, model_used, fell_back,
		       skipped_models, transcript, wer, cer, word_overlap_ratio,
		       key_terms_found, key_terms_matched, processing_time_seconds,
		       failure_reason, created_at
		FROM evaluation_results
		WHERE job_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.Query(query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluation results for job ID %d: %w", jobID, err)
	}
	defer rows.Close()

	results := []*EvaluationResult{}
	for rows.Next() {
		res := &EvaluationResult{}
		var skippedJSON, matchedJSON []byte
		if err := rows.Scan(
			&res.ID,
			&res.JobID,
			&res.SampleID,
			&res.RequestedModel,
			&res.ModelUsed,
			&res.FellBack,
			&skippedJSON,
			&res.Transcript,
			&res.WER,
			&res.CER,
			&res.WordOverlapRatio,
			&res.KeyTermsFound,
			&matchedJSON,
			&res.ProcessingTimeSeconds,
			&res.FailureReason,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation result row for job ID %d: %w", jobID, err)
		}
		if skippedJSON != nil && string(skippedJSON) != "null" {
			res.SkippedModels = json.RawMessage(skippedJSON)
		}
		if matchedJSON != nil && string(matchedJSON) != "null" {
			res.KeyTermsMatched = json.RawMessage(matchedJSON)
		}
		results = append(results, res)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for evaluation results (job ID %d): %w", jobID, err)
	}
	return results, nil
}

// Leaderboard aggregates stored results per executed model across every
// completed job. Failed pairs carry NULL metrics and drop out of the
// aggregates. Ordering is average WER ascending, then average processing
// time, then model name.
func (s *Store) Leaderboard() ([]*LeaderboardRow, error) {
	query := `
		SELECT model_used,
		       AVG(wer) AS avg_wer,
		       MIN(wer) AS best_wer,
		       AVG(cer) AS avg_cer,
		       AVG(word_overlap_ratio) AS avg_word_overlap_ratio,
		       AVG(processing_time_seconds) AS avg_processing_time_seconds,
		       COUNT(*) AS sample_count
		FROM evaluation_results
		WHERE model_used IS NOT NULL AND wer IS NOT NULL
		GROUP BY model_used
		ORDER BY avg_wer ASC, avg_processing_time_seconds ASC, model_used ASC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	leaderboard := []*LeaderboardRow{}
	for rows.Next() {
		row := &LeaderboardRow{}
		if err := rows.Scan(
			&row.ModelName,
			&row.AvgWER,
			&row.BestWER,
			&row.AvgCER,
			&row.AvgWordOverlapRatio,
			&row.AvgProcessingTimeSeconds,
			&row.SampleCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		leaderboard = append(leaderboard, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for leaderboard: %w", err)
	}
	return leaderboard, nil
}
