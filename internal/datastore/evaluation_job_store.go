package datastore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CreateEvaluationJob inserts a new evaluation job and returns its ID.
func (s *Store) CreateEvaluationJob(job *EvaluationJob) (int, error) {
	query := `
		INSERT INTO evaluation_jobs (job_name, status, model_names, sample_ids, options, failure_reason, created_at, updated_at, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	job.CreatedAt = time.Now()
	job.UpdatedAt = time.Now()
	if job.Status == "" {
		job.Status = JobStatusPending
	}

	var modelNamesJSON, sampleIDsJSON, optionsJSON []byte
	if job.ModelNames != nil {
		modelNamesJSON = job.ModelNames
	} else {
		modelNamesJSON = json.RawMessage("[]")
	}
	if job.SampleIDs != nil {
		sampleIDsJSON = job.SampleIDs
	} else {
		sampleIDsJSON = json.RawMessage("[]")
	}
	if len(job.Options) > 0 {
		optionsJSON = job.Options
	} else {
		optionsJSON = json.RawMessage("null")
	}

	var id int
	err := s.db.QueryRow(
		query,
		job.JobName,
		job.Status,
		modelNamesJSON,
		sampleIDsJSON,
		optionsJSON,
		job.FailureReason,
		job.CreatedAt,
		job.UpdatedAt,
		job.StartedAt,
		job.CompletedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create evaluation job: %w", err)
	}
	job.ID = id
	return id, nil
}

// GetEvaluationJob retrieves an evaluation job by ID.
func (s *Store) GetEvaluationJob(id int) (*EvaluationJob, error) {
	query := `
		SELECT id, job_name, status, model_names, sample_ids, options, failure_reason, created_at, updated_at, started_at, completed_at
		FROM evaluation_jobs
		WHERE id = $1
	`
	job := &EvaluationJob{}
	var modelNamesJSON, sampleIDsJSON, optionsJSON []byte

	err := s.db.QueryRow(query, id).Scan(
		&job.ID,
		&job.JobName,
		&job.Status,
		&modelNamesJSON,
		&sampleIDsJSON,
		&optionsJSON,
		&job.FailureReason,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.StartedAt,
		&job.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("evaluation job with ID %d not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get evaluation job: %w", err)
	}
	job.ModelNames = json.RawMessage(modelNamesJSON)
	job.SampleIDs = json.RawMessage(sampleIDsJSON)
	if optionsJSON != nil && string(optionsJSON) != "null" {
		job.Options = json.RawMessage(optionsJSON)
	}
	return job, nil
}

// UpdateEvaluationJobStatus updates the status of an evaluation job. An
// optional failure reason is recorded for FAILED jobs.
func (s *Store) UpdateEvaluationJobStatus(id int, status string, failureReason string) error {
	query := `UPDATE evaluation_jobs SET status = $1, failure_reason = $2, updated_at = $3 WHERE id = $4`
	reason := sql.NullString{String: failureReason, Valid: failureReason != ""}
	result, err := s.db.Exec(query, status, reason, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update status for job ID %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected when updating status for job ID %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("job ID %d not found for status update", id)
	}
	return nil
}

// UpdateEvaluationJobTimestamps updates the started_at and completed_at
// timestamps of an evaluation job. Use sql.NullTime to set one or both.
func (s *Store) UpdateEvaluationJobTimestamps(id int, startTime, endTime sql.NullTime) error {
	var setClauses []string
	var args []interface{}
	argID := 1

	if startTime.Valid {
		setClauses = append(setClauses, fmt.Sprintf("started_at = $%d", argID))
		args = append(args, startTime)
		argID++
	}
	if endTime.Valid {
		setClauses = append(setClauses, fmt.Sprintf("completed_at = $%d", argID))
		args = append(args, endTime)
		argID++
	}

	if len(setClauses) == 0 {
		return errors.New("no timestamps provided for update")
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argID))
	args = append(args, time.Now())
	argID++

	args = append(args, id)
	query := fmt.Sprintf("UPDATE evaluation_jobs SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argID)

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update timestamps for job ID %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for job ID %d timestamp update: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("job ID %d not found for timestamp update", id)
	}
	return nil
}

// ListEvaluationJobs lists evaluation jobs, optionally filtered by status.
func (s *Store) ListEvaluationJobs(status string) ([]*EvaluationJob, error) {
	var rows *sql.Rows
	var err error
	baseQuery := "SELECT id, job_name, status, model_names, sample_ids, options, failure_reason, created_at, updated_at, started_at, completed_at FROM evaluation_jobs"

	if status != "" {
		rows, err = s.db.Query(baseQuery+" WHERE status = $1 ORDER BY created_at DESC", status)
	} else {
		rows, err = s.db.Query(baseQuery + " ORDER BY created_at DESC")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluation jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*EvaluationJob{}
	for rows.Next() {
		job := &EvaluationJob{}
		var modelNamesJSON, sampleIDsJSON, optionsJSON []byte

		if err := rows.Scan(
			&job.ID,
			&job.JobName,
			&job.Status,
			&modelNamesJSON,
			&sampleIDsJSON,
			&optionsJSON,
			&job.FailureReason,
			&job.CreatedAt,
			&job.UpdatedAt,
			&job.StartedAt,
			&job.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan evaluation job row: %w", err)
		}
		job.ModelNames = json.RawMessage(modelNamesJSON)
		job.SampleIDs = json.RawMessage(sampleIDsJSON)
		if optionsJSON != nil && string(optionsJSON) != "null" {
			job.Options = json.RawMessage(optionsJSON)
		}
		jobs = append(jobs, job)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for evaluation jobs: %w", err)
	}
	return jobs, nil
}
