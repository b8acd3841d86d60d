package datastore

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Evaluation job statuses.
const (
	JobStatusPending   = "PENDING"
	JobStatusRunning   = "RUNNING"
	JobStatusCompleted = "COMPLETED"
	JobStatusFailed    = "FAILED"
)

// EvaluationJob maps to the evaluation_jobs table.
type EvaluationJob struct {
	ID            int             `json:"id"`
	JobName       sql.NullString  `json:"job_name,omitempty"`
	Status        string          `json:"status"`
	ModelNames    json.RawMessage `json:"model_names"` // JSONB array of model names
	SampleIDs     json.RawMessage `json:"sample_ids"`  // JSONB array of reference_sample ids
	Options       json.RawMessage `json:"options,omitempty"`
	FailureReason sql.NullString  `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	StartedAt     sql.NullTime    `json:"started_at,omitempty"`
	CompletedAt   sql.NullTime    `json:"completed_at,omitempty"`
}

// ModelNameList decodes the model_names JSONB column.
func (j *EvaluationJob) ModelNameList() ([]string, error) {
	return unmarshalStringSlice(j.ModelNames)
}

// SampleIDList decodes the sample_ids JSONB column.
func (j *EvaluationJob) SampleIDList() ([]int, error) {
	if j.SampleIDs == nil || string(j.SampleIDs) == "null" || string(j.SampleIDs) == "" {
		return []int{}, nil
	}
	var ids []int
	if err := json.Unmarshal(j.SampleIDs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// MarshalIntSliceToJSON encodes ids for a JSONB column.
func MarshalIntSliceToJSON(ids []int) (json.RawMessage, error) {
	if ids == nil {
		return json.RawMessage("[]"), nil
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// MarshalStringSliceToJSON encodes names for a JSONB column.
func MarshalStringSliceToJSON(values []string) json.RawMessage {
	return marshalStringSlice(values)
}
