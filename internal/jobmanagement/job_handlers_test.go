package jobmanagement

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asr-benchmark-platform/internal/datastore"
)

func TestToJobViewDecodesColumns(t *testing.T) {
	job := &datastore.EvaluationJob{
		ID:         7,
		Status:     datastore.JobStatusCompleted,
		ModelNames: json.RawMessage(`["faster-whisper-base","mock-asr"]`),
		SampleIDs:  json.RawMessage(`[3,5,8]`),
	}

	view := toJobView(job)
	assert.Equal(t, []string{"faster-whisper-base", "mock-asr"}, view.ModelNames)
	assert.Equal(t, []int{3, 5, 8}, view.SampleIDs)
}

func TestJobViewMarshalsDecodedLists(t *testing.T) {
	job := &datastore.EvaluationJob{
		ID:         7,
		Status:     datastore.JobStatusCompleted,
		ModelNames: json.RawMessage(`["mock-asr"]`),
		SampleIDs:  json.RawMessage(`[1]`),
	}

	data, err := json.Marshal(toJobView(job))
	require.NoError(t, err)

	var decoded struct {
		ModelNames []string `json:"model_names"`
		SampleIDs  []int    `json:"sample_ids"`
		Status     string   `json:"status"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"mock-asr"}, decoded.ModelNames)
	assert.Equal(t, []int{1}, decoded.SampleIDs)
	assert.Equal(t, datastore.JobStatusCompleted, decoded.Status)
}

func TestToJobViewToleratesEmptyColumns(t *testing.T) {
	view := toJobView(&datastore.EvaluationJob{ID: 1, Status: datastore.JobStatusPending})
	assert.Empty(t, view.ModelNames)
	assert.Empty(t, view.SampleIDs)
}
