package jobmanagement

import (
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"asr-benchmark-platform/internal/coreengine/modeladapters"
	"asr-benchmark-platform/internal/datastore"
)

// jobView is the API shape of an evaluation job: the stored row with its
// JSONB columns decoded into list form.
type jobView struct {
	*datastore.EvaluationJob
	ModelNames []string `json:"model_names"`
	SampleIDs  []int    `json:"sample_ids"`
}

func toJobView(job *datastore.EvaluationJob) jobView {
	names, err := job.ModelNameList()
	if err != nil {
		log.Printf("ERROR: failed to decode model names for job %d: %v", job.ID, err)
	}
	ids, err := job.SampleIDList()
	if err != nil {
		log.Printf("ERROR: failed to decode sample ids for job %d: %v", job.ID, err)
	}
	return jobView{EvaluationJob: job, ModelNames: names, SampleIDs: ids}
}

// CreateJobRequest defines the expected payload for creating an
// evaluation job.
type CreateJobRequest struct {
	JobName    string                           `json:"job_name"` // Optional
	ModelNames []string                         `json:"model_names" binding:"required,min=1"`
	SampleIDs  []int                            `json:"sample_ids" binding:"required,min=1"`
	Options    *modeladapters.TranscribeOptions `json:"options"` // Optional
}

// CreateJobHandler creates and synchronously runs an evaluation job.
func (s *JobService) CreateJobHandler(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	var opts modeladapters.TranscribeOptions
	if req.Options != nil {
		opts = *req.Options
	}
	jobName := sql.NullString{String: req.JobName, Valid: req.JobName != ""}

	job, err := s.CreateAndRunJob(c.Request.Context(), jobName, req.ModelNames, req.SampleIDs, opts)
	if err != nil {
		if job != nil && job.Status == datastore.JobStatusFailed {
			c.JSON(http.StatusAccepted, gin.H{
				"message": "Job initiated but failed during execution.",
				"job":     toJobView(job),
				"detail":  err.Error(),
			})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create or run evaluation job: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, toJobView(job))
}

// GetJobHandler retrieves one evaluation job by ID.
func (s *JobService) GetJobHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID format"})
		return
	}

	job, err := s.Store.GetEvaluationJob(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve job: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, toJobView(job))
}

// ListJobsHandler lists evaluation jobs, optionally filtered by status.
func (s *JobService) ListJobsHandler(c *gin.Context) {
	jobs, err := s.Store.ListEvaluationJobs(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list jobs: " + err.Error()})
		return
	}
	views := make([]jobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, toJobView(job))
	}
	c.JSON(http.StatusOK, views)
}

// GetJobResultsHandler retrieves every stored result row for a job.
func (s *JobService) GetJobResultsHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job ID format"})
		return
	}

	if _, err := s.Store.GetEvaluationJob(id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify job: " + err.Error()})
		}
		return
	}

	results, err := s.Store.GetEvaluationResultsForJob(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve results: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, results)
}

// LeaderboardHandler returns the aggregated per-model leaderboard over all
// stored results.
func (s *JobService) LeaderboardHandler(c *gin.Context) {
	rows, err := s.Store.Leaderboard()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute leaderboard: " + err.Error()})
		return
	}
	if rows == nil {
		rows = []*datastore.LeaderboardRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// ListModelsHandler returns every registered model descriptor with its
// current availability and fallback chain.
func (s *JobService) ListModelsHandler(c *gin.Context) {
	type modelStatus struct {
		modeladapters.ModelDescriptor
		Available         bool     `json:"available"`
		UnavailableReason string   `json:"unavailable_reason,omitempty"`
		Chain             []string `json:"chain"`
	}

	descs := s.Engine.Resolver.Descriptors()
	statuses := make([]modelStatus, 0, len(descs))
	for _, desc := range descs {
		adapter, ok := s.Engine.Resolver.Adapter(desc.Name)
		if !ok {
			continue
		}
		available, reason := adapter.IsAvailable()
		statuses = append(statuses, modelStatus{
			ModelDescriptor:   desc,
			Available:         available,
			UnavailableReason: reason,
			Chain:             s.Engine.Resolver.Chain(desc.Name),
		})
	}
	c.JSON(http.StatusOK, statuses)
}
