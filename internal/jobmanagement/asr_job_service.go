// Package jobmanagement creates evaluation jobs, runs them through the
// evaluation engine and persists their results.
package jobmanagement

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"asr-benchmark-platform/internal/coreengine/evaluationengine"
	"asr-benchmark-platform/internal/coreengine/metricscalculator"
	"asr-benchmark-platform/internal/coreengine/modeladapters"
	"asr-benchmark-platform/internal/datastore"
	"asr-benchmark-platform/internal/objectstore"
)

// JobService wires the evaluation engine to the stores.
type JobService struct {
	Store   *datastore.Store
	Objects *objectstore.Client
	Engine  *evaluationengine.Engine
}

// NewJobService creates a JobService.
func NewJobService(store *datastore.Store, objects *objectstore.Client, engine *evaluationengine.Engine) *JobService {
	return &JobService{Store: store, Objects: objects, Engine: engine}
}

// CreateAndRunJob creates an evaluation job, runs it synchronously and
// persists every (model, sample) outcome. The returned job reflects the
// final status.
func (s *JobService) CreateAndRunJob(ctx context.Context, jobName sql.NullString, modelNames []string, sampleIDs []int, opts modeladapters.TranscribeOptions) (*datastore.EvaluationJob, error) {
	log.Printf("creating evaluation job %q: models %v, samples %v", jobName.String, modelNames, sampleIDs)

	sampleIDsJSON, err := datastore.MarshalIntSliceToJSON(sampleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sample_ids: %w", err)
	}
	optionsJSON, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal options: %w", err)
	}

	job := &datastore.EvaluationJob{
		JobName:    jobName,
		Status:     datastore.JobStatusPending,
		ModelNames: datastore.MarshalStringSliceToJSON(modelNames),
		SampleIDs:  sampleIDsJSON,
		Options:    optionsJSON,
	}
	jobID, err := s.Store.CreateEvaluationJob(job)
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluation job: %w", err)
	}

	samples, sampleIDByName, cleanup, err := s.fetchSamples(ctx, sampleIDs)
	if err != nil {
		s.markFailed(jobID, err.Error())
		return s.finalJob(jobID, job), err
	}
	defer cleanup()

	if err := s.Store.UpdateEvaluationJobStatus(jobID, datastore.JobStatusRunning, ""); err != nil {
		log.Printf("failed to mark job %d RUNNING: %v", jobID, err)
	}
	startTime := time.Now()
	if err := s.Store.UpdateEvaluationJobTimestamps(jobID, sql.NullTime{Time: startTime, Valid: true}, sql.NullTime{}); err != nil {
		log.Printf("failed to set started_at for job %d: %v", jobID, err)
	}

	report, evalErr := s.Engine.Evaluate(ctx, modelNames, samples, opts)
	completedTime := time.Now()

	if report != nil {
		s.persistReport(jobID, report, sampleIDByName, sampleIDs)
	}

	if evalErr != nil {
		log.Printf("evaluation job %d failed: %v", jobID, evalErr)
		s.markFailed(jobID, evalErr.Error())
	} else {
		if err := s.Store.UpdateEvaluationJobStatus(jobID, datastore.JobStatusCompleted, ""); err != nil {
			log.Printf("failed to mark job %d COMPLETED: %v", jobID, err)
		}
	}
	if err := s.Store.UpdateEvaluationJobTimestamps(jobID, sql.NullTime{}, sql.NullTime{Time: completedTime, Valid: true}); err != nil {
		log.Printf("failed to set completed_at for job %d: %v", jobID, err)
	}

	return s.finalJob(jobID, job), evalErr
}

// fetchSamples loads the reference samples and downloads their audio to
// temp files. The returned cleanup removes the files.
func (s *JobService) fetchSamples(ctx context.Context, sampleIDs []int) ([]evaluationengine.Sample, map[string]int, func(), error) {
	var tempPaths []string
	cleanup := func() {
		for _, path := range tempPaths {
			if err := os.Remove(path); err != nil {
				log.Printf("failed to remove temp audio file %s: %v", path, err)
			}
		}
	}

	samples := make([]evaluationengine.Sample, 0, len(sampleIDs))
	sampleIDByName := make(map[string]int, len(sampleIDs))
	for _, id := range sampleIDs {
		stored, err := s.Store.GetReferenceSample(id)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("failed to load reference sample %d: %w", id, err)
		}
		keyTerms, err := stored.KeyTermList()
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("reference sample %d has invalid key_terms: %w", id, err)
		}

		audioPath, err := s.Objects.FetchToTemp(ctx, stored.AudioObjectKey)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("failed to fetch audio for reference sample %d: %w", id, err)
		}
		tempPaths = append(tempPaths, audioPath)

		// Engine sample names carry the ID so results map back to rows
		// even when display names collide.
		engineName := fmt.Sprintf("%d-%s", stored.ID, stored.Name)
		sampleIDByName[engineName] = stored.ID
		samples = append(samples, evaluationengine.Sample{
			Name:      engineName,
			AudioPath: audioPath,
			Reference: metricscalculator.ReferenceTranscript{
				Text:     stored.Transcript,
				KeyTerms: keyTerms,
			},
		})
	}
	return samples, sampleIDByName, cleanup, nil
}

// persistReport stores one evaluation_results row per report entry.
// Model-level resolution failures fan out to one row per sample.
func (s *JobService) persistReport(jobID int, report *evaluationengine.Report, sampleIDByName map[string]int, sampleIDs []int) {
	for _, res := range report.Results {
		sampleID, ok := sampleIDByName[res.Sample]
		if !ok {
			log.Printf("job %d: result references unknown sample %q", jobID, res.Sample)
			continue
		}

		row := &datastore.EvaluationResult{
			JobID:                 jobID,
			SampleID:              sampleID,
			RequestedModel:        res.RequestedModel,
			ModelUsed:             sql.NullString{String: res.ModelUsed.Name, Valid: true},
			FellBack:              res.FellBack,
			Transcript:            sql.NullString{String: res.Transcript, Valid: true},
			WER:                   sql.NullFloat64{Float64: res.Record.WER, Valid: true},
			CER:                   sql.NullFloat64{Float64: res.Record.CER, Valid: true},
			WordOverlapRatio:      sql.NullFloat64{Float64: res.Record.WordOverlapRatio, Valid: true},
			KeyTermsFound:         sql.NullInt64{Int64: int64(res.Record.KeyTermsFound), Valid: true},
			ProcessingTimeSeconds: sql.NullFloat64{Float64: res.Record.ProcessingTimeSeconds, Valid: true},
		}
		if len(res.SkippedModels) > 0 {
			if skipped, err := json.Marshal(res.SkippedModels); err == nil {
				row.SkippedModels = skipped
			}
		}
		if len(res.Record.KeyTermsMatched) > 0 {
			if matched, err := json.Marshal(res.Record.KeyTermsMatched); err == nil {
				row.KeyTermsMatched = matched
			}
		}
		if _, err := s.Store.CreateEvaluationResult(row); err != nil {
			log.Printf("failed to persist result for job %d, sample %d: %v", jobID, sampleID, err)
		}
	}

	for _, failure := range report.Failures {
		targetIDs := sampleIDs
		if failure.Sample != "" {
			if sampleID, ok := sampleIDByName[failure.Sample]; ok {
				targetIDs = []int{sampleID}
			} else {
				log.Printf("job %d: failure references unknown sample %q", jobID, failure.Sample)
				continue
			}
		}
		for _, sampleID := range targetIDs {
			row := &datastore.EvaluationResult{
				JobID:          jobID,
				SampleID:       sampleID,
				RequestedModel: failure.Model,
				FailureReason:  sql.NullString{String: failure.Reason, Valid: true},
			}
			if _, err := s.Store.CreateEvaluationResult(row); err != nil {
				log.Printf("failed to persist failure for job %d, sample %d: %v", jobID, sampleID, err)
			}
		}
	}
}

func (s *JobService) markFailed(jobID int, reason string) {
	if err := s.Store.UpdateEvaluationJobStatus(jobID, datastore.JobStatusFailed, reason); err != nil {
		log.Printf("failed to mark job %d FAILED: %v", jobID, err)
	}
	if err := s.Store.UpdateEvaluationJobTimestamps(jobID, sql.NullTime{}, sql.NullTime{Time: time.Now(), Valid: true}); err != nil {
		log.Printf("failed to set completed_at for failed job %d: %v", jobID, err)
	}
}

func (s *JobService) finalJob(jobID int, fallback *datastore.EvaluationJob) *datastore.EvaluationJob {
	final, err := s.Store.GetEvaluationJob(jobID)
	if err != nil {
		log.Printf("failed to fetch final state of job %d: %v", jobID, err)
		return fallback
	}
	return final
}
