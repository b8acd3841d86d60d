// Package evaluationengine drives benchmark runs: for every requested
// model and reference sample it resolves an adapter, runs the
// transcription, and scores the hypothesis. Execution is sequential so
// that per-sample processing times are not skewed by accelerator
// contention.
package evaluationengine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"asr-benchmark-platform/internal/coreengine/leaderboard"
	"asr-benchmark-platform/internal/coreengine/metricscalculator"
	"asr-benchmark-platform/internal/coreengine/modeladapters"
	"asr-benchmark-platform/internal/coreengine/resolver"
	"asr-benchmark-platform/internal/coreengine/runner"
)

// Sample is one evaluation input: an audio file plus its reference
// transcript.
type Sample struct {
	// Name identifies the sample in results and failure summaries.
	Name      string
	AudioPath string
	Reference metricscalculator.ReferenceTranscript
}

// SampleResult is the detailed outcome of one successful (model, sample)
// evaluation.
type SampleResult struct {
	// RequestedModel is the model name the caller asked for.
	RequestedModel string `json:"requested_model"`
	// ModelUsed is the model that actually executed.
	ModelUsed modeladapters.ModelDescriptor `json:"model_used"`
	FellBack  bool                          `json:"fell_back"`
	// SkippedModels lists the models passed over before ModelUsed, with
	// reasons, when fallback occurred.
	SkippedModels []resolver.Skip                `json:"skipped_models,omitempty"`
	Sample        string                         `json:"sample"`
	Transcript    string                         `json:"transcript"`
	Record        metricscalculator.MetricRecord `json:"record"`
}

// Failure records one (model, sample) pair that could not be evaluated.
// An empty Sample means the model failed to resolve for the whole run.
type Failure struct {
	Model  string `json:"model"`
	Sample string `json:"sample,omitempty"`
	Reason string `json:"reason"`
}

// Report is the complete outcome of one evaluation run. Ranked entries
// cover only models with at least one scored sample; everything else is in
// Failures. A report is regenerated fresh on each run.
type Report struct {
	Entries  []leaderboard.Entry `json:"entries"`
	Results  []SampleResult      `json:"results"`
	Failures []Failure           `json:"failures,omitempty"`
}

// Engine evaluates models against reference samples.
type Engine struct {
	Resolver *resolver.Resolver
	Runner   *runner.Runner
	// AbortOnFailure stops the whole run at the first (model, sample)
	// failure instead of recording it and continuing. The default keeps
	// partial results: one broken adapter must not invalidate the other
	// models' scores.
	AbortOnFailure bool
}

// Evaluate runs every requested model against every sample and returns
// the ranked report. Per-model records are aggregated across samples by
// arithmetic mean before ranking. The only returned error in
// partial-failure mode is a caller context cancellation; individual
// failures land in the report.
func (e *Engine) Evaluate(ctx context.Context, modelNames []string, samples []Sample, opts modeladapters.TranscribeOptions) (*Report, error) {
	if len(modelNames) == 0 {
		return nil, fmt.Errorf("evaluation: no models requested")
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("evaluation: no samples provided")
	}

	report := &Report{}
	var records []leaderboard.ModelRecord

	for _, modelName := range modelNames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := e.Resolver.Resolve(modelName)
		if err != nil {
			var noModel *resolver.NoAvailableModelError
			if errors.As(err, &noModel) {
				log.Printf("evaluation: model %q has no available backend: %v", modelName, err)
				report.Failures = append(report.Failures, Failure{Model: modelName, Reason: err.Error()})
				if e.AbortOnFailure {
					return report, fmt.Errorf("evaluation aborted: %w", err)
				}
				continue
			}
			return nil, err
		}
		if res.FellBack {
			log.Printf("evaluation: model %q fell back to %q", modelName, res.Resolved.Name)
		}

		for _, sample := range samples {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			result, err := e.Runner.Run(ctx, res, sample.AudioPath, opts)
			if err != nil {
				log.Printf("evaluation: model %q failed on sample %q: %v", modelName, sample.Name, err)
				report.Failures = append(report.Failures, Failure{Model: modelName, Sample: sample.Name, Reason: err.Error()})
				if e.AbortOnFailure {
					return report, fmt.Errorf("evaluation aborted: %w", err)
				}
				continue
			}

			record := metricscalculator.ComputeRecord(result, sample.Reference)
			report.Results = append(report.Results, SampleResult{
				RequestedModel: modelName,
				ModelUsed:      result.ModelUsed,
				FellBack:       result.FellBack,
				SkippedModels:  res.Skipped,
				Sample:         sample.Name,
				Transcript:     result.Text,
				Record:         record,
			})
			records = append(records, leaderboard.ModelRecord{Model: result.ModelUsed, Record: record})
		}
	}

	report.Entries = leaderboard.Rank(leaderboard.AggregateByModel(records))
	return report, nil
}
