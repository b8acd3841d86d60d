// Package runner executes one resolved transcription with wall-clock
// timing and a hard per-invocation timeout.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"asr-benchmark-platform/internal/coreengine/modeladapters"
	"asr-benchmark-platform/internal/coreengine/resolver"
)

// DefaultTimeout bounds a single transcription invocation.
const DefaultTimeout = 5 * time.Minute

// RunError identifies a failed transcription by model and audio input.
// Inference failures are typically deterministic for a given input and
// model, so the runner never retries; the caller decides whether to skip
// the pair or abort the run.
type RunError struct {
	Model     string
	AudioPath string
	Err       error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("transcription with model %q failed for %q: %v", e.Model, e.AudioPath, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Runner invokes resolved adapters and owns the timing of their results.
type Runner struct {
	// Timeout bounds each Run invocation; zero applies DefaultTimeout.
	Timeout time.Duration
}

type transcribeOutcome struct {
	result *modeladapters.TranscriptionResult
	err    error
}

// Run transcribes one audio file with the resolved adapter. The returned
// result carries the measured wall-clock processing time, the model that
// actually executed, and the fallback flag from the resolution. On timeout
// the in-flight inference is abandoned and an InferenceTimeoutError is
// reported; no partial transcript is returned.
func (r *Runner) Run(ctx context.Context, res *resolver.Resolution, audioPath string, opts modeladapters.TranscribeOptions) (*modeladapters.TranscriptionResult, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	modelName := res.Resolved.Name
	start := time.Now()

	// The adapter runs in its own goroutine so a stuck backend cannot
	// block past the deadline. The channel is buffered; an abandoned
	// invocation completes into it without a receiver.
	outcome := make(chan transcribeOutcome, 1)
	go func() {
		result, err := res.Adapter.Transcribe(runCtx, audioPath, opts)
		outcome <- transcribeOutcome{result: result, err: err}
	}()

	select {
	case out := <-outcome:
		elapsed := time.Since(start)
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return nil, &RunError{Model: modelName, AudioPath: audioPath, Err: &modeladapters.InferenceTimeoutError{Model: modelName, Timeout: timeout}}
			}
			return nil, &RunError{Model: modelName, AudioPath: audioPath, Err: out.err}
		}
		result := out.result
		result.ProcessingTime = elapsed
		result.ModelUsed = res.Resolved
		result.FellBack = res.FellBack
		return result, nil
	case <-runCtx.Done():
		if ctx.Err() != nil {
			// The caller's context ended; report that rather than a
			// timeout.
			return nil, &RunError{Model: modelName, AudioPath: audioPath, Err: ctx.Err()}
		}
		return nil, &RunError{Model: modelName, AudioPath: audioPath, Err: &modeladapters.InferenceTimeoutError{Model: modelName, Timeout: timeout}}
	}
}
