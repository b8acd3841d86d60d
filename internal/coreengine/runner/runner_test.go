package runner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"asr-benchmark-platform/internal/coreengine/modeladapters"
	"asr-benchmark-platform/internal/coreengine/resolver"
)

func resolve(t *testing.T, adapters ...modeladapters.ModelAdapter) *resolver.Resolution {
	t.Helper()
	r, err := resolver.New(adapters)
	if err != nil {
		t.Fatalf("resolver.New: %v", err)
	}
	res, err := r.Resolve(adapters[0].Describe().Name)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return res
}

func TestRunMeasuresProcessingTime(t *testing.T) {
	latency := 30 * time.Millisecond
	res := resolve(t, &modeladapters.MockAdapter{
		Name:             "timed",
		CannedText:       "hello world",
		SimulatedLatency: latency,
	})

	r := &Runner{}
	result, err := r.Run(context.Background(), res, "sample.wav", modeladapters.TranscribeOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Text != "hello world" {
		t.Errorf("Text = %q, want hello world", result.Text)
	}
	if result.ProcessingTime < latency {
		t.Errorf("ProcessingTime = %v, want at least %v", result.ProcessingTime, latency)
	}
	if result.ModelUsed.Name != "timed" {
		t.Errorf("ModelUsed.Name = %q, want timed", result.ModelUsed.Name)
	}
	if result.FellBack {
		t.Error("FellBack = true, want false")
	}
}

func TestRunStampsFallback(t *testing.T) {
	r, err := resolver.New([]modeladapters.ModelAdapter{
		&modeladapters.MockAdapter{Name: "primary", Fallback: "backup", Unavailable: true},
		&modeladapters.MockAdapter{Name: "backup", CannedText: "from backup"},
	})
	if err != nil {
		t.Fatalf("resolver.New: %v", err)
	}
	res, err := r.Resolve("primary")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	result, err := (&Runner{}).Run(context.Background(), res, "sample.wav", modeladapters.TranscribeOptions{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.FellBack {
		t.Error("FellBack = false, want true after fallback resolution")
	}
	if result.ModelUsed.Name != "backup" {
		t.Errorf("ModelUsed.Name = %q, want backup", result.ModelUsed.Name)
	}
}

func TestRunTimeout(t *testing.T) {
	res := resolve(t, &modeladapters.MockAdapter{
		Name:             "slow",
		SimulatedLatency: 500 * time.Millisecond,
	})

	r := &Runner{Timeout: 20 * time.Millisecond}
	_, err := r.Run(context.Background(), res, "sample.wav", modeladapters.TranscribeOptions{})
	if err == nil {
		t.Fatal("Run succeeded, want timeout error")
	}

	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("error = %v, want RunError", err)
	}
	if runErr.Model != "slow" || runErr.AudioPath != "sample.wav" {
		t.Errorf("RunError identifies %q/%q, want slow/sample.wav", runErr.Model, runErr.AudioPath)
	}
	var timeoutErr *modeladapters.InferenceTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %v, want wrapped InferenceTimeoutError", err)
	}
	if timeoutErr.Timeout != 20*time.Millisecond {
		t.Errorf("Timeout = %v, want 20ms", timeoutErr.Timeout)
	}
}

func TestRunCallerCancellation(t *testing.T) {
	res := resolve(t, &modeladapters.MockAdapter{
		Name:             "slow",
		SimulatedLatency: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := (&Runner{}).Run(ctx, res, "sample.wav", modeladapters.TranscribeOptions{})
	if err == nil {
		t.Fatal("Run succeeded, want cancellation error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled (not a timeout)", err)
	}
	var timeoutErr *modeladapters.InferenceTimeoutError
	if errors.As(err, &timeoutErr) {
		t.Error("caller cancellation reported as an inference timeout")
	}
}

func TestRunWrapsAdapterError(t *testing.T) {
	cause := fmt.Errorf("model weights corrupt")
	res := resolve(t, &modeladapters.MockAdapter{Name: "broken", FailWith: cause})

	_, err := (&Runner{}).Run(context.Background(), res, "bad.wav", modeladapters.TranscribeOptions{})
	var runErr *RunError
	if !errors.As(err, &runErr) {
		t.Fatalf("error = %v, want RunError", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("RunError does not wrap the adapter's error: %v", err)
	}
}
