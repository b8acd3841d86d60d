package evaluationengine

import (
	"context"
	"fmt"
	"testing"

	"asr-benchmark-platform/internal/coreengine/metricscalculator"
	"asr-benchmark-platform/internal/coreengine/modeladapters"
	"asr-benchmark-platform/internal/coreengine/resolver"
	"asr-benchmark-platform/internal/coreengine/runner"
)

func newEngine(t *testing.T, adapters ...modeladapters.ModelAdapter) *Engine {
	t.Helper()
	r, err := resolver.New(adapters)
	if err != nil {
		t.Fatalf("resolver.New: %v", err)
	}
	return &Engine{Resolver: r, Runner: &runner.Runner{}}
}

func sample(name, text string) Sample {
	return Sample{
		Name:      name,
		AudioPath: name + ".wav",
		Reference: metricscalculator.ReferenceTranscript{Text: text},
	}
}

func TestEvaluateRanksModels(t *testing.T) {
	engine := newEngine(t,
		&modeladapters.MockAdapter{Name: "perfect", CannedText: "the quick brown fox"},
		&modeladapters.MockAdapter{Name: "sloppy", CannedText: "the slow brown fox"},
	)

	report, err := engine.Evaluate(context.Background(),
		[]string{"perfect", "sloppy"},
		[]Sample{sample("fox", "the quick brown fox")},
		modeladapters.TranscribeOptions{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if len(report.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(report.Entries))
	}
	if report.Entries[0].Model.Name != "perfect" {
		t.Errorf("rank 1 is %q, want perfect", report.Entries[0].Model.Name)
	}
	if report.Entries[0].Record.WER != 0.0 {
		t.Errorf("perfect WER = %v, want 0.0", report.Entries[0].Record.WER)
	}
	if report.Entries[1].Record.WER != 0.25 {
		t.Errorf("sloppy WER = %v, want 0.25", report.Entries[1].Record.WER)
	}
	if len(report.Results) != 2 {
		t.Errorf("got %d sample results, want 2", len(report.Results))
	}
	if len(report.Failures) != 0 {
		t.Errorf("Failures = %v, want none", report.Failures)
	}
}

func TestEvaluateAggregatesAcrossSamples(t *testing.T) {
	engine := newEngine(t, &modeladapters.MockAdapter{Name: "m", CannedText: "a b"})

	report, err := engine.Evaluate(context.Background(),
		[]string{"m"},
		[]Sample{sample("hit", "a b"), sample("miss", "c d")},
		modeladapters.TranscribeOptions{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if len(report.Entries) != 1 {
		t.Fatalf("got %d entries, want 1 aggregated row", len(report.Entries))
	}
	// Mean of WER 0.0 on the hit and 1.0 on the miss.
	if report.Entries[0].Record.WER != 0.5 {
		t.Errorf("aggregate WER = %v, want 0.5", report.Entries[0].Record.WER)
	}
}

func TestEvaluatePartialFailure(t *testing.T) {
	engine := newEngine(t,
		&modeladapters.MockAdapter{Name: "broken", FailWith: fmt.Errorf("decoder crashed")},
		&modeladapters.MockAdapter{Name: "working", CannedText: "hello"},
	)

	report, err := engine.Evaluate(context.Background(),
		[]string{"broken", "working"},
		[]Sample{sample("greeting", "hello")},
		modeladapters.TranscribeOptions{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if len(report.Failures) != 1 {
		t.Fatalf("Failures = %v, want one entry for the broken model", report.Failures)
	}
	if report.Failures[0].Model != "broken" || report.Failures[0].Sample != "greeting" {
		t.Errorf("Failures[0] = %+v, want broken/greeting", report.Failures[0])
	}
	if len(report.Entries) != 1 || report.Entries[0].Model.Name != "working" {
		t.Errorf("Entries = %+v, want the working model only", report.Entries)
	}
}

func TestEvaluateAbortOnFailure(t *testing.T) {
	engine := newEngine(t,
		&modeladapters.MockAdapter{Name: "broken", FailWith: fmt.Errorf("decoder crashed")},
		&modeladapters.MockAdapter{Name: "working", CannedText: "hello"},
	)
	engine.AbortOnFailure = true

	report, err := engine.Evaluate(context.Background(),
		[]string{"broken", "working"},
		[]Sample{sample("greeting", "hello")},
		modeladapters.TranscribeOptions{})
	if err == nil {
		t.Fatal("Evaluate succeeded, want abort error")
	}
	if report == nil || len(report.Failures) != 1 {
		t.Fatalf("report = %+v, want the failure that triggered the abort", report)
	}
	if len(report.Results) != 0 {
		t.Errorf("Results = %v, want none after aborting on the first failure", report.Results)
	}
}

func TestEvaluateUnresolvableModelRecorded(t *testing.T) {
	engine := newEngine(t,
		&modeladapters.MockAdapter{Name: "offline", Unavailable: true, UnavailableReason: "binary missing"},
		&modeladapters.MockAdapter{Name: "working", CannedText: "hello"},
	)

	report, err := engine.Evaluate(context.Background(),
		[]string{"offline", "working"},
		[]Sample{sample("greeting", "hello")},
		modeladapters.TranscribeOptions{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if len(report.Failures) != 1 {
		t.Fatalf("Failures = %v, want one resolution failure", report.Failures)
	}
	if report.Failures[0].Model != "offline" || report.Failures[0].Sample != "" {
		t.Errorf("Failures[0] = %+v, want offline with no sample", report.Failures[0])
	}
}

func TestEvaluateSurfacesFallback(t *testing.T) {
	engine := newEngine(t,
		&modeladapters.MockAdapter{
			Name: "gpu-model", Fallback: "cpu-model",
			Unavailable: true, UnavailableReason: "CUDA device not detected",
		},
		&modeladapters.MockAdapter{Name: "cpu-model", CannedText: "hello"},
	)

	report, err := engine.Evaluate(context.Background(),
		[]string{"gpu-model"},
		[]Sample{sample("greeting", "hello")},
		modeladapters.TranscribeOptions{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if len(report.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(report.Results))
	}
	result := report.Results[0]
	if !result.FellBack {
		t.Error("FellBack = false, fallback must be visible in results")
	}
	if result.RequestedModel != "gpu-model" || result.ModelUsed.Name != "cpu-model" {
		t.Errorf("result attributes %q/%q, want gpu-model requested, cpu-model used",
			result.RequestedModel, result.ModelUsed.Name)
	}
	if len(result.SkippedModels) != 1 || result.SkippedModels[0].Reason != "CUDA device not detected" {
		t.Errorf("SkippedModels = %v, want the skipped GPU model with its reason", result.SkippedModels)
	}
}

func TestEvaluateRejectsEmptyInputs(t *testing.T) {
	engine := newEngine(t, &modeladapters.MockAdapter{Name: "m"})

	if _, err := engine.Evaluate(context.Background(), nil, []Sample{sample("s", "x")}, modeladapters.TranscribeOptions{}); err == nil {
		t.Error("Evaluate with no models succeeded, want error")
	}
	if _, err := engine.Evaluate(context.Background(), []string{"m"}, nil, modeladapters.TranscribeOptions{}); err == nil {
		t.Error("Evaluate with no samples succeeded, want error")
	}
}
