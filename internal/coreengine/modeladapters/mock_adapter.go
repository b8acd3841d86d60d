package modeladapters

import (
	"context"
	"fmt"
	"time"
)

// MockAdapter is a deterministic, dependency-free ASR backend. It serves as
// the guaranteed-available terminal of fallback chains and as a test double.
type MockAdapter struct {
	Name string
	// CannedText is the transcript returned for every input. When empty a
	// generic transcript naming the audio file is produced.
	CannedText string
	// SimulatedLatency is slept before returning, to exercise timing and
	// timeout paths.
	SimulatedLatency time.Duration
	// FailWith, when set, is returned verbatim from Transcribe.
	FailWith error
	// Unavailable forces IsAvailable to report false with UnavailableReason.
	Unavailable       bool
	UnavailableReason string
	// Fallback names the next model in the configured chain, if any.
	Fallback string
}

// IsAvailable reports availability. The mock backend has no dependencies,
// so it is available unless explicitly configured otherwise.
func (m *MockAdapter) IsAvailable() (bool, string) {
	if m.Unavailable {
		reason := m.UnavailableReason
		if reason == "" {
			reason = "mock adapter configured as unavailable"
		}
		return false, reason
	}
	return true, ""
}

// Transcribe returns the canned transcript after the configured simulated
// latency.
func (m *MockAdapter) Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) (*TranscriptionResult, error) {
	if m.Unavailable {
		reason := m.UnavailableReason
		if reason == "" {
			reason = "mock adapter configured as unavailable"
		}
		return nil, &ModelUnavailableError{Model: m.name(), Reason: reason}
	}
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	if m.SimulatedLatency > 0 {
		select {
		case <-time.After(m.SimulatedLatency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	text := m.CannedText
	if text == "" {
		text = fmt.Sprintf("mock transcription of %s", audioPath)
	}
	return &TranscriptionResult{Text: text}, nil
}

// Describe returns the mock backend's metadata.
func (m *MockAdapter) Describe() ModelDescriptor {
	return ModelDescriptor{
		Name:        m.name(),
		BackendKind: BackendLocalCTranslate,
		Resources:   ResourceRequirements{CPUOnly: true},
		Fallback:    m.Fallback,
	}
}

func (m *MockAdapter) name() string {
	if m.Name == "" {
		return "mock-asr"
	}
	return m.Name
}
