package modeladapters

import (
	"context"
	"time"
)

// Device selection values accepted by TranscribeOptions.
const (
	DeviceCPU  = "cpu"
	DeviceCUDA = "cuda"
	DeviceAuto = "auto"
)

// Defaults for TranscribeOptions fields left at their zero value.
const (
	DefaultBeamSize        = 5
	DefaultMaxLengthTokens = 512
	DefaultDevice          = DeviceAuto
)

// TranscribeOptions carries the recognized per-request settings for a
// transcription. Adapters map each field onto their backend where the
// backend supports it and ignore it otherwise.
type TranscribeOptions struct {
	BeamSize        int    `json:"beam_size"`
	MaxLengthTokens int    `json:"max_length_tokens"`
	// Language is a BCP-47 style code such as "en". Empty means
	// auto-detect.
	Language string `json:"language,omitempty"`
	// Device is one of "cpu", "cuda" or "auto".
	Device string `json:"device"`
}

// Normalized returns a copy with defaults applied to zero-valued fields.
func (o TranscribeOptions) Normalized() TranscribeOptions {
	if o.BeamSize <= 0 {
		o.BeamSize = DefaultBeamSize
	}
	if o.MaxLengthTokens <= 0 {
		o.MaxLengthTokens = DefaultMaxLengthTokens
	}
	if o.Device == "" {
		o.Device = DefaultDevice
	}
	return o
}

// Segment is one timestamped span of a transcript. Only adapters whose
// descriptor lists CapabilityTimestamps populate segments.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptionResult is the output of running one model against one audio
// input. It is immutable once the runner has finished populating it.
type TranscriptionResult struct {
	Text string `json:"text"`
	// ProcessingTime is the wall-clock time of the transcription as
	// measured by the runner.
	ProcessingTime time.Duration `json:"processing_time"`
	// ConfidenceScores holds per-segment confidence values when the
	// backend reports them, nil otherwise.
	ConfidenceScores []float64 `json:"confidence_scores,omitempty"`
	Segments         []Segment `json:"segments,omitempty"`
	// ModelUsed is the model that actually executed, which differs from
	// the requested model when fallback occurred.
	ModelUsed ModelDescriptor `json:"model_used"`
	FellBack  bool            `json:"fell_back"`
}

// ModelAdapter is the uniform interface around one concrete ASR backend.
type ModelAdapter interface {
	// IsAvailable reports whether the backend's runtime dependencies and
	// hardware are present, with a human-readable reason when they are
	// not. It never fails and must limit itself to lightweight probing
	// (binary lookup, environment checks, device detection).
	IsAvailable() (bool, string)

	// Transcribe runs the backend against a readable local audio file.
	// It returns a ModelUnavailableError if dependencies turn out to be
	// missing, an AudioFormatError if the input cannot be decoded, and
	// respects ctx for cancellation and deadlines.
	Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) (*TranscriptionResult, error)

	// Describe returns the backend's static metadata.
	Describe() ModelDescriptor
}
