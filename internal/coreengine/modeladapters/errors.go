package modeladapters

import (
	"fmt"
	"time"
)

// ModelUnavailableError reports that a backend's dependencies or hardware
// are absent. It is recoverable through the fallback chain and never fatal
// to a whole evaluation run.
type ModelUnavailableError struct {
	Model  string
	Reason string
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model %q is unavailable: %s", e.Model, e.Reason)
}

// AudioFormatError reports that an audio input could not be decoded by the
// backend. It is not retried.
type AudioFormatError struct {
	Path  string
	Cause error
}

func (e *AudioFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("audio file %q cannot be decoded: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("audio file %q cannot be decoded", e.Path)
}

func (e *AudioFormatError) Unwrap() error { return e.Cause }

// InferenceTimeoutError reports that a transcription exceeded its
// configured per-invocation timeout. The in-flight inference is abandoned;
// no partial transcript is considered valid.
type InferenceTimeoutError struct {
	Model   string
	Timeout time.Duration
}

func (e *InferenceTimeoutError) Error() string {
	return fmt.Sprintf("model %q exceeded the inference timeout of %s", e.Model, e.Timeout)
}
