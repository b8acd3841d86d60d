package modeladapters

import (
	"context"
	"strconv"
)

// Default helper command for NeMo inference.
const CanaryCommand = "nemo-transcribe"

// CanaryAdapter runs NVIDIA Canary models through a NeMo helper CLI. These
// are the heaviest backends in the registry and usually sit at the head of
// a fallback chain.
type CanaryAdapter struct {
	// ModelID is the pretrained model identifier, e.g.
	// "nvidia/canary-qwen-2.5b".
	ModelID string
	// DisplayName is the short name used in leaderboards; defaults to
	// "canary-qwen-2.5b".
	DisplayName string
	// Command overrides the helper CLI binary name.
	Command string
	// Resources describes the hardware the model needs. Canary models do
	// not run usefully on CPU.
	Resources ResourceRequirements
	// Fallback names the next model in the configured chain, if any.
	Fallback string

	inferenceRunner func(ctx context.Context, name string, args []string) (*inferenceOutput, error)
}

// WithInferenceRunner sets a custom inference runner (for testing).
func (a *CanaryAdapter) WithInferenceRunner(runner func(ctx context.Context, name string, args []string) (*inferenceOutput, error)) {
	a.inferenceRunner = runner
}

// IsAvailable checks for the NeMo helper CLI and a CUDA device.
func (a *CanaryAdapter) IsAvailable() (bool, string) {
	if ok, reason := probeBinary(a.command()); !ok {
		return false, reason
	}
	if ok, reason := probeCUDA(); !ok {
		return false, reason
	}
	return true, ""
}

// Transcribe runs the NeMo helper CLI against the audio file.
func (a *CanaryAdapter) Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) (*TranscriptionResult, error) {
	if ok, reason := a.IsAvailable(); !ok {
		return nil, &ModelUnavailableError{Model: a.name(), Reason: reason}
	}
	if err := checkAudioPath(audioPath); err != nil {
		return nil, err
	}

	opts = opts.Normalized()

	args := []string{
		"--model", a.modelID(),
		"--beam-size", strconv.Itoa(opts.BeamSize),
		"--max-new-tokens", strconv.Itoa(opts.MaxLengthTokens),
		audioPath,
	}

	out, err := a.runInference(ctx, a.command(), args)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return out.toResult(), nil
}

// Describe returns the backend's static metadata.
func (a *CanaryAdapter) Describe() ModelDescriptor {
	resources := a.Resources
	if resources.MinVRAMGB == 0 {
		resources.MinVRAMGB = 10
	}
	return ModelDescriptor{
		Name:         a.name(),
		BackendKind:  BackendLocalNeMo,
		Capabilities: []Capability{CapabilityConfidence},
		Resources:    resources,
		Fallback:     a.Fallback,
	}
}

func (a *CanaryAdapter) name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return "canary-qwen-2.5b"
}

func (a *CanaryAdapter) modelID() string {
	if a.ModelID == "" {
		return "nvidia/canary-qwen-2.5b"
	}
	return a.ModelID
}

func (a *CanaryAdapter) runInference(ctx context.Context, name string, args []string) (*inferenceOutput, error) {
	if a.inferenceRunner != nil {
		return a.inferenceRunner(ctx, name, args)
	}
	return runInferenceCLI(ctx, name, args)
}

func (a *CanaryAdapter) command() string {
	if a.Command == "" {
		return CanaryCommand
	}
	return a.Command
}
