package modeladapters

import (
	"context"
	"strconv"
)

// Default helper command for transformers-based Whisper inference.
const HFWhisperCommand = "hf-whisper-transcribe"

// HFWhisperAdapter runs Hugging Face transformers Whisper checkpoints
// through a helper CLI that prints a JSON transcript on stdout.
type HFWhisperAdapter struct {
	// ModelID is the Hugging Face model identifier, e.g.
	// "openai/whisper-base".
	ModelID string
	// DisplayName is the short name used in leaderboards; defaults to
	// "hf-whisper-base".
	DisplayName string
	// Command overrides the helper CLI binary name.
	Command string
	// Resources describes the hardware this checkpoint needs.
	Resources ResourceRequirements
	// Fallback names the next model in the configured chain, if any.
	Fallback string

	inferenceRunner func(ctx context.Context, name string, args []string) (*inferenceOutput, error)
}

// WithInferenceRunner sets a custom inference runner (for testing).
func (a *HFWhisperAdapter) WithInferenceRunner(runner func(ctx context.Context, name string, args []string) (*inferenceOutput, error)) {
	a.inferenceRunner = runner
}

// IsAvailable checks for the helper CLI and required hardware.
func (a *HFWhisperAdapter) IsAvailable() (bool, string) {
	if ok, reason := probeBinary(a.command()); !ok {
		return false, reason
	}
	if !a.Resources.CPUOnly && a.Resources.MinVRAMGB > 0 {
		if ok, reason := probeCUDA(); !ok {
			return false, reason
		}
	}
	return true, ""
}

// Transcribe runs the helper CLI against the audio file.
func (a *HFWhisperAdapter) Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) (*TranscriptionResult, error) {
	if ok, reason := a.IsAvailable(); !ok {
		return nil, &ModelUnavailableError{Model: a.name(), Reason: reason}
	}
	if err := checkAudioPath(audioPath); err != nil {
		return nil, err
	}

	opts = opts.Normalized()
	device := resolveDevice(opts.Device)
	if device == DeviceCUDA {
		if ok, reason := probeCUDA(); !ok {
			return nil, &ModelUnavailableError{Model: a.name(), Reason: reason}
		}
	}

	args := []string{
		"--model", a.modelID(),
		"--device", device,
		"--beam-size", strconv.Itoa(opts.BeamSize),
		"--max-new-tokens", strconv.Itoa(opts.MaxLengthTokens),
	}
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}
	args = append(args, audioPath)

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
func (a *HFWhisperAdapter) Describe() ModelDescriptor {
	return ModelDescriptor{
		Name:         a.name(),
		BackendKind:  BackendLocalTransformers,
		Capabilities: []Capability{CapabilityConfidence},
		Resources:    a.Resources,
		Fallback:     a.Fallback,
	}
}

func (a *HFWhisperAdapter) name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return "hf-whisper-base"
}

func (a *HFWhisperAdapter) modelID() string {
	if a.ModelID == "" {
		return "openai/whisper-base"
	}
	return a.ModelID
}

func (a *HFWhisperAdapter) runInference(ctx context.Context, name string, args []string) (*inferenceOutput, error) {
	if a.inferenceRunner != nil {
		return a.inferenceRunner(ctx, name, args)
	}
	return runInferenceCLI(ctx, name, args)
}

func (a *HFWhisperAdapter) command() string {
	if a.Command == "" {
		return HFWhisperCommand
	}
	return a.Command
}
