package modeladapters

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Default command for the CTranslate2 Whisper CLI.
const FasterWhisperCommand = "whisper-ctranslate2"

// FasterWhisperAdapter runs Whisper models through the whisper-ctranslate2
// CLI. It is the workhorse local backend: small sizes run on CPU, larger
// sizes want a CUDA device.
type FasterWhisperAdapter struct {
	// ModelSize selects the Whisper checkpoint (tiny, base, small, medium,
	// large-v3).
	ModelSize string
	// DisplayName is the short name used in leaderboards; defaults to
	// "faster-whisper-" plus the model size.
	DisplayName string
	// Command overrides the CLI binary name.
	Command string
	// Resources describes the hardware this model size needs.
	Resources ResourceRequirements
	// Fallback names the next model in the configured chain, if any.
	Fallback string

	commandRunner func(ctx context.Context, name string, args ...string) error
}

// WithCommandRunner sets a custom command runner (for testing).
func (a *FasterWhisperAdapter) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	a.commandRunner = runner
}

// IsAvailable checks that the CLI binary is on PATH and, for sizes that
// need an accelerator, that a CUDA device is present.
func (a *FasterWhisperAdapter) IsAvailable() (bool, string) {
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

// Transcribe invokes the CLI with JSON output into a scratch directory and
// parses the produced transcript document.
func (a *FasterWhisperAdapter) Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) (*TranscriptionResult, error) {
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

	outDir, err := os.MkdirTemp("", "fasterwhisper-*")
	if err != nil {
		return nil, fmt.Errorf("faster-whisper: create scratch dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := a.buildArgs(audioPath, outDir, device, opts)
	if err := a.run(ctx, a.command(), args...); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("faster-whisper %s: %w", a.ModelSize, err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	doc, err := readWhisperJSON(filepath.Join(outDir, baseName+".json"))
	if err != nil {
		return nil, fmt.Errorf("faster-whisper %s: %w", a.ModelSize, err)
	}
	return doc.toResult(), nil
}

// Describe returns the backend's static metadata.
func (a *FasterWhisperAdapter) Describe() ModelDescriptor {
	return ModelDescriptor{
		Name:         a.name(),
		BackendKind:  BackendLocalCTranslate,
		Capabilities: []Capability{CapabilityConfidence, CapabilityTimestamps},
		Resources:    a.Resources,
		Fallback:     a.Fallback,
	}
}

func (a *FasterWhisperAdapter) name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return "faster-whisper-" + a.modelSize()
}

func (a *FasterWhisperAdapter) modelSize() string {
	if a.ModelSize == "" {
		return "base"
	}
	return a.ModelSize
}

func (a *FasterWhisperAdapter) command() string {
	if a.Command == "" {
		return FasterWhisperCommand
	}
	return a.Command
}

func (a *FasterWhisperAdapter) buildArgs(audioPath, outDir, device string, opts TranscribeOptions) []string {
	args := []string{
		audioPath,
		"--model", a.modelSize(),
		"--device", device,
		"--beam_size", strconv.Itoa(opts.BeamSize),
		"--output_format", "json",
		"--output_dir", outDir,
	}
	if device == DeviceCPU {
		args = append(args, "--compute_type", "int8")
	}
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}
	return args
}

func (a *FasterWhisperAdapter) run(ctx context.Context, name string, args ...string) error {
	if a.commandRunner != nil {
		return a.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// whisperJSON mirrors the transcript document the Whisper CLI family writes
// with --output_format json.
type whisperJSON struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start      float64 `json:"start"`
		End        float64 `json:"end"`
		Text       string  `json:"text"`
		AvgLogprob float64 `json:"avg_logprob"`
	} `json:"segments"`
}

func readWhisperJSON(path string) (*whisperJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript %s: %w", path, err)
	}
	var doc whisperJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", path, err)
	}
	return &doc, nil
}

func (doc *whisperJSON) toResult() *TranscriptionResult {
	result := &TranscriptionResult{Text: strings.TrimSpace(doc.Text)}
	for _, seg := range doc.Segments {
		result.Segments = append(result.Segments, Segment{Start: seg.Start, End: seg.End, Text: strings.TrimSpace(seg.Text)})
		result.ConfidenceScores = append(result.ConfidenceScores, seg.AvgLogprob)
	}
	if result.Text == "" && len(result.Segments) > 0 {
		parts := make([]string, 0, len(result.Segments))
		for _, seg := range result.Segments {
			parts = append(parts, seg.Text)
		}
		result.Text = strings.Join(parts, " ")
	}
	return result
}
