package modeladapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// inferenceOutput is the JSON-on-stdout contract shared by the helper CLIs
// that wrap python inference stacks (transformers, NeMo). The helpers print
// a single JSON document and exit.
type inferenceOutput struct {
	Text             string    `json:"text"`
	Language         string    `json:"language,omitempty"`
	ConfidenceScores []float64 `json:"confidence_scores,omitempty"`
	Segments         []Segment `json:"segments,omitempty"`
	Error            string    `json:"error,omitempty"`
}

// runInferenceCLI executes a helper command and decodes its stdout JSON.
// stderr is carried into the error message on failure.
func runInferenceCLI(ctx context.Context, name string, args []string) (*inferenceOutput, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = strings.TrimSpace(stdout.String())
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, detail)
	}

	var out inferenceOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("%s: parse output: %w", name, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%s: %s", name, out.Error)
	}
	return &out, nil
}

func (out *inferenceOutput) toResult() *TranscriptionResult {
	return &TranscriptionResult{
		Text:             strings.TrimSpace(out.Text),
		ConfidenceScores: out.ConfidenceScores,
		Segments:         out.Segments,
	}
}
