package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"asr-benchmark-platform/internal/coreengine/evaluationengine"
	"asr-benchmark-platform/internal/coreengine/metricscalculator"
)

// sampleManifest is the TOML file describing the local reference samples
// to benchmark against.
type sampleManifest struct {
	Samples []sampleSpec `toml:"samples"`
}

type sampleSpec struct {
	Name       string   `toml:"name"`
	Audio      string   `toml:"audio"`
	Transcript string   `toml:"transcript"`
	KeyTerms   []string `toml:"key_terms"`
}

// loadSamples parses a sample manifest. Relative audio paths resolve
// against the manifest's directory.
func loadSamples(path string) ([]evaluationengine.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sample manifest %s: %w", path, err)
	}
	var manifest sampleManifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse sample manifest %s: %w", path, err)
	}
	if len(manifest.Samples) == 0 {
		return nil, fmt.Errorf("sample manifest %s declares no samples", path)
	}

	baseDir := filepath.Dir(path)
	samples := make([]evaluationengine.Sample, 0, len(manifest.Samples))
	for i, spec := range manifest.Samples {
		if spec.Audio == "" || spec.Transcript == "" {
			return nil, fmt.Errorf("sample manifest %s: entry %d needs audio and transcript", path, i)
		}
		audioPath := spec.Audio
		if !filepath.IsAbs(audioPath) {
			audioPath = filepath.Join(baseDir, audioPath)
		}
		name := spec.Name
		if name == "" {
			name = filepath.Base(spec.Audio)
		}
		samples = append(samples, evaluationengine.Sample{
			Name:      name,
			AudioPath: audioPath,
			Reference: metricscalculator.ReferenceTranscript{
				Text:     spec.Transcript,
				KeyTerms: spec.KeyTerms,
			},
		})
	}
	return samples, nil
}
