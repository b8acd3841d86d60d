// Package config loads the server settings from the environment and the
// model registry from a TOML file. The registry is the single source of
// truth for which ASR backends exist and how their fallback chains are
// wired.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"asr-benchmark-platform/internal/coreengine/modeladapters"
)

// ModelSpec declares one ASR backend in the registry file.
type ModelSpec struct {
	// Name overrides the adapter's derived display name.
	Name string `toml:"name"`
	// Backend selects the runtime family: "local-ctranslate",
	// "local-transformers", "local-nemo", "remote-api" or "mock".
	Backend string `toml:"backend"`
	// Provider selects the remote API vendor: "deepgram", "google" or
	// "tencent". Only used with the remote-api backend.
	Provider string `toml:"provider"`
	// Model is the backend-specific model selector: a Whisper size for
	// local-ctranslate, a checkpoint identifier for the other local
	// backends, a model tier for remote APIs.
	Model string `toml:"model"`
	// Fallback names the model to try when this one is unavailable.
	Fallback string `toml:"fallback"`

	CPUOnly   bool `toml:"cpu_only"`
	MinVRAMGB int  `toml:"min_vram_gb"`

	// Command overrides the CLI binary for local backends.
	Command string `toml:"command"`

	// Remote API settings.
	APIKeyEnv       string `toml:"api_key_env"`
	CredentialsFile string `toml:"credentials_file"`
	Region          string `toml:"region"`
	EngineModelType string `toml:"engine_model_type"`
	SampleRateHertz int    `toml:"sample_rate_hertz"`
}

// RegistryConfig is the root of the model registry file.
type RegistryConfig struct {
	Models []ModelSpec `toml:"models"`
}

// LoadRegistry parses a model registry TOML file.
func LoadRegistry(path string) (*RegistryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read registry %s: %w", path, err)
	}
	var reg RegistryConfig
	if err := toml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("config: parse registry %s: %w", path, err)
	}
	if len(reg.Models) == 0 {
		return nil, fmt.Errorf("config: registry %s declares no models", path)
	}
	return &reg, nil
}

// DefaultRegistry is the registry used when no file is given: the
// faster-whisper ladder degrading to the always-available mock backend.
func DefaultRegistry() *RegistryConfig {
	return &RegistryConfig{Models: []ModelSpec{
		{Backend: "local-ctranslate", Model: "large-v3", MinVRAMGB: 10, Fallback: "faster-whisper-base"},
		{Backend: "local-ctranslate", Model: "base", CPUOnly: true, Fallback: "mock-asr"},
		{Backend: "mock", Name: "mock-asr"},
	}}
}

// BuildAdapters constructs one adapter per registry entry.
func BuildAdapters(reg *RegistryConfig) ([]modeladapters.ModelAdapter, error) {
	adapters := make([]modeladapters.ModelAdapter, 0, len(reg.Models))
	for i, spec := range reg.Models {
		adapter, err := buildAdapter(spec)
		if err != nil {
			return nil, fmt.Errorf("config: model entry %d: %w", i, err)
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}

func buildAdapter(spec ModelSpec) (modeladapters.ModelAdapter, error) {
	resources := modeladapters.ResourceRequirements{
		MinVRAMGB: spec.MinVRAMGB,
		CPUOnly:   spec.CPUOnly,
	}

	switch spec.Backend {
	case "local-ctranslate":
		return &modeladapters.FasterWhisperAdapter{
			ModelSize:   spec.Model,
			DisplayName: spec.Name,
			Command:     spec.Command,
			Resources:   resources,
			Fallback:    spec.Fallback,
		}, nil

	case "local-transformers":
		return &modeladapters.HFWhisperAdapter{
			ModelID:     spec.Model,
			DisplayName: spec.Name,
			Command:     spec.Command,
			Resources:   resources,
			Fallback:    spec.Fallback,
		}, nil

	case "local-nemo":
		return &modeladapters.CanaryAdapter{
			ModelID:     spec.Model,
			DisplayName: spec.Name,
			Command:     spec.Command,
			Resources:   resources,
			Fallback:    spec.Fallback,
		}, nil

	case "remote-api":
		switch spec.Provider {
		case "deepgram":
			return &modeladapters.DeepgramAdapter{
				Model:       spec.Model,
				DisplayName: spec.Name,
				APIKeyEnv:   spec.APIKeyEnv,
				Fallback:    spec.Fallback,
			}, nil
		case "google":
			return &modeladapters.GoogleAdapter{
				CredentialsFile: spec.CredentialsFile,
				Model:           spec.Model,
				DisplayName:     spec.Name,
				SampleRateHertz: int32(spec.SampleRateHertz),
				Fallback:        spec.Fallback,
			}, nil
		case "tencent":
			return &modeladapters.TencentAdapter{
				DisplayName:     spec.Name,
				Region:          spec.Region,
				EngineModelType: spec.EngineModelType,
				Fallback:        spec.Fallback,
			}, nil
		default:
			return nil, fmt.Errorf("unknown remote provider %q", spec.Provider)
		}

	case "mock":
		return &modeladapters.MockAdapter{Name: spec.Name, Fallback: spec.Fallback}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", spec.Backend)
	}
}
