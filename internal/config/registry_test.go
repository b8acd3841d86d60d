package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asr-benchmark-platform/internal/coreengine/resolver"
)

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRegistry(t *testing.T) {
	path := writeRegistry(t, `
[[models]]
backend = "local-ctranslate"
model = "large-v3"
min_vram_gb = 10
fallback = "faster-whisper-base"

[[models]]
backend = "local-ctranslate"
model = "base"
cpu_only = true
fallback = "mock-asr"

[[models]]
backend = "mock"
name = "mock-asr"
`)

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg.Models, 3)

	assert.Equal(t, "large-v3", reg.Models[0].Model)
	assert.Equal(t, 10, reg.Models[0].MinVRAMGB)
	assert.Equal(t, "faster-whisper-base", reg.Models[0].Fallback)
	assert.True(t, reg.Models[1].CPUOnly)
}

func TestLoadRegistryErrors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = LoadRegistry(writeRegistry(t, "not [valid toml"))
	assert.Error(t, err)

	_, err = LoadRegistry(writeRegistry(t, "# no models declared"))
	assert.Error(t, err)
}

func TestBuildAdapters(t *testing.T) {
	reg := &RegistryConfig{Models: []ModelSpec{
		{Backend: "local-ctranslate", Model: "base", CPUOnly: true, Fallback: "mock-asr"},
		{Backend: "local-transformers", Model: "openai/whisper-base", Name: "hf-whisper-base", Fallback: "mock-asr"},
		{Backend: "local-nemo", Model: "nvidia/canary-qwen-2.5b", Name: "canary-qwen-2.5b", MinVRAMGB: 10, Fallback: "mock-asr"},
		{Backend: "remote-api", Provider: "deepgram", Model: "nova-2", Fallback: "mock-asr"},
		{Backend: "remote-api", Provider: "google", Fallback: "mock-asr"},
		{Backend: "remote-api", Provider: "tencent", Fallback: "mock-asr"},
		{Backend: "mock", Name: "mock-asr"},
	}}

	adapters, err := BuildAdapters(reg)
	require.NoError(t, err)
	require.Len(t, adapters, 7)

	// The built set must form a valid acyclic registry.
	r, err := resolver.New(adapters)
	require.NoError(t, err)

	names := make([]string, 0, len(adapters))
	for _, desc := range r.Descriptors() {
		names = append(names, desc.Name)
	}
	assert.Contains(t, names, "faster-whisper-base")
	assert.Contains(t, names, "hf-whisper-base")
	assert.Contains(t, names, "canary-qwen-2.5b")
	assert.Contains(t, names, "deepgram-nova-2")
	assert.Contains(t, names, "google-speech")
	assert.Contains(t, names, "tencent-asr")
	assert.Contains(t, names, "mock-asr")
}

func TestBuildAdaptersHonorsConfiguredNames(t *testing.T) {
	reg := &RegistryConfig{Models: []ModelSpec{
		{Backend: "local-ctranslate", Model: "large-v3", Name: "whisper-gpu", Fallback: "deepgram-cloud"},
		{Backend: "remote-api", Provider: "deepgram", Model: "nova-2", Name: "deepgram-cloud", Fallback: "google-cloud"},
		{Backend: "remote-api", Provider: "google", Name: "google-cloud", Fallback: "tencent-cloud"},
		{Backend: "remote-api", Provider: "tencent", Name: "tencent-cloud"},
	}}

	adapters, err := BuildAdapters(reg)
	require.NoError(t, err)

	// Fallback links reference the configured names, so resolver.New only
	// succeeds if every adapter registers under its configured name.
	r, err := resolver.New(adapters)
	require.NoError(t, err)

	chain := r.Chain("whisper-gpu")
	assert.Equal(t, []string{"whisper-gpu", "deepgram-cloud", "google-cloud", "tencent-cloud"}, chain)
}

func TestBuildAdaptersRejectsUnknown(t *testing.T) {
	_, err := BuildAdapters(&RegistryConfig{Models: []ModelSpec{{Backend: "quantum"}}})
	assert.Error(t, err)

	_, err = BuildAdapters(&RegistryConfig{Models: []ModelSpec{{Backend: "remote-api", Provider: "acme"}}})
	assert.Error(t, err)
}

func TestDefaultRegistryBuildsValidChain(t *testing.T) {
	adapters, err := BuildAdapters(DefaultRegistry())
	require.NoError(t, err)

	r, err := resolver.New(adapters)
	require.NoError(t, err)

	chain := r.Chain("faster-whisper-large-v3")
	assert.Equal(t, []string{"faster-whisper-large-v3", "faster-whisper-base", "mock-asr"}, chain)

	// The chain terminal must always be available.
	res, err := r.Resolve("mock-asr")
	require.NoError(t, err)
	assert.False(t, res.FellBack)
}
