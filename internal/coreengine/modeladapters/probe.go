package modeladapters

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Audio extensions the local adapters accept without attempting a decode.
var supportedAudioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".webm": true,
	".flac": true,
	".ogg":  true,
}

// checkAudioPath validates that the audio input exists and carries a
// supported extension. It returns an AudioFormatError otherwise.
func checkAudioPath(audioPath string) error {
	info, err := os.Stat(audioPath)
	if err != nil {
		return &AudioFormatError{Path: audioPath, Cause: err}
	}
	if info.IsDir() {
		return &AudioFormatError{Path: audioPath, Cause: fmt.Errorf("path is a directory")}
	}
	ext := strings.ToLower(filepath.Ext(audioPath))
	if !supportedAudioExtensions[ext] {
		return &AudioFormatError{Path: audioPath, Cause: fmt.Errorf("unsupported audio extension %q", ext)}
	}
	return nil
}

// probeBinary reports whether the named command is on PATH.
func probeBinary(command string) (bool, string) {
	if command == "" {
		return false, "command not configured"
	}
	if _, err := exec.LookPath(command); err != nil {
		return false, fmt.Sprintf("missing dependency: binary %q not found on PATH", command)
	}
	return true, ""
}

// probeCUDA reports whether a CUDA device appears to be present. The check
// is intentionally shallow: nvidia-smi on PATH is taken as device presence.
func probeCUDA() (bool, string) {
	if _, err := exec.LookPath("nvidia-smi"); err != nil {
		return false, "no CUDA device found (nvidia-smi not on PATH)"
	}
	return true, ""
}

// probeEnv reports whether the named environment variable is set and
// non-empty.
func probeEnv(name string) (bool, string) {
	if strings.TrimSpace(os.Getenv(name)) == "" {
		return false, fmt.Sprintf("missing dependency: environment variable %s is not set", name)
	}
	return true, ""
}

// resolveDevice maps the "auto" device selection to a concrete device based
// on CUDA presence. Explicit selections pass through unchanged.
func resolveDevice(device string) string {
	if device != DeviceAuto {
		return device
	}
	if ok, _ := probeCUDA(); ok {
		return DeviceCUDA
	}
	return DeviceCPU
}
