package modeladapters

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckAudioPath(t *testing.T) {
	dir := t.TempDir()
	wav := filepath.Join(dir, "sample.wav")
	if err := os.WriteFile(wav, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"supported_extension", wav, false},
		{"unsupported_extension", txt, true},
		{"missing_file", filepath.Join(dir, "ghost.wav"), true},
		{"directory", dir + string(os.PathSeparator) + "d.wav_dir", true},
	}
	if err := os.Mkdir(tests[3].path, 0o755); err != nil {
		t.Fatal(err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkAudioPath(tt.path)
			if tt.wantErr {
				var formatErr *AudioFormatError
				if !errors.As(err, &formatErr) {
					t.Errorf("checkAudioPath(%q) = %v, want AudioFormatError", tt.path, err)
				}
			} else if err != nil {
				t.Errorf("checkAudioPath(%q) = %v, want nil", tt.path, err)
			}
		})
	}
}

func TestProbeEnv(t *testing.T) {
	t.Setenv("ASR_PROBE_TEST_VAR", "value")
	if ok, _ := probeEnv("ASR_PROBE_TEST_VAR"); !ok {
		t.Error("probeEnv of a set variable = false, want true")
	}

	t.Setenv("ASR_PROBE_TEST_VAR", "  ")
	if ok, _ := probeEnv("ASR_PROBE_TEST_VAR"); ok {
		t.Error("probeEnv of a blank variable = true, want false")
	}

	ok, reason := probeEnv("ASR_PROBE_TEST_UNSET_VAR")
	if ok {
		t.Error("probeEnv of an unset variable = true, want false")
	}
	if reason == "" {
		t.Error("probeEnv returned no reason for an unset variable")
	}
}

func TestProbeBinary(t *testing.T) {
	if ok, _ := probeBinary("sh"); !ok {
		t.Error("probeBinary(sh) = false, want true")
	}
	ok, reason := probeBinary("definitely-not-a-real-binary-xyz")
	if ok {
		t.Error("probeBinary of a missing binary = true, want false")
	}
	if reason == "" {
		t.Error("probeBinary returned no reason for a missing binary")
	}
	if ok, _ := probeBinary(""); ok {
		t.Error("probeBinary(\"\") = true, want false")
	}
}
