package modeladapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func startDeepgramStub(t *testing.T, status int, body string, seen *http.Request) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = *r
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDeepgramTranscribe(t *testing.T) {
	t.Setenv("DEEPGRAM_TEST_KEY", "secret")
	audioPath := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(audioPath, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}

	var seen http.Request
	server := startDeepgramStub(t, http.StatusOK, `{
		"results": {"channels": [{"alternatives": [{
			"transcript": "the quick brown fox",
			"confidence": 0.98,
			"words": [
				{"word": "the", "start": 0.0, "end": 0.2, "confidence": 0.99},
				{"word": "quick", "start": 0.2, "end": 0.5, "confidence": 0.97}
			]
		}]}]}
	}`, &seen)

	a := &DeepgramAdapter{
		Model:     "nova-2",
		APIKeyEnv: "DEEPGRAM_TEST_KEY",
		BaseURL:   server.URL,
	}

	result, err := a.Transcribe(context.Background(), audioPath, TranscribeOptions{Language: "en"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Text != "the quick brown fox" {
		t.Errorf("Text = %q, want the alternative transcript", result.Text)
	}
	if len(result.Segments) != 2 || result.Segments[1].Text != "quick" {
		t.Errorf("Segments = %+v, want per-word segments", result.Segments)
	}
	if len(result.ConfidenceScores) != 2 || result.ConfidenceScores[0] != 0.99 {
		t.Errorf("ConfidenceScores = %v, want per-word confidences", result.ConfidenceScores)
	}

	if got := seen.Header.Get("Authorization"); got != "Token secret" {
		t.Errorf("Authorization header = %q, want Token secret", got)
	}
	query := seen.URL.Query()
	if query.Get("model") != "nova-2" || query.Get("language") != "en" {
		t.Errorf("query = %v, want model and language parameters", query)
	}
}

func TestDeepgramBadRequestIsAudioFormatError(t *testing.T) {
	t.Setenv("DEEPGRAM_TEST_KEY", "secret")
	audioPath := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(audioPath, []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	server := startDeepgramStub(t, http.StatusBadRequest, `{"err_msg": "unable to decode"}`, nil)
	a := &DeepgramAdapter{APIKeyEnv: "DEEPGRAM_TEST_KEY", BaseURL: server.URL}

	_, err := a.Transcribe(context.Background(), audioPath, TranscribeOptions{})
	if _, ok := err.(*AudioFormatError); !ok {
		t.Fatalf("error = %v, want AudioFormatError", err)
	}
}

func TestDeepgramUnavailableWithoutKey(t *testing.T) {
	a := &DeepgramAdapter{APIKeyEnv: "DEEPGRAM_TEST_UNSET_KEY"}
	ok, reason := a.IsAvailable()
	if ok {
		t.Fatal("IsAvailable = true without an API key, want false")
	}
	if reason == "" {
		t.Error("IsAvailable returned no reason")
	}
}

func TestDeepgramName(t *testing.T) {
	if got := (&DeepgramAdapter{}).Describe().Name; got != "deepgram" {
		t.Errorf("Name = %q, want deepgram", got)
	}
	if got := (&DeepgramAdapter{Model: "nova-2"}).Describe().Name; got != "deepgram-nova-2" {
		t.Errorf("Name = %q, want deepgram-nova-2", got)
	}
}
