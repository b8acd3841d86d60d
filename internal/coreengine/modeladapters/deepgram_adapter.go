package modeladapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

const (
	deepgramBaseURL       = "https://api.deepgram.com/v1/listen"
	deepgramAPIKeyEnv     = "DEEPGRAM_API_KEY"
	deepgramClientTimeout = 120 * time.Second
)

// DeepgramAdapter transcribes audio through the Deepgram pre-recorded
// listen API.
type DeepgramAdapter struct {
	// Model selects the Deepgram model tier, e.g. "nova-2". Empty lets
	// the API pick its default.
	Model string
	// DisplayName is the short name used in leaderboards; defaults to
	// "deepgram" or "deepgram-" plus the model tier.
	DisplayName string
	// APIKeyEnv names the environment variable holding the API key.
	// Defaults to DEEPGRAM_API_KEY.
	APIKeyEnv string
	// BaseURL overrides the API endpoint (for testing).
	BaseURL string
	// Fallback names the next model in the configured chain, if any.
	Fallback string

	// HTTPClient overrides the default client (for testing).
	HTTPClient *http.Client
}

// deepgramResponse is the subset of the Deepgram JSON response the adapter
// consumes.
type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
				Words      []struct {
					Word       string  `json:"word"`
					Start      float64 `json:"start"`
					End        float64 `json:"end"`
					Confidence float64 `json:"confidence"`
				} `json:"words"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// IsAvailable reports whether the API key is configured. No network probe
// is performed.
func (a *DeepgramAdapter) IsAvailable() (bool, string) {
	return probeEnv(a.apiKeyEnv())
}

// Transcribe uploads the audio file to the Deepgram listen endpoint and
// extracts the first alternative's transcript.
func (a *DeepgramAdapter) Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) (*TranscriptionResult, error) {
	if ok, reason := a.IsAvailable(); !ok {
		return nil, &ModelUnavailableError{Model: a.name(), Reason: reason}
	}
	if err := checkAudioPath(audioPath); err != nil {
		return nil, err
	}

	opts = opts.Normalized()

	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("deepgram: read audio file %q: %w", audioPath, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(audioPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	reqURL, err := url.Parse(a.baseURL())
	if err != nil {
		return nil, fmt.Errorf("deepgram: parse base URL: %w", err)
	}
	query := reqURL.Query()
	if a.Model != "" {
		query.Set("model", a.Model)
	}
	if opts.Language != "" {
		query.Set("language", opts.Language)
	}
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(audioBytes))
	if err != nil {
		return nil, fmt.Errorf("deepgram: create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+os.Getenv(a.apiKeyEnv()))
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	httpResp, err := a.httpClient().Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("deepgram: send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("deepgram: read response body: %w", err)
	}

	switch {
	case httpResp.StatusCode == http.StatusBadRequest || httpResp.StatusCode == http.StatusUnsupportedMediaType:
		return nil, &AudioFormatError{Path: audioPath, Cause: fmt.Errorf("deepgram rejected the audio: %s", string(respBody))}
	case httpResp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("deepgram: request failed with status %s: %s", httpResp.Status, string(respBody))
	}

	var dgResp deepgramResponse
	if err := json.Unmarshal(respBody, &dgResp); err != nil {
		return nil, fmt.Errorf("deepgram: parse response: %w", err)
	}

	result := &TranscriptionResult{}
	if len(dgResp.Results.Channels) > 0 && len(dgResp.Results.Channels[0].Alternatives) > 0 {
		alt := dgResp.Results.Channels[0].Alternatives[0]
		result.Text = alt.Transcript
		for _, word := range alt.Words {
			result.Segments = append(result.Segments, Segment{Start: word.Start, End: word.End, Text: word.Word})
			result.ConfidenceScores = append(result.ConfidenceScores, word.Confidence)
		}
	} else {
		log.Printf("deepgram: response for %q carried no transcript alternatives", audioPath)
	}
	return result, nil
}

// Describe returns the backend's static metadata.
func (a *DeepgramAdapter) Describe() ModelDescriptor {
	return ModelDescriptor{
		Name:         a.name(),
		BackendKind:  BackendRemoteAPI,
		Capabilities: []Capability{CapabilityConfidence, CapabilityTimestamps, CapabilityStreaming},
		Resources:    ResourceRequirements{CPUOnly: true},
		Fallback:     a.Fallback,
	}
}

func (a *DeepgramAdapter) name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	if a.Model != "" {
		return "deepgram-" + a.Model
	}
	return "deepgram"
}

func (a *DeepgramAdapter) apiKeyEnv() string {
	if a.APIKeyEnv == "" {
		return deepgramAPIKeyEnv
	}
	return a.APIKeyEnv
}

func (a *DeepgramAdapter) baseURL() string {
	if a.BaseURL == "" {
		return deepgramBaseURL
	}
	return a.BaseURL
}

func (a *DeepgramAdapter) httpClient() *http.Client {
	if a.HTTPClient == nil {
		return &http.Client{Timeout: deepgramClientTimeout}
	}
	return a.HTTPClient
}
