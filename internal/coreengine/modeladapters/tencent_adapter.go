package modeladapters

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	asr "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/asr/v20190614"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	terrors "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/errors"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
)

const (
	tencentSecretIDEnv   = "TENCENTCLOUD_SECRET_ID"
	tencentSecretKeyEnv  = "TENCENTCLOUD_SECRET_KEY"
	tencentASREndpoint   = "asr.tencentcloudapi.com"
	tencentDefaultRegion = "ap-guangzhou"
)

// TencentAdapter transcribes audio through the Tencent Cloud
// SentenceRecognition API.
type TencentAdapter struct {
	// DisplayName is the short name used in leaderboards; defaults to
	// "tencent-asr".
	DisplayName string
	// Region selects the Tencent Cloud region; defaults to ap-guangzhou.
	Region string
	// EngineModelType selects the recognition engine, e.g. "16k_en".
	// Empty derives it from the request language.
	EngineModelType string
	// Fallback names the next model in the configured chain, if any.
	Fallback string
}

// IsAvailable reports whether the Tencent Cloud credential pair is
// configured. No network probe is performed.
func (a *TencentAdapter) IsAvailable() (bool, string) {
	if ok, reason := probeEnv(tencentSecretIDEnv); !ok {
		return false, reason
	}
	return probeEnv(tencentSecretKeyEnv)
}

// Transcribe submits the audio inline as base64 and returns the recognized
// sentence.
func (a *TencentAdapter) Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) (*TranscriptionResult, error) {
	if ok, reason := a.IsAvailable(); !ok {
		return nil, &ModelUnavailableError{Model: a.name(), Reason: reason}
	}
	if err := checkAudioPath(audioPath); err != nil {
		return nil, err
	}

	opts = opts.Normalized()

	credential := common.NewCredential(os.Getenv(tencentSecretIDEnv), os.Getenv(tencentSecretKeyEnv))
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = tencentASREndpoint

	client, err := asr.NewClient(credential, a.region(), cpf)
	if err != nil {
		return nil, fmt.Errorf("tencent asr: create client: %w", err)
	}

	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("tencent asr: read audio file %q: %w", audioPath, err)
	}

	voiceFormat := strings.TrimPrefix(strings.ToLower(filepath.Ext(audioPath)), ".")
	if voiceFormat == "" {
		voiceFormat = "wav"
	}

	request := asr.NewSentenceRecognitionRequest()
	request.EngSerViceType = common.StringPtr(a.engineModelType(opts.Language))
	request.SourceType = common.Uint64Ptr(1)
	request.VoiceFormat = common.StringPtr(voiceFormat)
	request.Data = common.StringPtr(base64.StdEncoding.EncodeToString(audioBytes))
	request.DataLen = common.Int64Ptr(int64(len(audioBytes)))

	response, err := client.SentenceRecognitionWithContext(ctx, request)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if terr, ok := err.(*terrors.TencentCloudSDKError); ok {
			return nil, fmt.Errorf("tencent asr: API error %s: %s", terr.GetCode(), terr.GetMessage())
		}
		return nil, fmt.Errorf("tencent asr: request failed: %w", err)
	}

	if response.Response == nil || response.Response.Result == nil {
		return nil, fmt.Errorf("tencent asr: response carried no result")
	}
	return &TranscriptionResult{Text: strings.TrimSpace(*response.Response.Result)}, nil
}

// Describe returns the backend's static metadata.
func (a *TencentAdapter) Describe() ModelDescriptor {
	return ModelDescriptor{
		Name:        a.name(),
		BackendKind: BackendRemoteAPI,
		Resources:   ResourceRequirements{CPUOnly: true},
		Fallback:    a.Fallback,
	}
}

func (a *TencentAdapter) name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return "tencent-asr"
}

func (a *TencentAdapter) region() string {
	if a.Region == "" {
		return tencentDefaultRegion
	}
	return a.Region
}

// engineModelType maps a requested language onto a Tencent engine model.
// The engine identifier bundles sample rate and language.
func (a *TencentAdapter) engineModelType(language string) string {
	if a.EngineModelType != "" {
		return a.EngineModelType
	}
	if strings.HasPrefix(language, "zh") {
		return "16k_zh"
	}
	return "16k_en"
}
