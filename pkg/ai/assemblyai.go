package ai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"

	"github.com/mabel-app/mabel-backend/pkg/config"
)

// AssemblyAIClient transcribes audio answers using the official AssemblyAI SDK
type AssemblyAIClient struct {
	sdk    *aai.Client
	client *http.Client
}

// NewAssemblyAIClient creates an AssemblyAI client using the provided config.
// If cfg is nil, falls back to environment variables.
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig) *AssemblyAIClient {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}

	return &AssemblyAIClient{
		sdk:    aai.NewClient(apiKey),
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// TranscribeAudio downloads the stored audio, uploads it to AssemblyAI and
// waits for the transcript. Submission is retried with exponential backoff.
func (c *AssemblyAIClient) TranscribeAudio(ctx context.Context, audioURL string) (*TranscriptionResult, error) {
	if audioURL == "" {
		return nil, fmt.Errorf("audio URL is required")
	}

	var transcript aai.Transcript

	submitFn := func() error {
		cleanURL := strings.TrimSpace(audioURL)

		// Download from object storage first; presigned URLs may not be
		// reachable from AssemblyAI's network, so re-upload the bytes.
		resp, err := c.client.Get(cleanURL)
		if err != nil {
			return fmt.Errorf("failed to download audio: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != 200 {
			return fmt.Errorf("storage returned status %d", resp.StatusCode)
		}

		uploadURL, err := c.sdk.Upload(ctx, resp.Body)
		if err != nil {
			return fmt.Errorf("failed to upload to AssemblyAI: %w", err)
		}

		params := &aai.TranscriptOptionalParams{
			LanguageDetection: aai.Bool(true),
			Punctuate:         aai.Bool(true),
			FormatText:        aai.Bool(true),
		}

		t, err := c.sdk.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
		if err != nil {
			return err
		}
		transcript = t
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 60 * time.Second

	if err := backoff.Retry(submitFn, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	// Poll until terminal
	for transcript.Status != aai.TranscriptStatusCompleted && transcript.Status != aai.TranscriptStatusError {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(3 * time.Second):
		}

		if transcript.ID == nil {
			return nil, fmt.Errorf("transcript id missing from AssemblyAI response")
		}

		t, err := c.sdk.Transcripts.Get(ctx, *transcript.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to poll transcript: %w", err)
		}
		transcript = t
	}

	if transcript.Status == aai.TranscriptStatusError {
		errMsg := "transcription failed"
		if transcript.Error != nil {
			errMsg = *transcript.Error
		}
		return nil, fmt.Errorf("assemblyai error: %s", errMsg)
	}

	result := &TranscriptionResult{}
	if transcript.Text != nil {
		result.Text = strings.TrimSpace(*transcript.Text)
	}
	if transcript.Confidence != nil {
		result.Confidence = *transcript.Confidence
	}
	if transcript.AudioDuration != nil {
		result.DurationMS = int(*transcript.AudioDuration * 1000)
	}

	if result.Text == "" {
		return nil, fmt.Errorf("assemblyai returned empty transcript")
	}

	return result, nil
}
