package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// LocalWhisperBackend calls a self-hosted whisper service exposing
// POST {baseURL}/transcribe with a multipart "file" field and a
// {"text": "..."} JSON response.
type LocalWhisperBackend struct {
	baseURL    string
	httpClient *http.Client
}

// NewLocalWhisperBackend constructs a LocalWhisperBackend.
func NewLocalWhisperBackend(baseURL string) (*LocalWhisperBackend, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("LOCAL_WHISPER_URL is required")
	}
	return &LocalWhisperBackend{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}, nil
}

func (b *LocalWhisperBackend) Name() string { return "local-whisper" }

func (b *LocalWhisperBackend) Transcribe(ctx context.Context, audio []byte, fileName string) (string, error) {
	if fileName == "" {
		fileName = "audio.wav"
	}

	var lastErr error
	var text string
	op := func() error {
		body, contentType, err := buildMultipart(audio, fileName, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/transcribe", body)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := b.httpClient.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			lastErr = err
			return err
		}
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("local whisper status %d", resp.StatusCode)
			return lastErr
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("local whisper status %d: %s", resp.StatusCode, truncate(string(raw), 200))
			return backoff.Permanent(lastErr)
		}
		var parsed struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(raw, &parsed); err != nil {
			lastErr = fmt.Errorf("local whisper parse: %w", err)
			return backoff.Permanent(lastErr)
		}
		if parsed.Text == "" {
			lastErr = fmt.Errorf("local whisper returned no text")
			return backoff.Permanent(lastErr)
		}
		text = parsed.Text
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 15 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			return "", lastErr
		}
		return "", err
	}
	return text, nil
}
