package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const whisperURL = "https://api.openai.com/v1/audio/transcriptions"

// WhisperBackend calls the hosted OpenAI transcription API.
type WhisperBackend struct {
	apiKey     string
	url        string
	httpClient *http.Client
}

// NewWhisperBackend constructs a WhisperBackend.
func NewWhisperBackend(apiKey string) (*WhisperBackend, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	return &WhisperBackend{
		apiKey:     apiKey,
		url:        whisperURL,
		httpClient: &http.Client{},
	}, nil
}

func (b *WhisperBackend) Name() string { return "openai-whisper" }

type whisperResponse struct {
	Text  string `json:"text"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Transcribe sends the audio as multipart form data and returns the
// transcript text. Transient 5xx responses are retried with exponential
// backoff; the gateway's per-call deadline still bounds the total time.
func (b *WhisperBackend) Transcribe(ctx context.Context, audio []byte, fileName string) (string, error) {
	if fileName == "" {
		fileName = "audio.wav"
	}

	var lastErr error
	var text string
	op := func() error {
		body, contentType, err := buildMultipart(audio, fileName, map[string]string{"model": "whisper-1"})
		if err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, body)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
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
			lastErr = fmt.Errorf("openai transcription status %d", resp.StatusCode)
			return lastErr
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("openai transcription status %d: %s", resp.StatusCode, truncate(string(raw), 200))
			return backoff.Permanent(lastErr)
		}
		var parsed whisperResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			lastErr = fmt.Errorf("openai transcription parse: %w", err)
			return backoff.Permanent(lastErr)
		}
		if parsed.Error != nil {
			lastErr = fmt.Errorf("openai transcription error: %s", parsed.Error.Message)
			return backoff.Permanent(lastErr)
		}
		if parsed.Text == "" {
			lastErr = fmt.Errorf("openai transcription returned no text")
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

func buildMultipart(audio []byte, fileName string, fields map[string]string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", err
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
