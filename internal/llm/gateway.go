package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"callcoach-backend/internal/shared/telemetry"
)

// Gateway tries providers in order and returns a parsed analysis object.
// It never fails: when no provider is configured or every provider fails,
// callers get the degraded default instead of an error so there is always
// a renderable shape.
type Gateway struct {
	providers []Provider
	timeout   time.Duration
}

// NewGateway builds a Gateway over the given providers. Each provider call
// gets its own timeout.
func NewGateway(timeout time.Duration, providers ...Provider) *Gateway {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Gateway{providers: providers, timeout: timeout}
}

// Analyze runs the provider fallback chain over the transcript. A provider
// whose output cannot be parsed counts as a failed provider. The "model"
// field of the result is always overwritten with the winning provider's
// identifier; the model's self-reported identity is never trusted.
func (g *Gateway) Analyze(ctx context.Context, transcript string) map[string]any {
	prompt := BuildPrompt(transcript)

	for _, provider := range g.providers {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		raw, err := provider.Complete(callCtx, prompt)
		cancel()
		if err != nil {
			telemetry.Error("llm.provider.failed", map[string]any{
				"provider": provider.Name(),
				"err":      err.Error(),
			})
			continue
		}

		parsed, err := parseAnalysisJSON(raw)
		if err != nil {
			telemetry.Error("llm.provider.malformed", map[string]any{
				"provider": provider.Name(),
				"err":      err.Error(),
			})
			continue
		}
		parsed["model"] = provider.Name()
		return parsed
	}

	telemetry.Error("llm.degraded", map[string]any{
		"providers": len(g.providers),
	})
	return DegradedResult(time.Now().UTC())
}

// parseAnalysisJSON slices the raw text to its outermost JSON object and
// parses it. Provider output nominally promises strict JSON but is not
// guaranteed to comply, so the brace slice strips any surrounding prose
// or markdown fences.
func parseAnalysisJSON(raw string) (map[string]any, error) {
	sliced := extractJSONObject(raw)
	var parsed map[string]any
	if err := json.Unmarshal([]byte(sliced), &parsed); err != nil {
		return nil, err
	}
	if parsed == nil {
		parsed = map[string]any{}
	}
	return parsed, nil
}

// extractJSONObject returns the substring from the first '{' to the last
// '}' inclusive, or "{}" when no such pair exists.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "{}"
	}
	return raw[start : end+1]
}

// DegradedResult is the all-zero analysis returned when every provider
// fails. Its shape mirrors a successful result so clients can render it.
func DegradedResult(generatedAt time.Time) map[string]any {
	return map[string]any{
		"schemaVersion": "1.0",
		"model":         "none",
		"qualityScores": map[string]any{
			"callOpening":       0,
			"issueCapture":      0,
			"sentiment":         0,
			"csat":              0,
			"resolutionQuality": 0,
		},
		"metricExplanations": map[string]any{},
		"coachingPlanText":   "",
		"coachingActions":    []any{},
		"references":         []any{},
		"snippets":           []any{},
		"quiz":               []any{},
		"completionCriteria": "",
		"metadata": map[string]any{
			"generatedAt":     generatedAt.Format(time.RFC3339),
			"modelConfidence": nil,
		},
	}
}
