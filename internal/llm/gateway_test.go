package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type stubProvider struct {
	name   string
	output string
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.output, nil
}

func TestGatewayOverwritesModel(t *testing.T) {
	p := &stubProvider{name: "gemini-1.5-flash", output: `{"model":"i-am-lying","qualityScores":{"csat":7}}`}
	gw := NewGateway(time.Second, p)

	result := gw.Analyze(context.Background(), "transcript")
	if got := result["model"]; got != "gemini-1.5-flash" {
		t.Fatalf("expected model overwritten with provider name, got %v", got)
	}
}

func TestGatewayFallsThroughOnUnparseableOutput(t *testing.T) {
	bad := &stubProvider{name: "gemini-1.5-flash", output: "sorry, I cannot help with that"}
	good := &stubProvider{name: "gpt-3.5-turbo", output: `{"qualityScores":{"callOpening":5}}`}
	gw := NewGateway(time.Second, bad, good)

	result := gw.Analyze(context.Background(), "transcript")
	if got := result["model"]; got != "gpt-3.5-turbo" {
		t.Fatalf("expected second provider's model, got %v", got)
	}
	if bad.calls != 1 || good.calls != 1 {
		t.Fatalf("expected one call each, got %d and %d", bad.calls, good.calls)
	}
}

func TestGatewayFallsThroughOnProviderError(t *testing.T) {
	failing := &stubProvider{name: "gemini-1.5-flash", err: fmt.Errorf("quota exceeded")}
	good := &stubProvider{name: "gpt-3.5-turbo", output: `{"coachingPlanText":"plan"}`}
	gw := NewGateway(time.Second, failing, good)

	result := gw.Analyze(context.Background(), "transcript")
	if got := result["model"]; got != "gpt-3.5-turbo" {
		t.Fatalf("expected fallback provider, got %v", got)
	}
	if got := result["coachingPlanText"]; got != "plan" {
		t.Fatalf("expected parsed body to survive, got %v", got)
	}
}

func TestGatewayDegradedDefaultWhenAllFail(t *testing.T) {
	a := &stubProvider{name: "a", err: fmt.Errorf("down")}
	b := &stubProvider{name: "b", output: "no json here"}
	gw := NewGateway(time.Second, a, b)

	result := gw.Analyze(context.Background(), "transcript")
	if got := result["model"]; got != "none" {
		t.Fatalf("expected sentinel model none, got %v", got)
	}
	scores, ok := result["qualityScores"].(map[string]any)
	if !ok {
		t.Fatalf("expected qualityScores map, got %T", result["qualityScores"])
	}
	for _, metric := range []string{"callOpening", "issueCapture", "sentiment", "csat", "resolutionQuality"} {
		if scores[metric] != 0 {
			t.Fatalf("expected zero score for %s, got %v", metric, scores[metric])
		}
	}
}

func TestGatewayDegradedDefaultWhenNoProviders(t *testing.T) {
	gw := NewGateway(time.Second)
	result := gw.Analyze(context.Background(), "transcript")
	if got := result["model"]; got != "none" {
		t.Fatalf("expected sentinel model none, got %v", got)
	}
}

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"markdown fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", `Here you go: {"a":1} hope that helps`, `{"a":1}`},
		{"no braces", "no json at all", "{}"},
		{"reversed braces", "} oops {", "{}"},
	}
	for _, tc := range cases {
		if got := extractJSONObject(tc.in); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestPromptEmbedsTranscriptAndRubric(t *testing.T) {
	prompt := BuildPrompt("agent: hello, thanks for calling")
	if !strings.Contains(prompt, "agent: hello, thanks for calling") {
		t.Fatal("prompt must embed the transcript")
	}
	for _, metric := range []string{"callOpening", "issueCapture", "sentiment", "csat", "resolutionQuality"} {
		if !strings.Contains(prompt, metric) {
			t.Fatalf("prompt missing metric %s", metric)
		}
	}
	if !strings.Contains(prompt, "Return JSON only") {
		t.Fatal("prompt missing JSON-only rule")
	}
}

func TestOpenAIProviderParsesContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"{\"a\":1}"}}]}`)
	}))
	defer srv.Close()

	p := &OpenAIProvider{apiKey: "test-key", model: "gpt-3.5-turbo", url: srv.URL, httpClient: srv.Client()}
	out, err := p.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"a":1}` {
		t.Fatalf("unexpected content %q", out)
	}
}

func TestGeminiProviderParsesParts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"{\"b\":"},{"text":"2}"}]}}]}`)
	}))
	defer srv.Close()

	p := &GeminiProvider{apiKey: "k", model: "gemini-1.5-flash", baseURL: srv.URL, httpClient: srv.Client()}
	out, err := p.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"b":2}` {
		t.Fatalf("unexpected content %q", out)
	}
}
