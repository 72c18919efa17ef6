package analyses

import (
	"math"
	"time"
)

// FromRaw turns a gateway result into a fully populated Analysis. The
// upstream schema is advisory for the model and enforced here: missing
// fields become type-appropriate empties, scores are coerced to integers
// and clamped to [0,10], confidence is kept only when in [0,1], and quiz
// entries whose answerIndex does not index their own options are dropped.
func FromRaw(raw map[string]any, generatedAt time.Time) Analysis {
	analysis := Analysis{
		QualityScores:      normalizeScores(asMap(raw["qualityScores"])),
		MetricExplanations: normalizeExplanations(asMap(raw["metricExplanations"])),
		CoachingPlanText:   asString(raw["coachingPlanText"]),
		CoachingActions:    asStringSlice(raw["coachingActions"]),
		References:         normalizeReferences(raw["references"]),
		Snippets:           normalizeSnippets(raw["snippets"]),
		Quiz:               normalizeQuiz(raw["quiz"]),
		CompletionCriteria: asString(raw["completionCriteria"]),
		Metadata: Metadata{
			GeneratedAt:     generatedAt,
			Model:           modelName(raw),
			ModelConfidence: normalizeConfidence(raw),
		},
		AnalyzedAt: generatedAt,
	}
	return analysis
}

func modelName(raw map[string]any) string {
	if model := asString(raw["model"]); model != "" {
		return model
	}
	return "none"
}

func normalizeScores(scores map[string]any) QualityScores {
	return QualityScores{
		CallOpening:       clampScore(asInt(scores[MetricCallOpening])),
		IssueCapture:      clampScore(asInt(scores[MetricIssueCapture])),
		Sentiment:         clampScore(asInt(scores[MetricSentiment])),
		Csat:              clampScore(asInt(scores[MetricCsat])),
		ResolutionQuality: clampScore(asInt(scores[MetricResolutionQuality])),
	}
}

func normalizeExplanations(raw map[string]any) map[string]string {
	out := make(map[string]string, len(MetricNames))
	for _, metric := range MetricNames {
		out[metric] = asString(raw[metric])
	}
	return out
}

func normalizeReferences(value any) []Reference {
	items, _ := value.([]any)
	out := make([]Reference, 0, len(items))
	for _, item := range items {
		m := asMap(item)
		if m == nil {
			continue
		}
		out = append(out, Reference{
			Title: asString(m["title"]),
			URL:   asString(m["url"]),
		})
	}
	return out
}

func normalizeSnippets(value any) []Snippet {
	items, _ := value.([]any)
	out := make([]Snippet, 0, len(items))
	for _, item := range items {
		m := asMap(item)
		if m == nil {
			continue
		}
		out = append(out, Snippet{
			Start:   asOptionalString(m["start"]),
			End:     asOptionalString(m["end"]),
			Speaker: asString(m["speaker"]),
			Text:    asString(m["text"]),
		})
	}
	return out
}

func normalizeQuiz(value any) []QuizItem {
	items, _ := value.([]any)
	out := make([]QuizItem, 0, len(items))
	for _, item := range items {
		m := asMap(item)
		if m == nil {
			continue
		}
		q := QuizItem{
			Question:    asString(m["question"]),
			Options:     asStringSlice(m["options"]),
			AnswerIndex: asInt(m["answerIndex"]),
			Explanation: asString(m["explanation"]),
		}
		if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
			continue
		}
		out = append(out, q)
	}
	return out
}

func normalizeConfidence(raw map[string]any) *float64 {
	meta := asMap(raw["metadata"])
	value, ok := meta["modelConfidence"]
	if !ok {
		value = raw["modelConfidence"]
	}
	f, ok := asFloat(value)
	if !ok || f < 0 || f > 1 {
		return nil
	}
	return &f
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

func asMap(value any) map[string]any {
	m, _ := value.(map[string]any)
	return m
}

func asString(value any) string {
	s, _ := value.(string)
	return s
}

func asOptionalString(value any) *string {
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func asStringSlice(value any) []string {
	items, _ := value.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asInt(value any) int {
	switch v := value.(type) {
	case float64:
		return int(math.Round(v))
	case int:
		return v
	default:
		return 0
	}
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
