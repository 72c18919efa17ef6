package analyses

import "time"

// Metric names of the five fixed quality scores.
const (
	MetricCallOpening       = "callOpening"
	MetricIssueCapture      = "issueCapture"
	MetricSentiment         = "sentiment"
	MetricCsat              = "csat"
	MetricResolutionQuality = "resolutionQuality"
)

// MetricNames lists the five metrics in display order.
var MetricNames = []string{
	MetricCallOpening,
	MetricIssueCapture,
	MetricSentiment,
	MetricCsat,
	MetricResolutionQuality,
}

// QualityScores holds the five 0-10 integer metrics.
type QualityScores struct {
	CallOpening       int `json:"callOpening"`
	IssueCapture      int `json:"issueCapture"`
	Sentiment         int `json:"sentiment"`
	Csat              int `json:"csat"`
	ResolutionQuality int `json:"resolutionQuality"`
}

// Reference is a suggested learning resource.
type Reference struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Snippet is a short call excerpt; start and end stay null when the
// transcript has no timestamps.
type Snippet struct {
	Start   *string `json:"start"`
	End     *string `json:"end"`
	Speaker string  `json:"speaker"`
	Text    string  `json:"text"`
}

// QuizItem is one multiple-choice coaching question. AnswerIndex always
// indexes into Options for persisted records.
type QuizItem struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answerIndex"`
	Explanation string   `json:"explanation"`
}

// Metadata records provenance of an analysis. Model is the identifier of
// the provider that actually produced it, or "none" for the degraded
// default.
type Metadata struct {
	GeneratedAt     time.Time `json:"generatedAt"`
	Model           string    `json:"model"`
	ModelConfidence *float64  `json:"modelConfidence"`
}

// Analysis is one immutable call-quality evaluation of an audio record.
// Re-analysis creates a new record; existing records are never mutated.
// Field names and nesting are a client compatibility contract.
type Analysis struct {
	ID                 string            `json:"id"`
	AudioID            string            `json:"audioId"`
	QualityScores      QualityScores     `json:"qualityScores"`
	MetricExplanations map[string]string `json:"metricExplanations"`
	CoachingPlanText   string            `json:"coachingPlanText"`
	CoachingActions    []string          `json:"coachingActions"`
	References         []Reference       `json:"references"`
	Snippets           []Snippet         `json:"snippets"`
	Quiz               []QuizItem        `json:"quiz"`
	CompletionCriteria string            `json:"completionCriteria"`
	Metadata           Metadata          `json:"metadata"`
	AnalyzedAt         time.Time         `json:"analyzedAt"`
}
