package metrics

// Token count sources.
const (
	UsageReported  = "reported"
	UsageEstimated = "estimated"
)

// TokenUsage captures LLM token counts used to satisfy a request.
// Source is UsageReported when the provider returned the counts and UsageEstimated when they were tokenized locally.
type TokenUsage struct {
	PromptTokens     int    `json:"promptTokens"`
	CompletionTokens int    `json:"completionTokens,omitempty"`
	TotalTokens      int    `json:"totalTokens"`
	Source           string `json:"source,omitempty"`
}

// NewTokenUsage builds a usage record and counts it on the token metric.
// A zero total is filled from prompt plus completion.
func NewTokenUsage(prompt, completion, total int, source string) *TokenUsage {
	if total <= 0 {
		total = prompt + completion
	}
	usage := &TokenUsage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      total,
		Source:           source,
	}
	if !usage.IsZero() {
		llmTokensTotal.WithLabelValues("prompt", source).Add(float64(prompt))
		llmTokensTotal.WithLabelValues("completion", source).Add(float64(completion))
	}
	return usage
}

// IsZero reports whether usage data is absent.
func (u TokenUsage) IsZero() bool {
	return u.PromptTokens == 0 && u.CompletionTokens == 0 && u.TotalTokens == 0
}
