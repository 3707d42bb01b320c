package guardrail

// Model identifier constants for the built-in pricing table.
const (
	// OpenAI
	ModelOpenAIGPT4o     = "gpt-4o"
	ModelOpenAIGPT4oMini = "gpt-4o-mini"
	ModelOpenAIGPT41     = "gpt-4.1"
	ModelOpenAIGPT41Mini = "gpt-4.1-mini"

	// Anthropic
	ModelAnthropicSonnet = "claude-sonnet-4-5"
	ModelAnthropicHaiku  = "claude-haiku-4-5"
)

// DefaultPricing returns list prices (USD per million tokens) for common
// models. Prices drift; override with [UsageRecorder.WithPricing] when
// accuracy matters for your cost ceiling.
func DefaultPricing() map[string]ModelPricing {
	return map[string]ModelPricing{
		ModelOpenAIGPT4o:     {InputPerMTok: 2.50, OutputPerMTok: 10.00},
		ModelOpenAIGPT4oMini: {InputPerMTok: 0.15, OutputPerMTok: 0.60},
		ModelOpenAIGPT41:     {InputPerMTok: 2.00, OutputPerMTok: 8.00},
		ModelOpenAIGPT41Mini: {InputPerMTok: 0.40, OutputPerMTok: 1.60},
		ModelAnthropicSonnet: {InputPerMTok: 3.00, OutputPerMTok: 15.00},
		ModelAnthropicHaiku:  {InputPerMTok: 1.00, OutputPerMTok: 5.00},
	}
}

// WithDefaultPricing loads the built-in pricing table into the recorder.
// Returns the recorder for chaining.
func (r *UsageRecorder) WithDefaultPricing() *UsageRecorder {
	for model, p := range DefaultPricing() {
		r.pricing[model] = p
	}
	return r
}
