package guardrail

import (
	"github.com/tmc/langchaingo/llms"
)

// ModelPricing holds per-model token prices in cost units per million tokens.
type ModelPricing struct {
	// InputPerMTok is the price of one million input tokens.
	InputPerMTok float64

	// OutputPerMTok is the price of one million output tokens.
	OutputPerMTok float64
}

// UsageRecorder feeds model-call usage into a Guard. It extracts token
// counts from a [llms.ContentResponse]'s GenerationInfo, normalizing the
// key spellings different providers use, and converts tokens to cost using
// a per-model pricing table.
//
//	rec := guardrail.NewUsageRecorder(guard).
//	    WithPricing("gpt-4o", guardrail.ModelPricing{
//	        InputPerMTok:  2.50,
//	        OutputPerMTok: 10.00,
//	    })
//
//	resp, err := model.GenerateContent(ctx, messages)
//	if err == nil {
//	    rec.RecordResponse("gpt-4o", resp)
//	}
//
// Models without a pricing entry still have their tokens recorded; only the
// cost contribution is skipped.
type UsageRecorder struct {
	guard   *Guard
	pricing map[string]ModelPricing
}

// NewUsageRecorder creates a UsageRecorder that reports into the guard.
func NewUsageRecorder(guard *Guard) *UsageRecorder {
	return &UsageRecorder{
		guard:   guard,
		pricing: make(map[string]ModelPricing),
	}
}

// WithPricing registers pricing for a model. Returns the recorder for
// chaining.
func (r *UsageRecorder) WithPricing(model string, p ModelPricing) *UsageRecorder {
	r.pricing[model] = p
	return r
}

// RecordResponse extracts token usage from the response and records tokens
// (and cost, when pricing is known for the model) on the guard. Returns the
// extracted input and output token counts.
func (r *UsageRecorder) RecordResponse(
	model string,
	resp *llms.ContentResponse,
) (inputTokens, outputTokens int64) {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return 0, 0
	}
	info := resp.Choices[0].GenerationInfo
	if info == nil {
		return 0, 0
	}

	inputTokens = extractInputTokens(info)
	outputTokens = extractOutputTokens(info)
	r.guard.RecordTokens(inputTokens + outputTokens)

	if p, ok := r.pricing[model]; ok {
		cost := float64(inputTokens)/1e6*p.InputPerMTok +
			float64(outputTokens)/1e6*p.OutputPerMTok
		r.guard.RecordCost(cost)
	}
	return inputTokens, outputTokens
}

// extractInputTokens extracts the input/prompt token count from
// GenerationInfo, handling the key names different providers use.
func extractInputTokens(info map[string]any) int64 {
	// OpenAI / Ollama / Google (compat)
	if v := getInt64FromMap(info, "PromptTokens"); v > 0 {
		return v
	}
	// Anthropic
	if v := getInt64FromMap(info, "InputTokens"); v > 0 {
		return v
	}
	// Google / Bedrock
	if v := getInt64FromMap(info, "input_tokens"); v > 0 {
		return v
	}
	return 0
}

// extractOutputTokens extracts the output/completion token count from
// GenerationInfo.
func extractOutputTokens(info map[string]any) int64 {
	// OpenAI / Ollama / Google (compat)
	if v := getInt64FromMap(info, "CompletionTokens"); v > 0 {
		return v
	}
	// Anthropic
	if v := getInt64FromMap(info, "OutputTokens"); v > 0 {
		return v
	}
	// Google / Bedrock
	if v := getInt64FromMap(info, "output_tokens"); v > 0 {
		return v
	}
	return 0
}

// getInt64FromMap extracts an integer value from a map, handling the
// numeric types different providers put there.
func getInt64FromMap(m map[string]any, key string) int64 {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float32:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
