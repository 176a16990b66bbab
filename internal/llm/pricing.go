package llm

// ModelCost holds per-million-token pricing for a model.
// Prices are in USD per 1 million tokens.
type ModelCost struct {
	InputPerMTok  float64 // USD per 1M input tokens
	OutputPerMTok float64 // USD per 1M output tokens
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost returns the pricing for a model ID, or nil if unknown.
// Gemini reports versioned model IDs such as "gemini-1.5-flash-002"; those
// fall back to their unversioned family.
func LookupCost(modelID string) *ModelCost {
	if c, ok := modelCosts[modelID]; ok {
		return &c
	}
	for family, c := range geminiFamilies {
		if len(modelID) > len(family) && modelID[:len(family)+1] == family+"-" {
			return &c
		}
	}
	return nil
}

var geminiFamilies = map[string]ModelCost{
	"gemini-1.5-flash": {0.075, 0.3},
	"gemini-1.5-pro":   {1.25, 5},
}

// modelCosts covers the default model of every provider adapter.
// The Hugging Face serverless tier and local Ollama models are free.
var modelCosts = map[string]ModelCost{
	// Hugging Face
	"HuggingFaceH4/zephyr-7b-beta": {0, 0},

	// Google (Gemini)
	"gemini-1.5-flash":    {0.075, 0.3},
	"gemini-1.5-flash-8b": {0.0375, 0.15},
	"gemini-1.5-pro":      {1.25, 5},
	"gemini-2.0-flash":    {0.1, 0.4},
	"gemini-2.5-flash":    {0.3, 2.5},
	"gemini-2.5-pro":      {1.25, 10},

	// OpenAI
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1":      {2, 8},
	"gpt-4.1-mini": {0.4, 1.6},

	// Anthropic
	"claude-haiku-4-5-20251001": {1, 5},
	"claude-sonnet-4-20250514":  {3, 15},

	// Ollama
	"llama3.1": {0, 0},
}
