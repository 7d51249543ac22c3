package entity

import "encoding/json"

// Recognized model identifiers (closed set, validated at the edge).
const (
	ModelQwen32B  = "qwen3-32b-awq"
	ModelQwen30B  = "qwen3-30b-awq-4bit"
	ModelGemma27B = "gemma-3-27b-it-bnb-4bit"
	ModelQwenDBRA = "dbra-rag-qwen3-32b-awq"
)

func SupportedModels() []string {
	return []string{ModelQwen32B, ModelQwen30B, ModelGemma27B, ModelQwenDBRA}
}

func IsSupportedModel(model string) bool {
	switch model {
	case ModelQwen32B, ModelQwen30B, ModelGemma27B, ModelQwenDBRA:
		return true
	default:
		return false
	}
}

// LLMChatMessage is a single message of the chat-style request.
type LLMChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMChatRequest is the wire payload sent to the inference endpoint.
type LLMChatRequest struct {
	Model       string           `json:"model"`
	Messages    []LLMChatMessage `json:"messages"`
	Stream      bool             `json:"stream"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
	ThinkMode   bool             `json:"think_mode"`
}

// LLMChatResponse is the inference endpoint's response envelope.
type LLMChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerationEnvelope is the two-part answer the generation prompt
// mandates: the test case object and the generated automation code.
// TestCode is a pointer so an absent key can be told apart from an
// empty string: absence breaks the answer contract, emptiness is a
// quality problem the validation loop handles.
type GenerationEnvelope struct {
	TestCase json.RawMessage `json:"testCase"`
	TestCode *string         `json:"testCode"`
}

// ValidationVerdict is the semantic check's answer shape.
type ValidationVerdict struct {
	IsValid        bool    `json:"isValid"`
	Recommendation *string `json:"recommendation"`
}
