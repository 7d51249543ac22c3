package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/segaai/testcase-backend/internal/config"
	"github.com/segaai/testcase-backend/internal/entity"
	"github.com/segaai/testcase-backend/internal/integration/common"
	pkghttp "github.com/segaai/testcase-backend/pkg/http"
	"go.uber.org/zap"
)

// Per-model output caps. The lighter-weight gemma model answers with a
// smaller budget than the qwen family.
const (
	maxTokensGemma   = 16000
	maxTokensDefault = 32000
)

// selfHealInstruction is appended to the prompt when the model's first
// answer did not parse as JSON after sanitization.
const selfHealInstruction = "\nПредыдущий ответ содержал некорректный JSON или дополнительные теги. " +
	"Верните ТОЛЬКО валидный JSON с полным кодом теста, без тегов <think> или другого текста."

var (
	thinkTagRe  = regexp.MustCompile(`(?s)<think>.*?</think>`)
	jsonFenceRe = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	bareFenceRe = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// Connector is the gateway to the remote inference service. It speaks
// the chat-completion wire contract and guarantees a best-effort
// syntactically valid JSON answer via a single self-heal re-prompt.
type Connector struct {
	config    config.LLMConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) (*Connector, error) {
	base, err := common.NewBaseConnector(cfg.HTTPClientConfig, cfg.Retry.ToRetryOptions(), logger)
	if err != nil {
		return nil, err
	}

	return &Connector{
		connector: base,
		config:    cfg,
		logger:    logger,
	}, nil
}

// Call sends the prompt to the configured endpoint of the given model
// and returns the sanitized textual answer. When the sanitized answer
// is not well-formed JSON the call is re-issued exactly once with an
// explicit JSON-only instruction; if the retry is still invalid the
// text is returned as-is and the caller's parsing surfaces the error.
func (c *Connector) Call(ctx context.Context, prompt, model string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", entity.ErrEmptyPrompt
	}

	if strings.TrimSpace(model) == "" {
		return "", entity.ErrEmptyModel
	}

	endpoint, ok := c.config.ModelEndpoints[model]
	if !ok {
		return "", fmt.Errorf("%w: %s", entity.ErrInvalidModel, model)
	}

	answer, err := c.callOnce(ctx, prompt, model, endpoint)
	if err != nil {
		return "", err
	}

	if !json.Valid([]byte(answer)) {
		ctxzap.Warn(ctx, "LLM returned invalid JSON, re-prompting once",
			zap.String("model", model),
			zap.Int("answer_length", len(answer)),
		)

		answer, err = c.callOnce(ctx, prompt+selfHealInstruction, model, endpoint)
		if err != nil {
			return "", err
		}
	}

	return answer, nil
}

func (c *Connector) callOnce(ctx context.Context, prompt, model, endpoint string) (string, error) {
	maxTokens := maxTokensDefault
	if model == entity.ModelGemma27B {
		maxTokens = maxTokensGemma
	}
	if c.config.MaxTokens < maxTokens {
		maxTokens = c.config.MaxTokens
	}

	req := entity.LLMChatRequest{
		Model:       model,
		Messages:    []entity.LLMChatMessage{{Role: "user", Content: prompt}},
		Stream:      false,
		MaxTokens:   maxTokens,
		Temperature: c.config.Temperature,
		ThinkMode:   false,
	}

	ctxzap.Info(ctx, "sending LLM request",
		zap.String("model", model),
		zap.String("endpoint", endpoint),
		zap.Int("max_tokens", maxTokens),
	)

	var resp entity.LLMChatResponse
	if err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, req, &resp); err != nil {
		return "", fmt.Errorf("call LLM: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", entity.ErrLLMEmptyAnswer
	}

	ctxzap.Info(ctx, "LLM response received",
		zap.String("model", model),
		zap.Int("content_length", len(resp.Choices[0].Message.Content)),
	)

	return Sanitize(resp.Choices[0].Message.Content), nil
}

// Sanitize removes reasoning blocks and code-fence wrappers from a raw
// model answer: <think>...</think> blocks are dropped, ```json and
// bare ``` fences are unwrapped, and the result is trimmed.
func Sanitize(input string) string {
	result := thinkTagRe.ReplaceAllString(input, "")
	result = jsonFenceRe.ReplaceAllString(result, "$1")
	result = bareFenceRe.ReplaceAllString(result, "$1")
	return strings.TrimSpace(result)
}
