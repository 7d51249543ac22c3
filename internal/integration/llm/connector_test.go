package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segaai/testcase-backend/internal/config"
	"github.com/segaai/testcase-backend/internal/entity"
	pkgRetry "github.com/segaai/testcase-backend/internal/pkg/retry"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain json untouched",
			input: `{"isValid": true}`,
			want:  `{"isValid": true}`,
		},
		{
			name:  "think block removed",
			input: "<think>надо подумать</think>{\"isValid\": true}",
			want:  `{"isValid": true}`,
		},
		{
			name:  "json fence unwrapped",
			input: "```json\n{\"isValid\": true}\n```",
			want:  `{"isValid": true}`,
		},
		{
			name:  "bare fence unwrapped",
			input: "```\n{\"isValid\": true}\n```",
			want:  `{"isValid": true}`,
		},
		{
			name:  "think block followed by fenced json",
			input: "<think>\nмногострочное\nрассуждение\n</think>\n```json\n{\"testCode\": \"x\"}\n```",
			want:  `{"testCode": "x"}`,
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  \n {\"a\": 1} \n ",
			want:  `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

// chatServer records incoming chat requests and replies with the
// scripted answers in order, repeating the last one.
type chatServer struct {
	mu       sync.Mutex
	requests []entity.LLMChatRequest
	answers  []string
}

func (s *chatServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req entity.LLMChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		s.mu.Lock()
		s.requests = append(s.requests, req)
		idx := len(s.requests) - 1
		if idx >= len(s.answers) {
			idx = len(s.answers) - 1
		}
		answer := s.answers[idx]
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%s}}]}`, mustQuote(t, answer))
	}
}

func mustQuote(t *testing.T, s string) string {
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

func newTestConnector(t *testing.T, baseURL string) *Connector {
	cfg := config.LLMConnectorConfig{
		HTTPClientConfig: config.HTTPClientConfig{
			RequestTimeout:        5 * time.Second,
			ConnTimeout:           time.Second,
			KeepAlive:             time.Second,
			IdleConnTimeout:       time.Second,
			ResponseHeaderTimeout: 5 * time.Second,
			Url:                   baseURL,
		},
		ModelEndpoints: map[string]string{
			entity.ModelQwen32B:  "/v1/chat/completions",
			entity.ModelGemma27B: "/v1/chat/completions",
		},
		MaxTokens:   100000,
		Temperature: 0.7,
		Retry:       *pkgRetry.DefaultRetryConfig(),
	}

	connector, err := NewConnector(cfg, zap.NewNop())
	require.NoError(t, err)
	return connector
}

func TestCall_ReturnsSanitizedAnswer(t *testing.T) {
	server := &chatServer{answers: []string{"```json\n{\"isValid\": true, \"recommendation\": null}\n```"}}
	srv := httptest.NewServer(server.handler(t))
	defer srv.Close()

	connector := newTestConnector(t, srv.URL)

	answer, err := connector.Call(context.Background(), "Проверьте тест-кейс: {}", entity.ModelQwen32B)
	require.NoError(t, err)
	assert.JSONEq(t, `{"isValid": true, "recommendation": null}`, answer)
	assert.Len(t, server.requests, 1)
}

func TestCall_SelfHealsOnInvalidJSON(t *testing.T) {
	server := &chatServer{answers: []string{
		"Вот ваш тест-кейс: конечно же без JSON",
		`{"isValid": false, "recommendation": "Добавьте шаги"}`,
	}}
	srv := httptest.NewServer(server.handler(t))
	defer srv.Close()

	connector := newTestConnector(t, srv.URL)

	answer, err := connector.Call(context.Background(), "Сгенерируйте тест-кейс", entity.ModelQwen32B)
	require.NoError(t, err)
	assert.JSONEq(t, `{"isValid": false, "recommendation": "Добавьте шаги"}`, answer)

	require.Len(t, server.requests, 2)
	second := server.requests[1].Messages[0].Content
	assert.Contains(t, second, "Сгенерируйте тест-кейс")
	assert.Contains(t, second, "Верните ТОЛЬКО валидный JSON")
}

func TestCall_SelfHealGivesUpAfterOneRetry(t *testing.T) {
	server := &chatServer{answers: []string{"опять не JSON"}}
	srv := httptest.NewServer(server.handler(t))
	defer srv.Close()

	connector := newTestConnector(t, srv.URL)

	answer, err := connector.Call(context.Background(), "Сгенерируйте тест-кейс", entity.ModelQwen32B)
	require.NoError(t, err)
	assert.Equal(t, "опять не JSON", answer)
	assert.Len(t, server.requests, 2)
}

func TestCall_MaxTokensPerModel(t *testing.T) {
	server := &chatServer{answers: []string{`{"ok": true}`}}
	srv := httptest.NewServer(server.handler(t))
	defer srv.Close()

	connector := newTestConnector(t, srv.URL)

	_, err := connector.Call(context.Background(), "Сгенерируйте тест-кейс", entity.ModelQwen32B)
	require.NoError(t, err)
	_, err = connector.Call(context.Background(), "Сгенерируйте тест-кейс", entity.ModelGemma27B)
	require.NoError(t, err)

	require.Len(t, server.requests, 2)
	assert.Equal(t, maxTokensDefault, server.requests[0].MaxTokens)
	assert.Equal(t, maxTokensGemma, server.requests[1].MaxTokens)
	assert.False(t, server.requests[0].Stream)
	assert.False(t, server.requests[0].ThinkMode)
}

func TestCall_Validation(t *testing.T) {
	connector := newTestConnector(t, "http://127.0.0.1:0")

	_, err := connector.Call(context.Background(), "  ", entity.ModelQwen32B)
	assert.ErrorIs(t, err, entity.ErrEmptyPrompt)

	_, err = connector.Call(context.Background(), "промпт", "")
	assert.ErrorIs(t, err, entity.ErrEmptyModel)

	_, err = connector.Call(context.Background(), "промпт", "gpt-4o")
	assert.ErrorIs(t, err, entity.ErrInvalidModel)
}

func TestCall_EmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer srv.Close()

	connector := newTestConnector(t, srv.URL)

	_, err := connector.Call(context.Background(), "промпт", entity.ModelQwen32B)
	assert.ErrorIs(t, err, entity.ErrLLMEmptyAnswer)
}
