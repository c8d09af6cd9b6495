package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// LLMClient define la interfaz para generar respuestas en streaming con un LLM.
type LLMClient interface {
	StreamChat(ctx context.Context, req ChatRequest, onDelta func(string) error) (ChatResult, error)
}

var ErrEmptyStream = errors.New("llm empty stream")

// HTTPClient implementa LLMClient usando la API de chat completions compatible con OpenAI.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient construye un cliente HTTP apuntando a la API de chat completions.
func NewHTTPClient(baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// StreamChat envia la conversacion con stream=true, reenvia cada delta de texto a
// onDelta y acumula las llamadas a herramientas hasta recibir [DONE].
func (c *HTTPClient) StreamChat(ctx context.Context, req ChatRequest, onDelta func(string) error) (ChatResult, error) {
	reqBody := completionRequest{
		Model:    c.model,
		Messages: req.Messages,
		Tools:    req.Tools,
		Stream:   true,
	}
	if len(req.Tools) > 0 {
		reqBody.ToolChoice = "auto"
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return ChatResult{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return ChatResult{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return ChatResult{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("llm error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(errBody)),
		)
		return ChatResult{}, fmt.Errorf("llm http error: status=%d", resp.StatusCode)
	}

	return readSSE(resp.Body, onDelta)
}

// readSSE consume el stream "data: {...}" hasta [DONE] o EOF.
func readSSE(body io.Reader, onDelta func(string) error) (ChatResult, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		content  strings.Builder
		calls    = map[int]*ToolCall{}
		finish   string
		sawChunk bool
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return ChatResult{}, fmt.Errorf("unmarshal chunk: %w", err)
		}
		if chunk.Error != nil {
			return ChatResult{}, fmt.Errorf("llm api error: %s", chunk.Error.Message)
		}
		sawChunk = true

		for _, choice := range chunk.Choices {
			if choice.Delta.Content != "" {
				content.WriteString(choice.Delta.Content)
				if onDelta != nil {
					if err := onDelta(choice.Delta.Content); err != nil {
						return ChatResult{}, fmt.Errorf("emit delta: %w", err)
					}
				}
			}
			for _, tc := range choice.Delta.ToolCalls {
				acc, ok := calls[tc.Index]
				if !ok {
					acc = &ToolCall{Type: "function"}
					calls[tc.Index] = acc
				}
				if tc.ID != "" {
					acc.ID = tc.ID
				}
				if tc.Function.Name != "" {
					acc.Function.Name += tc.Function.Name
				}
				acc.Function.Arguments += tc.Function.Arguments
			}
			if choice.FinishReason != "" {
				finish = choice.FinishReason
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return ChatResult{}, fmt.Errorf("read stream: %w", err)
	}
	if !sawChunk {
		return ChatResult{}, ErrEmptyStream
	}

	indexes := make([]int, 0, len(calls))
	for i := range calls {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	toolCalls := make([]ToolCall, 0, len(indexes))
	for _, i := range indexes {
		toolCalls = append(toolCalls, *calls[i])
	}

	return ChatResult{
		Content:      content.String(),
		ToolCalls:    toolCalls,
		FinishReason: finish,
	}, nil
}

type completionRequest struct {
	Model      string           `json:"model"`
	Messages   []Message        `json:"messages"`
	Tools      []ToolDefinition `json:"tools,omitempty"`
	ToolChoice string           `json:"tool_choice,omitempty"`
	Stream     bool             `json:"stream"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
