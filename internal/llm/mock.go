package llm

import (
	"context"
	"sync"
)

// MockRound es una ronda guionada: deltas de texto, tool calls y error opcional.
type MockRound struct {
	Deltas    []string
	ToolCalls []ToolCall
	Err       error
}

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	mu       sync.Mutex
	Rounds   []MockRound
	Requests []ChatRequest
}

func (m *MockClient) StreamChat(_ context.Context, req ChatRequest, onDelta func(string) error) (ChatResult, error) {
	m.mu.Lock()
	idx := len(m.Requests)
	m.Requests = append(m.Requests, req)
	var round MockRound
	if idx < len(m.Rounds) {
		round = m.Rounds[idx]
	}
	m.mu.Unlock()

	if round.Err != nil {
		return ChatResult{}, round.Err
	}
	var content string
	for _, d := range round.Deltas {
		content += d
		if onDelta != nil {
			if err := onDelta(d); err != nil {
				return ChatResult{}, err
			}
		}
	}
	finish := "stop"
	if len(round.ToolCalls) > 0 {
		finish = "tool_calls"
	}
	return ChatResult{Content: content, ToolCalls: round.ToolCalls, FinishReason: finish}, nil
}
