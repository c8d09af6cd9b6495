package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"site-assistant/internal/directive"
	"site-assistant/internal/domain"
	"site-assistant/internal/llm"
	"site-assistant/internal/metrics"
	"site-assistant/internal/tools"
)

var (
	ErrAssistantNotConfigured = errors.New("assistant service not configured")
	ErrInvalidChatRequest     = errors.New("invalid chat request")
)

const defaultMaxToolRounds = 4

// AssistantService orquesta un turno del backend: prompt, rondas de herramientas
// y streaming del texto con el bloque de directiva al final.
type AssistantService struct {
	llmClient     llm.LLMClient
	registry      *tools.Registry
	promptBuilder AssistantPromptBuilder
	metrics       *metrics.Metrics
	logger        *zap.Logger
	maxToolRounds int
	history       HistoryWindow
}

func NewAssistantService(
	llmClient llm.LLMClient,
	registry *tools.Registry,
	promptBuilder AssistantPromptBuilder,
	m *metrics.Metrics,
	logger *zap.Logger,
	maxToolRounds int,
) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxToolRounds <= 0 {
		maxToolRounds = defaultMaxToolRounds
	}
	return &AssistantService{
		llmClient:     llmClient,
		registry:      registry,
		promptBuilder: promptBuilder,
		metrics:       m,
		logger:        logger,
		maxToolRounds: maxToolRounds,
		history:       HistoryWindow{Max: defaultHistoryMessages},
	}
}

// WithHistoryLimit cambia cuantos mensajes del historial llegan al LLM.
func (s *AssistantService) WithHistoryLimit(max int) *AssistantService {
	s.history = HistoryWindow{Max: max}
	return s
}

// ValidateChatRequest comprueba roles, que haya mensajes y el estilo opcional.
func ValidateChatRequest(req domain.ChatRequest) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("%w: no messages", ErrInvalidChatRequest)
	}
	for i, m := range req.Messages {
		if !m.Role.Valid() {
			return fmt.Errorf("%w: message %d has role %q", ErrInvalidChatRequest, i, m.Role)
		}
	}
	if req.LearningStyle != "" && !req.LearningStyle.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidChatRequest, domain.ErrInvalidPreference)
	}
	return nil
}

// StreamReply genera la respuesta y la entrega por emit en orden. Si alguna
// herramienta de navegacion devolvio uiData, el ultimo se anexa como directiva.
func (s *AssistantService) StreamReply(ctx context.Context, req domain.ChatRequest, emit func(string) error) error {
	if s == nil || s.llmClient == nil || s.registry == nil {
		return ErrAssistantNotConfigured
	}
	if err := ValidateChatRequest(req); err != nil {
		return err
	}

	started := time.Now()
	s.metrics.TurnStarted()
	defer s.metrics.TurnFinished()

	wrote := false
	send := func(chunk string) error {
		if chunk == "" {
			return nil
		}
		if err := emit(chunk); err != nil {
			return err
		}
		wrote = true
		s.metrics.AddStreamBytes(len(chunk))
		return nil
	}

	msgs := make([]llm.Message, 0, len(req.Messages)+1)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: s.promptBuilder.BuildSystemPrompt(req.LearningStyle)})
	for _, m := range s.history.Apply(req.Messages) {
		msgs = append(msgs, llm.Message{Role: string(m.Role), Content: m.Content})
	}

	var ui *domain.UIData
	for round := 0; round < s.maxToolRounds; round++ {
		var defs []llm.ToolDefinition
		// La ultima ronda va sin herramientas para forzar una respuesta de texto.
		if round < s.maxToolRounds-1 {
			defs = s.registry.Definitions()
		}

		res, err := s.llmClient.StreamChat(ctx, llm.ChatRequest{Messages: msgs, Tools: defs}, send)
		if err != nil {
			s.metrics.RecordTurn(metrics.OutcomeError, started)
			return fmt.Errorf("llm stream round %d: %w", round, err)
		}
		if len(res.ToolCalls) == 0 {
			break
		}

		msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: res.Content, ToolCalls: res.ToolCalls})
		for _, call := range res.ToolCalls {
			content, callUI := s.runTool(ctx, call)
			if callUI != nil {
				ui = callUI
			}
			msgs = append(msgs, llm.Message{Role: llm.RoleTool, ToolCallID: call.ID, Content: content})
		}
	}

	if ui != nil {
		block, err := directive.Encode(*ui)
		if err != nil {
			s.metrics.RecordTurn(metrics.OutcomeError, started)
			return err
		}
		if wrote {
			block = " " + block
		}
		if err := send(block); err != nil {
			s.metrics.RecordTurn(metrics.OutcomeError, started)
			return fmt.Errorf("emit ui data: %w", err)
		}
	}

	s.metrics.RecordTurn(metrics.OutcomeOK, started)
	return nil
}

// runTool ejecuta una llamada y devuelve el JSON para el mensaje "tool".
// Los errores de herramienta se informan al modelo, no al cliente.
func (s *AssistantService) runTool(ctx context.Context, call llm.ToolCall) (string, *domain.UIData) {
	name := call.Function.Name
	result, err := s.registry.Call(ctx, name, json.RawMessage(call.Function.Arguments))
	if err != nil {
		s.logger.Warn("tool call failed", zap.String("tool", name), zap.Error(err))
		s.metrics.RecordToolCall(name, metrics.OutcomeError)
		return fmt.Sprintf(`{"success":false,"error":%q}`, err.Error()), nil
	}

	outcome := metrics.OutcomeOK
	if !result.Succeeded() {
		outcome = metrics.OutcomeMissed
	}
	s.metrics.RecordToolCall(name, outcome)

	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("marshal tool result failed", zap.String("tool", name), zap.Error(err))
		return `{"success":false}`, nil
	}
	return string(payload), result.UI()
}
