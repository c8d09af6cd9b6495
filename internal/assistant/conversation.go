package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"site-assistant/internal/directive"
	"site-assistant/internal/domain"
	"site-assistant/internal/repository"
)

// FallbackMessage es el unico mensaje mostrado cuando un turno falla.
const FallbackMessage = "I'm sorry, I'm having trouble responding right now. Please try again."

// Conversation es el estado de una sesion de chat: log de mensajes, indicador
// de espera, buffer de entrada y preferencia. Un solo turno en vuelo a la vez;
// los envios concurrentes se descartan.
type Conversation struct {
	backend BackendClient
	decoder *directive.Decoder
	prefs   repository.PreferenceRepository
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string

	suspended atomic.Bool

	mu         sync.RWMutex
	messages   []domain.ChatMessage
	input      string
	preference domain.LearningStyle
	closed     bool
}

// NewConversation inicia la sesion y lee la preferencia persistida una vez.
func NewConversation(
	ctx context.Context,
	backend BackendClient,
	decoder *directive.Decoder,
	prefs repository.PreferenceRepository,
	logger *zap.Logger,
) *Conversation {
	if logger == nil {
		logger = zap.NewNop()
	}
	if decoder == nil {
		decoder = directive.NewDecoder(logger, nil)
	}
	if prefs == nil {
		prefs = repository.NewMemoryPreferenceRepository()
	}
	c := &Conversation{
		backend: backend,
		decoder: decoder,
		prefs:   prefs,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}

	style, ok, err := prefs.Load(ctx)
	if err != nil {
		logger.Warn("load preference failed", zap.Error(err))
	} else if ok {
		c.preference = style
	}
	return c
}

// Send ejecuta un turno completo y devuelve false si el envio fue descartado
// (texto vacio, turno en vuelo o conversacion cerrada). Nunca devuelve error:
// las fallas terminan en el mensaje de fallback.
func (c *Conversation) Send(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if !c.suspended.CompareAndSwap(false, true) {
		return false
	}
	defer c.suspended.Store(false)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.messages = append(c.messages, domain.ChatMessage{
		ID:        c.newID(),
		Role:      domain.RoleUser,
		Content:   domain.PlainContent(text),
		Timestamp: c.now(),
	})
	c.input = ""
	req := domain.ChatRequest{
		Messages:      domain.ProjectMessages(c.messages),
		LearningStyle: c.preference,
	}
	c.mu.Unlock()

	content, err := c.exchange(ctx, req)
	if err != nil {
		c.logger.Warn("assistant turn failed", zap.Error(err))
		content = domain.PlainContent(FallbackMessage)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.logger.Debug("dropping late assistant reply after close")
		return true
	}
	c.messages = append(c.messages, domain.ChatMessage{
		ID:        c.newID(),
		Role:      domain.RoleAssistant,
		Content:   content,
		Timestamp: c.now(),
	})
	return true
}

// SendInput envia el contenido del buffer de entrada.
func (c *Conversation) SendInput(ctx context.Context) bool {
	return c.Send(ctx, c.Input())
}

// SendVoice dicta un mensaje con la capacidad de voz y lo envia como texto.
func (c *Conversation) SendVoice(ctx context.Context, voice VoiceInput) (bool, error) {
	if voice == nil || !voice.Available() {
		return false, ErrVoiceNotSupported
	}
	text, err := voice.Listen(ctx)
	if err != nil {
		return false, fmt.Errorf("listen: %w", err)
	}
	c.SetInput(text)
	return c.SendInput(ctx), nil
}

func (c *Conversation) exchange(ctx context.Context, req domain.ChatRequest) (domain.MessageContent, error) {
	if c.backend == nil {
		return domain.MessageContent{}, fmt.Errorf("no backend configured")
	}
	body, err := c.backend.Open(ctx, req)
	if err != nil {
		return domain.MessageContent{}, fmt.Errorf("open stream: %w", err)
	}
	defer body.Close()

	raw, err := ReadStream(ctx, body)
	if err != nil {
		return domain.MessageContent{}, err
	}
	return c.decoder.Decode(raw), nil
}

// Messages devuelve una copia del log en orden de llegada.
func (c *Conversation) Messages() []domain.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Suspended indica si hay un turno esperando respuesta del backend.
func (c *Conversation) Suspended() bool {
	return c.suspended.Load()
}

func (c *Conversation) SetInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = text
}

func (c *Conversation) Input() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.input
}

// Preference devuelve el estilo actual y si fue definido por el usuario.
func (c *Conversation) Preference() (domain.LearningStyle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.preference, c.preference != ""
}

// SetPreference valida, persiste y aplica el estilo a los proximos turnos.
func (c *Conversation) SetPreference(ctx context.Context, style domain.LearningStyle) error {
	if !style.Valid() {
		return domain.ErrInvalidPreference
	}
	if err := c.prefs.Save(ctx, style); err != nil {
		return fmt.Errorf("save preference: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preference = style
	return nil
}

// Close termina la sesion; un turno que resuelva despues no se aplica.
func (c *Conversation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
