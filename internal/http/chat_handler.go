package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"site-assistant/internal/domain"
	"site-assistant/internal/service"
)

// ChatStreamer genera la respuesta del asistente en fragmentos.
type ChatStreamer interface {
	StreamReply(ctx context.Context, req domain.ChatRequest, emit func(string) error) error
}

// ChatHandler atiende POST /api/chat.
type ChatHandler struct {
	logger    *zap.Logger
	assistant ChatStreamer
}

func NewChatHandler(logger *zap.Logger, assistant ChatStreamer) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{logger: logger, assistant: assistant}
}

// PostChat transmite la respuesta como text/plain. Los headers se escriben con
// el primer fragmento; un error anterior responde JSON, uno posterior aborta la conexion.
func (h *ChatHandler) PostChat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := service.ValidateChatRequest(req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	started := false
	emit := func(chunk string) error {
		if !started {
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.Header("Cache-Control", "no-cache")
			c.Header("X-Content-Type-Options", "nosniff")
			c.Status(http.StatusOK)
			started = true
		}
		if _, err := c.Writer.WriteString(chunk); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	err := h.assistant.StreamReply(c.Request.Context(), req, emit)
	if err == nil {
		if !started {
			// Respuesta vacia: el cliente igual recibe un cuerpo de texto.
			c.Data(http.StatusOK, "text/plain; charset=utf-8", nil)
		}
		return
	}

	if started {
		// Sin el chunk final el cliente ve un cuerpo truncado (unexpected EOF)
		// y trata el turno como fallido en vez de aceptar texto parcial.
		h.logger.Warn("chat stream interrupted, aborting connection", zap.Error(err))
		panic(http.ErrAbortHandler)
	}
	switch {
	case errors.Is(err, service.ErrInvalidChatRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAssistantNotConfigured):
		h.logger.Error("assistant not configured", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "assistant unavailable"})
	case errors.Is(err, context.Canceled):
		h.logger.Info("chat request cancelled by client")
	default:
		h.logger.Error("chat reply failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not generate reply"})
	}
}
