package service

import "site-assistant/internal/domain"

const defaultHistoryMessages = 20

// HistoryWindow recorta el historial enviado al LLM a los ultimos Max mensajes.
// La ventana siempre empieza en un mensaje de usuario. Max <= 0 no recorta.
type HistoryWindow struct {
	Max int
}

func (w HistoryWindow) Apply(messages []domain.WireMessage) []domain.WireMessage {
	if w.Max <= 0 || len(messages) <= w.Max {
		return messages
	}
	out := messages[len(messages)-w.Max:]
	for len(out) > 1 && out[0].Role != domain.RoleUser {
		out = out[1:]
	}
	return out
}
