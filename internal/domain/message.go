package domain

import (
	"strings"
	"time"
)

// Role identifica al autor de un mensaje dentro de la conversacion.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid indica si el rol es uno de los dos aceptados por el backend.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ContentKind distingue las dos variantes de MessageContent.
type ContentKind string

const (
	ContentText       ContentKind = "text"
	ContentStructured ContentKind = "structured"
)

// NavigationLink es un destino renderizable como enlace o sugerencia.
type NavigationLink struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	IsInternal  bool   `json:"isInternal"`
}

// MessageContent es la union etiquetada texto plano | payload estructurado.
// NavigationLinks y Suggestions en nil significan "ausente", no lista vacia.
type MessageContent struct {
	Kind            ContentKind      `json:"kind"`
	Text            string           `json:"text"`
	NavigationLinks []NavigationLink `json:"navigationLinks,omitempty"`
	Suggestions     []string         `json:"suggestions,omitempty"`
}

func PlainContent(text string) MessageContent {
	return MessageContent{Kind: ContentText, Text: text}
}

func StructuredContent(text string, links []NavigationLink, suggestions []string) MessageContent {
	return MessageContent{
		Kind:            ContentStructured,
		Text:            text,
		NavigationLinks: links,
		Suggestions:     suggestions,
	}
}

// IsStructured reporta si el contenido lleva datos de UI.
func (c MessageContent) IsStructured() bool {
	return c.Kind == ContentStructured
}

// PlainText aplana el contenido al texto que se envia al backend.
func (c MessageContent) PlainText() string {
	return c.Text
}

// ChatMessage es una entrada inmutable del log de la conversacion.
type ChatMessage struct {
	ID        string         `json:"id"`
	Role      Role           `json:"role"`
	Content   MessageContent `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
}

// WireMessage es la proyeccion {role, content} que viaja al endpoint de chat.
type WireMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest es el cuerpo de POST /api/chat.
type ChatRequest struct {
	Messages      []WireMessage `json:"messages"`
	LearningStyle LearningStyle `json:"learningStyle,omitempty"`
}

// ProjectMessages convierte el log en pares {role, content} de texto plano.
func ProjectMessages(log []ChatMessage) []WireMessage {
	out := make([]WireMessage, 0, len(log))
	for _, m := range log {
		out = append(out, WireMessage{Role: m.Role, Content: m.Content.PlainText()})
	}
	return out
}

// HasUserText indica si el texto tiene contenido luego de recortar espacios.
func HasUserText(text string) bool {
	return strings.TrimSpace(text) != ""
}
