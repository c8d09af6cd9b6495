package service

import (
	"fmt"
	"strings"

	"site-assistant/internal/domain"
	"site-assistant/internal/tools"
)

// AssistantPromptBuilder construye el prompt de sistema del asistente del sitio.
type AssistantPromptBuilder struct {
	SiteName string
}

var stylePrompts = map[domain.LearningStyle]string{
	domain.StyleVisual:      "The visitor prefers visual explanations: favour short bullet lists, structure and pointers to pages with images, galleries or videos.",
	domain.StyleAuditory:    "The visitor prefers auditory explanations: write in a warm, conversational tone, as if speaking aloud, and mention events or talks they could attend.",
	domain.StyleReading:     "The visitor prefers reading and writing: give clear, well-organised written answers and point to documents, reports and news articles.",
	domain.StyleKinesthetic: "The visitor prefers hands-on learning: suggest concrete actions such as volunteering, attending an event or donating, with practical next steps.",
}

// BuildSystemPrompt arma el prompt completo que se envia al LLM.
func (b AssistantPromptBuilder) BuildSystemPrompt(style domain.LearningStyle) string {
	var sb strings.Builder

	name := strings.TrimSpace(b.SiteName)
	if name == "" {
		name = "our organisation"
	}

	// 1. Identidad
	sb.WriteString(fmt.Sprintf("You are the friendly website assistant for %s, a non-profit organisation. ", name))
	sb.WriteString("You help visitors find information about programmes, the team, events, news and ways to donate or get involved.\n\n")

	// 2. Herramientas
	sb.WriteString("=== TOOLS ===\n")
	sb.WriteString(fmt.Sprintf("- Call %s when the visitor wants to go to, open or find a specific page. Pass the key words as \"query\".\n", tools.NavigateToolName))
	sb.WriteString(fmt.Sprintf("- Call %s when the visitor asks what pages or sections exist.\n", tools.ListSitemapToolName))
	sb.WriteString("- If navigation finds nothing, apologise briefly and suggest some of the returned pages in your own words.\n")
	sb.WriteString("- Links found by a tool are shown to the visitor automatically as buttons: do not repeat URLs and never write the text __UI_DATA__.\n\n")

	// 3. Estilo
	if p, ok := stylePrompts[style]; ok {
		sb.WriteString("=== COMMUNICATION STYLE ===\n")
		sb.WriteString(p)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Keep answers short (two or three sentences) and never invent pages that the tools did not return.")
	return sb.String()
}
