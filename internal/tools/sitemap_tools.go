package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"site-assistant/internal/domain"
	"site-assistant/internal/sitemap"
)

const (
	ListSitemapToolName = "getSitemap"
	NavigateToolName    = "navigateToPage"

	// fallbackSuggestions es la cantidad de destinos sugeridos cuando no hay coincidencias.
	fallbackSuggestions = 5

	foundOnePhrase  = "I've found the page you're looking for:"
	foundManyPhrase = "I've found some pages that might help:"
)

// UIPayload es el objeto uiData que la herramienta de navegacion entrega.
type UIPayload = domain.UIData

// ListResult es la respuesta de getSitemap.
type ListResult struct {
	Success bool                  `json:"success"`
	Sitemap []domain.SitemapEntry `json:"sitemap"`
}

func (r ListResult) Succeeded() bool { return r.Success }
func (r ListResult) UI() *UIPayload  { return nil }

// NavigateResult cubre las dos formas de navigateToPage: encontrado
// (NavigationLinks + UIData) o no encontrado (Message + Sitemap sugerido).
type NavigateResult struct {
	Success         bool                    `json:"success"`
	NavigationLinks []domain.NavigationLink `json:"navigationLinks,omitempty"`
	UIData          *UIPayload              `json:"uiData,omitempty"`
	Message         string                  `json:"message,omitempty"`
	Sitemap         []domain.SitemapEntry   `json:"sitemap,omitempty"`
}

func (r NavigateResult) Succeeded() bool { return r.Success }
func (r NavigateResult) UI() *UIPayload  { return r.UIData }

// ListSitemapTool lista todos los destinos del indice.
type ListSitemapTool struct {
	index *sitemap.Index
}

func NewListSitemapTool(index *sitemap.Index) *ListSitemapTool {
	return &ListSitemapTool{index: index}
}

func (t *ListSitemapTool) Name() string { return ListSitemapToolName }

func (t *ListSitemapTool) Description() string {
	return "List every page available on the website with its title, URL and description."
}

func (t *ListSitemapTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (t *ListSitemapTool) Call(_ context.Context, _ json.RawMessage) (Result, error) {
	return t.List(), nil
}

// List es la llamada directa usada tambien por la API HTTP.
func (t *ListSitemapTool) List() ListResult {
	return ListResult{Success: true, Sitemap: t.index.ListAll()}
}

// NavigateTool resuelve una consulta libre a enlaces internos.
type NavigateTool struct {
	index    *sitemap.Index
	resolver sitemap.NavigationResolver
}

func NewNavigateTool(index *sitemap.Index, resolver sitemap.NavigationResolver) *NavigateTool {
	return &NavigateTool{index: index, resolver: resolver}
}

func (t *NavigateTool) Name() string { return NavigateToolName }

func (t *NavigateTool) Description() string {
	return "Find pages on the website matching what the user is looking for and return navigation links."
}

func (t *NavigateTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Words describing the page the user wants, e.g. \"programs\" or \"donate\".",
			},
		},
		"required": []string{"query"},
	}
}

func (t *NavigateTool) Call(_ context.Context, args json.RawMessage) (Result, error) {
	var in struct {
		Query string `json:"query"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("decode navigate args: %w", err)
		}
	}
	return t.Navigate(in.Query), nil
}

// Navigate nunca falla: sin coincidencias devuelve success=false con sugerencias.
func (t *NavigateTool) Navigate(query string) NavigateResult {
	matches := t.resolver.Resolve(query)
	if len(matches) == 0 {
		return NavigateResult{
			Success: false,
			Message: fmt.Sprintf("No page found matching %q", strings.TrimSpace(query)),
			Sitemap: t.index.First(fallbackSuggestions),
		}
	}

	links := make([]domain.NavigationLink, 0, len(matches))
	for _, m := range matches {
		links = append(links, domain.NavigationLink{
			Title:       m.Title,
			URL:         m.URL,
			Description: m.Description,
			IsInternal:  true,
		})
	}
	phrase := foundManyPhrase
	if len(links) == 1 {
		phrase = foundOnePhrase
	}
	return NavigateResult{
		Success:         true,
		NavigationLinks: links,
		UIData: &UIPayload{
			Text:            phrase,
			NavigationLinks: links,
		},
	}
}
