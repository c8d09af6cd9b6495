package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"site-assistant/internal/tools"
)

// SitemapHandler expone las dos herramientas de navegacion por HTTP.
type SitemapHandler struct {
	logger   *zap.Logger
	list     *tools.ListSitemapTool
	navigate *tools.NavigateTool
}

func NewSitemapHandler(logger *zap.Logger, list *tools.ListSitemapTool, navigate *tools.NavigateTool) *SitemapHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SitemapHandler{logger: logger, list: list, navigate: navigate}
}

// GetSitemap maneja GET /api/sitemap.
func (h *SitemapHandler) GetSitemap(c *gin.Context) {
	c.JSON(http.StatusOK, h.list.List())
}

// Navigate maneja GET /api/navigate?query=. Una consulta sin coincidencias
// responde 200 con success=false y el sitemap de respaldo.
func (h *SitemapHandler) Navigate(c *gin.Context) {
	query := c.Query("query")
	result := h.navigate.Navigate(query)
	if !result.Success {
		h.logger.Debug("navigate query without matches", zap.String("query", query))
	}
	c.JSON(http.StatusOK, result)
}
