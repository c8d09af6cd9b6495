package sitemap

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"site-assistant/internal/domain"
)

// Load lee el archivo de menu (YAML o JSON) y devuelve el arbol de destinos.
func Load(path string) ([]domain.NavDestination, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sitemap: %w", err)
	}
	return Parse(data)
}

// Parse decodifica la configuracion y valida que cada entrada tenga title y href.
func Parse(data []byte) ([]domain.NavDestination, error) {
	var links []domain.SitemapLink
	if err := yaml.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}
	if err := validateLinks(links, ""); err != nil {
		return nil, err
	}
	return domain.ToDestinations(links), nil
}

func validateLinks(links []domain.SitemapLink, prefix string) error {
	for i, l := range links {
		pos := fmt.Sprintf("%s%d", prefix, i)
		if strings.TrimSpace(l.Title) == "" {
			return fmt.Errorf("sitemap entry %s: missing title", pos)
		}
		if strings.TrimSpace(l.Href) == "" {
			return fmt.Errorf("sitemap entry %s: missing href", pos)
		}
		if err := validateLinks(l.SubLinks, pos+"."); err != nil {
			return err
		}
	}
	return nil
}
