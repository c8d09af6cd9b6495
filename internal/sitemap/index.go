package sitemap

import (
	"strings"

	"golang.org/x/text/cases"

	"site-assistant/internal/domain"
)

// Build aplana el arbol en pre-orden: cada padre antes que sus hijos y los
// hermanos en el orden original.
func Build(tree []domain.NavDestination) []domain.SitemapEntry {
	var out []domain.SitemapEntry
	var walk func(nodes []domain.NavDestination)
	walk = func(nodes []domain.NavDestination) {
		for _, n := range nodes {
			out = append(out, domain.SitemapEntry{
				Title:       n.Title,
				URL:         n.URL,
				Description: n.Description,
			})
			walk(n.Children)
		}
	}
	walk(tree)
	return out
}

type indexedEntry struct {
	entry       domain.SitemapEntry
	foldedTitle string
	foldedDesc  string
}

// Index es la vista plana y de solo lectura de los destinos navegables.
// Se construye una vez; las lecturas concurrentes no requieren sincronizacion.
type Index struct {
	entries []indexedEntry
	byURL   map[string]int
}

// NewIndex construye el indice a partir del arbol de configuracion.
func NewIndex(tree []domain.NavDestination) *Index {
	flat := Build(tree)
	idx := &Index{
		entries: make([]indexedEntry, 0, len(flat)),
		byURL:   make(map[string]int, len(flat)),
	}
	for i, e := range flat {
		idx.entries = append(idx.entries, indexedEntry{
			entry:       e,
			foldedTitle: fold(e.Title),
			foldedDesc:  fold(e.Description),
		})
		key := normalizeURL(e.URL)
		if _, dup := idx.byURL[key]; !dup {
			idx.byURL[key] = i
		}
	}
	return idx
}

// ListAll devuelve una copia del indice completo.
func (i *Index) ListAll() []domain.SitemapEntry {
	return i.First(i.Len())
}

// First devuelve a lo sumo n entradas en orden de aplanado.
func (i *Index) First(n int) []domain.SitemapEntry {
	if i == nil || n <= 0 {
		return []domain.SitemapEntry{}
	}
	if n > len(i.entries) {
		n = len(i.entries)
	}
	out := make([]domain.SitemapEntry, 0, n)
	for _, e := range i.entries[:n] {
		out = append(out, e.entry)
	}
	return out
}

func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.entries)
}

// Lookup busca un destino por URL; "/programs/" y "/programs" son equivalentes.
func (i *Index) Lookup(url string) (domain.SitemapEntry, bool) {
	if i == nil {
		return domain.SitemapEntry{}, false
	}
	pos, ok := i.byURL[normalizeURL(url)]
	if !ok {
		return domain.SitemapEntry{}, false
	}
	return i.entries[pos].entry, true
}

func (i *Index) Contains(url string) bool {
	_, ok := i.Lookup(url)
	return ok
}

func normalizeURL(url string) string {
	u := strings.TrimSpace(url)
	if len(u) > 1 {
		u = strings.TrimRight(u, "/")
		if u == "" {
			u = "/"
		}
	}
	return u
}

// cases.Caser guarda estado, asi que se crea uno por llamada.
func fold(s string) string {
	return cases.Fold().String(s)
}
