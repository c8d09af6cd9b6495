package sitemap

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"site-assistant/internal/domain"
)

// NavigationResolver resuelve texto libre a destinos del indice.
type NavigationResolver interface {
	Resolve(query string) []domain.SitemapEntry
}

// Resolver hace coincidencia por subcadena, sin distinguir mayusculas, sobre
// titulo o descripcion. Sin ranking: el orden es el del indice.
type Resolver struct {
	index *Index
}

func NewResolver(index *Index) *Resolver {
	return &Resolver{index: index}
}

// Resolve nunca trata la consulta vacia como "todo": devuelve una lista vacia.
// Los espacios cuentan como parte de la subcadena.
func (r *Resolver) Resolve(query string) []domain.SitemapEntry {
	q := fold(query)
	if q == "" || r == nil || r.index == nil {
		return []domain.SitemapEntry{}
	}
	matches := []domain.SitemapEntry{}
	for _, e := range r.index.entries {
		if strings.Contains(e.foldedTitle, q) || strings.Contains(e.foldedDesc, q) {
			matches = append(matches, e.entry)
		}
	}
	return matches
}

// CachedResolver memoriza resultados por consulta normalizada.
type CachedResolver struct {
	inner NavigationResolver
	cache *lru.Cache[string, []domain.SitemapEntry]
}

// NewCachedResolver envuelve un resolver con un LRU de tamano fijo.
func NewCachedResolver(inner NavigationResolver, size int) (*CachedResolver, error) {
	if size <= 0 {
		size = 128
	}
	cache, err := lru.New[string, []domain.SitemapEntry](size)
	if err != nil {
		return nil, err
	}
	return &CachedResolver{inner: inner, cache: cache}, nil
}

func (c *CachedResolver) Resolve(query string) []domain.SitemapEntry {
	key := fold(query)
	if key == "" {
		return []domain.SitemapEntry{}
	}
	if hit, ok := c.cache.Get(key); ok {
		return copyEntries(hit)
	}
	res := c.inner.Resolve(query)
	c.cache.Add(key, copyEntries(res))
	return res
}

func copyEntries(in []domain.SitemapEntry) []domain.SitemapEntry {
	out := make([]domain.SitemapEntry, len(in))
	copy(out, in)
	return out
}
