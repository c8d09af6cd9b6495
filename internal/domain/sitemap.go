package domain

// NavDestination es un nodo del arbol de navegacion del sitio.
type NavDestination struct {
	Title       string
	URL         string
	Description string
	Children    []NavDestination
}

// SitemapEntry es la proyeccion plana de un NavDestination.
type SitemapEntry struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// SitemapLink es la forma del archivo de configuracion del menu.
type SitemapLink struct {
	Title       string        `yaml:"title" json:"title"`
	Href        string        `yaml:"href" json:"href"`
	Description string        `yaml:"description,omitempty" json:"description,omitempty"`
	SubLinks    []SitemapLink `yaml:"subLinks,omitempty" json:"subLinks,omitempty"`
}

// ToDestinations convierte la configuracion en el arbol de destinos.
func ToDestinations(links []SitemapLink) []NavDestination {
	if len(links) == 0 {
		return nil
	}
	out := make([]NavDestination, 0, len(links))
	for _, l := range links {
		out = append(out, NavDestination{
			Title:       l.Title,
			URL:         l.Href,
			Description: l.Description,
			Children:    ToDestinations(l.SubLinks),
		})
	}
	return out
}
