package domain

// UIData es el objeto JSON que viaja dentro del bloque de directiva.
type UIData struct {
	Text            string           `json:"text,omitempty"`
	NavigationLinks []NavigationLink `json:"navigationLinks,omitempty"`
	Suggestions     []string         `json:"suggestions,omitempty"`
}
