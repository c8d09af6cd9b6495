package directive

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"site-assistant/internal/domain"
)

// Marker delimita el bloque JSON embebido en la respuesta de texto plano.
const Marker = "__UI_DATA__"

// Solo el primer bloque se interpreta; uno posterior queda como texto literal.
var blockPattern = regexp.MustCompile(`(?s)` + Marker + `(.*?)` + Marker)

// LinkIndex es la parte del indice de sitemap que el decoder necesita.
type LinkIndex interface {
	Contains(url string) bool
}

// Decoder extrae el payload de UI de una respuesta completa del asistente.
type Decoder struct {
	logger *zap.Logger
	index  LinkIndex
}

// DefaultDecoder permite uso directo sin instanciar.
var DefaultDecoder = NewDecoder(nil, nil)

// NewDecoder crea un decoder. Con index no nil, IsInternal de cada enlace se
// recalcula contra el sitemap; con nil los enlaces se copian tal cual.
func NewDecoder(logger *zap.Logger, index LinkIndex) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{logger: logger, index: index}
}

// Decode nunca falla: un payload invalido degrada a texto plano sin el bloque.
func (d *Decoder) Decode(raw string) domain.MessageContent {
	loc := blockPattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		return domain.PlainContent(raw)
	}

	payload := raw[loc[2]:loc[3]]
	outside := strings.TrimSpace(raw[:loc[0]] + raw[loc[1]:])

	var data domain.UIData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		d.logger.Warn("malformed ui data payload",
			zap.Error(err),
			zap.Int("payload_len", len(payload)),
		)
		return domain.PlainContent(outside)
	}

	text := outside
	if text == "" {
		text = data.Text
	}
	return domain.StructuredContent(text, d.reconcile(data.NavigationLinks), data.Suggestions)
}

func (d *Decoder) reconcile(links []domain.NavigationLink) []domain.NavigationLink {
	if d.index == nil || links == nil {
		return links
	}
	out := make([]domain.NavigationLink, len(links))
	for i, l := range links {
		l.IsInternal = d.index.Contains(l.URL)
		out[i] = l
	}
	return out
}

// Decode usa DefaultDecoder.
func Decode(raw string) domain.MessageContent {
	return DefaultDecoder.Decode(raw)
}

// Encode serializa data como bloque de directiva listo para anexar al stream.
// Ningun Marker dentro de un string JSON sobrevive: cortaria el bloque.
func Encode(data domain.UIData) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal ui data: %w", err)
	}
	return Marker + escapeMarkers(string(payload)) + Marker, nil
}

// escapeMarkers reemplaza el primer "_" de cada Marker por su escape JSON hasta
// que no quede ninguno; marcadores solapados aparecen recien tras cada pasada.
func escapeMarkers(body string) string {
	for strings.Contains(body, Marker) {
		body = strings.ReplaceAll(body, Marker, `\u005f`+Marker[1:])
	}
	return body
}
