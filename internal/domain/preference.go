package domain

import (
	"errors"
	"strings"
)

// ErrInvalidPreference se devuelve cuando el estilo no es uno de los cuatro soportados.
var ErrInvalidPreference = errors.New("invalid learning style")

// LearningStyle es la preferencia de comunicacion elegida por el usuario.
type LearningStyle string

const (
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleReading     LearningStyle = "reading"
	StyleKinesthetic LearningStyle = "kinesthetic"
)

// LearningStyles lista los valores validos en orden estable.
var LearningStyles = []LearningStyle{StyleVisual, StyleAuditory, StyleReading, StyleKinesthetic}

func (s LearningStyle) Valid() bool {
	for _, v := range LearningStyles {
		if s == v {
			return true
		}
	}
	return false
}

// ParseLearningStyle normaliza y valida un estilo recibido como texto.
func ParseLearningStyle(raw string) (LearningStyle, error) {
	s := LearningStyle(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidPreference
	}
	return s, nil
}
