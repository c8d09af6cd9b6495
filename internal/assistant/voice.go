package assistant

import (
	"context"
	"errors"
)

var ErrVoiceNotSupported = errors.New("voice input not supported")

// VoiceInput es la capacidad de dictado; el nucleo solo consume el texto resultante.
type VoiceInput interface {
	Available() bool
	Listen(ctx context.Context) (string, error)
}

// UnsupportedVoice se usa cuando el entorno no ofrece reconocimiento de voz.
type UnsupportedVoice struct{}

func (UnsupportedVoice) Available() bool { return false }

func (UnsupportedVoice) Listen(context.Context) (string, error) {
	return "", ErrVoiceNotSupported
}
