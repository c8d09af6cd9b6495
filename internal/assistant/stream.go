package assistant

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
)

const readChunkSize = 4096

// ReadStream lee el cuerpo en orden hasta EOF y devuelve el texto completo.
// Los bytes se acumulan y se decodifican una sola vez al final, asi un caracter
// multibyte partido entre dos chunks sigue siendo valido.
func ReadStream(ctx context.Context, r io.Reader) (string, error) {
	var acc bytes.Buffer
	buf := make([]byte, readChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := r.Read(buf)
		if n > 0 {
			acc.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read stream: %w", err)
		}
	}
	return strings.ToValidUTF8(acc.String(), "\uFFFD"), nil
}
