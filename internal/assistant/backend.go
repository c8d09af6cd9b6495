package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"site-assistant/internal/domain"
)

var ErrBackendStatus = errors.New("assistant backend error status")

// BackendClient abre el stream de respuesta del endpoint de chat.
type BackendClient interface {
	Open(ctx context.Context, req domain.ChatRequest) (io.ReadCloser, error)
}

// HTTPBackend implementa BackendClient contra POST /api/chat.
type HTTPBackend struct {
	url    string
	client *http.Client
}

// NewHTTPBackend usa el timeout por defecto del transporte cuando timeout es 0.
func NewHTTPBackend(url string, timeout time.Duration) *HTTPBackend {
	return &HTTPBackend{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (b *HTTPBackend) Open(ctx context.Context, req domain.ChatRequest) (io.ReadCloser, error) {
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/plain")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status=%d", ErrBackendStatus, resp.StatusCode)
	}
	return resp.Body, nil
}
