package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"site-assistant/internal/assistant"
	"site-assistant/internal/domain"
	"site-assistant/internal/metrics"
	"site-assistant/internal/repository"
	"site-assistant/internal/service"
	"site-assistant/internal/sitemap"
	"site-assistant/internal/tools"
)

type mockStreamer struct {
	chunks []string
	err    error
	last   domain.ChatRequest
	calls  int
}

func (m *mockStreamer) StreamReply(_ context.Context, req domain.ChatRequest, emit func(string) error) error {
	m.calls++
	m.last = req
	for _, chunk := range m.chunks {
		if err := emit(chunk); err != nil {
			return err
		}
	}
	return m.err
}

type mockLimiter struct {
	decision service.ChatRateDecision
	routes   []string
	ips      []string
}

func (m *mockLimiter) Allow(_ context.Context, route, clientIP string) service.ChatRateDecision {
	m.routes = append(m.routes, route)
	m.ips = append(m.ips, clientIP)
	return m.decision
}

func setupRouter(streamer ChatStreamer, limiter service.ChatRateLimiter, gatherer prometheus.Gatherer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	idx := sitemap.NewIndex([]domain.NavDestination{
		{Title: "Home", URL: "/"},
		{Title: "Programmes", URL: "/programs", Description: "Our programs and projects"},
		{Title: "Donate", URL: "/donate", Description: "Support our work"},
	})
	sitemapH := NewSitemapHandler(zap.NewNop(),
		tools.NewListSitemapTool(idx),
		tools.NewNavigateTool(idx, sitemap.NewResolver(idx)),
	)
	return NewRouter(zap.NewNop(), NewChatHandler(zap.NewNop(), streamer), sitemapH, limiter, gatherer)
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func validChatBody() domain.ChatRequest {
	return domain.ChatRequest{
		Messages:      []domain.WireMessage{{Role: domain.RoleUser, Content: "take me to programs"}},
		LearningStyle: domain.StyleVisual,
	}
}

func TestPostChat_StreamsPlainText(t *testing.T) {
	streamer := &mockStreamer{chunks: []string{"Sure! ", `__UI_DATA__{"text":"x"}__UI_DATA__`}}
	r := setupRouter(streamer, nil, nil)

	rec := performRequest(r, http.MethodPost, "/api/chat", validChatBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain, got %q", ct)
	}
	if got := rec.Body.String(); got != `Sure! __UI_DATA__{"text":"x"}__UI_DATA__` {
		t.Fatalf("unexpected body %q", got)
	}
	if !rec.Flushed {
		t.Fatalf("expected chunks to be flushed")
	}
	if streamer.last.LearningStyle != domain.StyleVisual || len(streamer.last.Messages) != 1 {
		t.Fatalf("request not forwarded: %+v", streamer.last)
	}
}

func TestPostChat_InvalidRequests(t *testing.T) {
	cases := map[string]any{
		"json invalido": "{not json",
		"sin mensajes":  domain.ChatRequest{},
		"rol invalido":  domain.ChatRequest{Messages: []domain.WireMessage{{Role: "system", Content: "x"}}},
		"estilo invalido": domain.ChatRequest{
			Messages:      []domain.WireMessage{{Role: domain.RoleUser, Content: "hi"}},
			LearningStyle: "telepathic",
		},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			streamer := &mockStreamer{}
			r := setupRouter(streamer, nil, nil)
			rec := performRequest(r, http.MethodPost, "/api/chat", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			if streamer.calls != 0 {
				t.Fatalf("assistant must not be called for invalid requests")
			}
		})
	}
}

func TestPostChat_ErrorBeforeFirstByte(t *testing.T) {
	r := setupRouter(&mockStreamer{err: errors.New("llm down")}, nil, nil)

	rec := performRequest(r, http.MethodPost, "/api/chat", validChatBody())
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
		t.Fatalf("expected json error body, got %q", rec.Body.String())
	}
}

func TestPostChat_ErrorAfterFirstByteEndsInFallback(t *testing.T) {
	streamer := &mockStreamer{
		chunks: []string{"Let me look that up for you."},
		err:    errors.New("llm stream reset"),
	}
	srv := httptest.NewServer(setupRouter(streamer, nil, nil))
	defer srv.Close()

	backend := assistant.NewHTTPBackend(srv.URL+"/api/chat", 5*time.Second)
	conv := assistant.NewConversation(context.Background(), backend, nil, repository.NewMemoryPreferenceRepository(), nil)

	if !conv.Send(context.Background(), "take me to programs") {
		t.Fatalf("expected turn to run")
	}
	msgs := conv.Messages()
	if len(msgs) != 2 || msgs[1].Role != domain.RoleAssistant {
		t.Fatalf("expected user and assistant messages, got %+v", msgs)
	}
	if msgs[1].Content.Text != assistant.FallbackMessage {
		t.Fatalf("partial reply must not be accepted, got %q", msgs[1].Content.Text)
	}
	if conv.Suspended() {
		t.Fatalf("conversation must be idle after a failed turn")
	}
}

func TestPostChat_CompleteStreamOverNetwork(t *testing.T) {
	streamer := &mockStreamer{chunks: []string{"Sure! ", `__UI_DATA__{"navigationLinks":[{"title":"Programmes","url":"/programs","isInternal":true}]}__UI_DATA__`}}
	srv := httptest.NewServer(setupRouter(streamer, nil, nil))
	defer srv.Close()

	backend := assistant.NewHTTPBackend(srv.URL+"/api/chat", 5*time.Second)
	conv := assistant.NewConversation(context.Background(), backend, nil, repository.NewMemoryPreferenceRepository(), nil)
	conv.Send(context.Background(), "take me to programs")

	reply := conv.Messages()[1].Content
	if reply.Text != "Sure!" || len(reply.NavigationLinks) != 1 || reply.NavigationLinks[0].URL != "/programs" {
		t.Fatalf("unexpected decoded reply %+v", reply)
	}
}

func TestRecovery_PanicAnswers500(t *testing.T) {
	r := setupRouter(&mockStreamer{}, nil, nil)
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := performRequest(r, http.MethodGet, "/boom", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

func TestPostChat_RateLimited(t *testing.T) {
	streamer := &mockStreamer{chunks: []string{"hi"}}
	limiter := &mockLimiter{decision: service.ChatRateDecision{Allowed: false, Remaining: 0, RetryAfter: 41500 * time.Millisecond}}
	r := setupRouter(streamer, limiter, nil)

	rec := performRequest(r, http.MethodPost, "/api/chat", validChatBody())
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "42" {
		t.Fatalf("expected Retry-After 42, got %q", got)
	}
	if streamer.calls != 0 {
		t.Fatalf("limiter must short-circuit the handler")
	}
	if len(limiter.routes) != 1 || limiter.routes[0] != "/api/chat" || limiter.ips[0] == "" {
		t.Fatalf("limiter must be keyed by route and client ip, got %v %v", limiter.routes, limiter.ips)
	}
}

func TestPostChat_RateLimitHeaders(t *testing.T) {
	limiter := &mockLimiter{decision: service.ChatRateDecision{Allowed: true, Remaining: 7}}
	r := setupRouter(&mockStreamer{chunks: []string{"hi"}}, limiter, nil)

	rec := performRequest(r, http.MethodPost, "/api/chat", validChatBody())
	if rec.Code != http.StatusOK || rec.Header().Get("X-RateLimit-Remaining") != "7" {
		t.Fatalf("expected 200 with remaining header, got %d %q", rec.Code, rec.Header().Get("X-RateLimit-Remaining"))
	}

	limiter.decision = service.ChatRateDecision{Allowed: true, Remaining: -1}
	rec = performRequest(r, http.MethodPost, "/api/chat", validChatBody())
	if rec.Header().Get("X-RateLimit-Remaining") != "" {
		t.Fatalf("unknown remaining must not be reported")
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	cases := map[time.Duration]int{
		0:                       1,
		200 * time.Millisecond:  1,
		time.Second:             1,
		1500 * time.Millisecond: 2,
		time.Minute:             60,
	}
	for in, want := range cases {
		if got := retryAfterSeconds(in); got != want {
			t.Fatalf("retryAfterSeconds(%v): expected %d, got %d", in, want, got)
		}
	}
}

func TestSitemapRoutes(t *testing.T) {
	r := setupRouter(&mockStreamer{}, nil, nil)

	t.Run("sitemap completo", func(t *testing.T) {
		rec := performRequest(r, http.MethodGet, "/api/sitemap", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var res tools.ListResult
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !res.Success || len(res.Sitemap) != 3 {
			t.Fatalf("unexpected sitemap result: %+v", res)
		}
	})

	t.Run("navegacion con coincidencia", func(t *testing.T) {
		rec := performRequest(r, http.MethodGet, "/api/navigate?query=programs", nil)
		var res tools.NavigateResult
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !res.Success || len(res.NavigationLinks) != 1 || res.NavigationLinks[0].URL != "/programs" {
			t.Fatalf("unexpected navigate result: %+v", res)
		}
		if res.UIData == nil || len(res.UIData.NavigationLinks) != 1 {
			t.Fatalf("expected uiData on match")
		}
	})

	t.Run("navegacion sin coincidencia", func(t *testing.T) {
		rec := performRequest(r, http.MethodGet, "/api/navigate?query=volunteer", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		var res tools.NavigateResult
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if res.Success || !strings.Contains(res.Message, "volunteer") || len(res.Sitemap) != 3 {
			t.Fatalf("unexpected miss result: %+v", res)
		}
	})
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.RecordToolCall(tools.NavigateToolName, metrics.OutcomeOK)
	r := setupRouter(&mockStreamer{}, nil, reg)

	rec := performRequest(r, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}

	rec = performRequest(r, http.MethodGet, "/metrics", nil)
	want := fmt.Sprintf(`assistant_tool_calls_total{outcome="ok",tool="%s"} 1`, tools.NavigateToolName)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("expected metrics exposition to contain %q, got %q", want, rec.Body.String())
	}
}
