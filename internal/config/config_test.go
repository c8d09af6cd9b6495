package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "sk-test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port, got %q", cfg.HTTPPort)
	}
	if cfg.SitemapPath != "configs/sitemap.yaml" {
		t.Fatalf("unexpected sitemap path %q", cfg.SitemapPath)
	}
	if cfg.LLMTimeout() != 60*time.Second || cfg.ChatRateLimitWindow() != time.Minute {
		t.Fatalf("unexpected durations: %v %v", cfg.LLMTimeout(), cfg.ChatRateLimitWindow())
	}
	if cfg.ChatRateLimitMax != 20 || cfg.LLMMaxToolRounds != 4 {
		t.Fatalf("unexpected limits: %+v", cfg)
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Run("falta api key", func(t *testing.T) {
		t.Setenv("LLM_API_KEY", "")
		if _, err := LoadConfig(); err == nil {
			t.Fatalf("expected error for missing LLM_API_KEY")
		}
	})
	t.Run("rondas invalidas", func(t *testing.T) {
		t.Setenv("LLM_API_KEY", "sk-test")
		t.Setenv("LLM_MAX_TOOL_ROUNDS", "0")
		if _, err := LoadConfig(); err == nil {
			t.Fatalf("expected error for zero tool rounds")
		}
	})
}

func TestLoadClientConfig(t *testing.T) {
	t.Setenv("ASSISTANT_SESSION_KEY", "kiosk-1")

	cfg, err := LoadClientConfig()
	if err != nil {
		t.Fatalf("load client config: %v", err)
	}
	if cfg.AssistantURL != "http://localhost:8080/api/chat" {
		t.Fatalf("unexpected url %q", cfg.AssistantURL)
	}
	if cfg.SessionKey != "kiosk-1" {
		t.Fatalf("unexpected session key %q", cfg.SessionKey)
	}
}
