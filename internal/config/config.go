package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del backend del asistente.
type Config struct {
	HTTPPort             string `env:"HTTP_PORT" envDefault:"8080"`
	LLMAPIKey            string `env:"LLM_API_KEY,required,notEmpty"`
	LLMBaseURL           string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel             string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTimeoutSeconds    int    `env:"LLM_TIMEOUT_SECONDS" envDefault:"60"`
	LLMMaxToolRounds     int    `env:"LLM_MAX_TOOL_ROUNDS" envDefault:"4"`
	LLMMaxHistory        int    `env:"LLM_MAX_HISTORY_MESSAGES" envDefault:"20"`
	SitemapPath          string `env:"SITEMAP_PATH" envDefault:"configs/sitemap.yaml"`
	ResolverCacheSize    int    `env:"RESOLVER_CACHE_SIZE" envDefault:"256"`
	SiteName             string `env:"SITE_NAME"`
	RedisAddr            string `env:"REDIS_ADDR"`
	RedisPassword        string `env:"REDIS_PASSWORD"`
	RedisDB              int    `env:"REDIS_DB" envDefault:"0"`
	ChatRateLimitMax     int    `env:"CHAT_RATE_LIMIT_MAX" envDefault:"20"`
	ChatRateLimitWindowS int    `env:"CHAT_RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`
}

// LLMTimeout devuelve el timeout del proveedor como duración.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// ChatRateLimitWindow devuelve la ventana del rate limit de /api/chat.
func (c *Config) ChatRateLimitWindow() time.Duration {
	return time.Duration(c.ChatRateLimitWindowS) * time.Second
}

// ClientConfig es la configuración del cliente de terminal.
type ClientConfig struct {
	AssistantURL   string `env:"ASSISTANT_URL" envDefault:"http://localhost:8080/api/chat"`
	SitemapPath    string `env:"SITEMAP_PATH" envDefault:"configs/sitemap.yaml"`
	RequestTimeout int    `env:"ASSISTANT_TIMEOUT_SECONDS" envDefault:"120"`
	RedisAddr      string `env:"REDIS_ADDR"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	SessionKey     string `env:"ASSISTANT_SESSION_KEY" envDefault:"default"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.LLMMaxToolRounds < 1 {
		return nil, fmt.Errorf("LLM_MAX_TOOL_ROUNDS must be >= 1, got %d", cfg.LLMMaxToolRounds)
	}
	return &cfg, nil
}

// LoadClientConfig carga la configuración del cliente.
func LoadClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
