package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"site-assistant/internal/assistant"
	"site-assistant/internal/config"
	"site-assistant/internal/directive"
	"site-assistant/internal/domain"
	"site-assistant/internal/repository"
	"site-assistant/internal/sitemap"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.LoadClientConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Con el sitemap local los enlaces decodificados se marcan internos contra el indice.
	var index directive.LinkIndex
	if tree, err := sitemap.Load(cfg.SitemapPath); err != nil {
		logger.Warn("sitemap not available, links kept as sent", zap.Error(err))
	} else {
		index = sitemap.NewIndex(tree)
	}
	decoder := directive.NewDecoder(logger, index)

	var prefs repository.PreferenceRepository = repository.NewMemoryPreferenceRepository()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, preference kept in memory", zap.Error(err))
		} else {
			prefs = repository.NewRedisPreferenceRepository(redisClient, cfg.SessionKey)
		}
		cancel()
	}

	backend := assistant.NewHTTPBackend(cfg.AssistantURL, time.Duration(cfg.RequestTimeout)*time.Second)
	conv := assistant.NewConversation(ctx, backend, decoder, prefs, logger)
	defer conv.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "Tu > ",
		InterruptPrompt: "^C",
		EOFPrompt:       "/quit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("/style",
				readline.PcItem(string(domain.StyleVisual)),
				readline.PcItem(string(domain.StyleAuditory)),
				readline.PcItem(string(domain.StyleReading)),
				readline.PcItem(string(domain.StyleKinesthetic)),
			),
			readline.PcItem("/voice"),
			readline.PcItem("/quit"),
		),
	})
	if err != nil {
		log.Fatal(err)
	}
	defer rl.Close()

	out := rl.Stdout()
	printWelcome(out, conv)

	voice := assistant.UnsupportedVoice{}
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "leer input: %v\n", err)
			return
		}

		before := len(conv.Messages())
		quit := handleLine(ctx, out, conv, voice, line)
		if quit {
			fmt.Fprintln(out, "Saliendo del chat...")
			return
		}
		for _, msg := range conv.Messages()[before:] {
			if msg.Role == domain.RoleAssistant {
				renderMessage(out, msg)
			}
		}
	}
}

// handleLine ejecuta un comando o envia el texto. Devuelve true para salir.
func handleLine(ctx context.Context, out io.Writer, conv *assistant.Conversation, voice assistant.VoiceInput, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		fmt.Fprintln(out, "...")
		conv.Send(ctx, line)
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "/quit", "/exit":
		return true
	case "/style":
		if strings.TrimSpace(arg) == "" {
			style, ok := conv.Preference()
			if !ok {
				style = "none"
			}
			fmt.Fprintf(out, "Estilo actual: %s. Opciones: %s\n", style, styleOptions())
			return false
		}
		style, err := domain.ParseLearningStyle(arg)
		if err != nil {
			fmt.Fprintf(out, "Estilo invalido %q. Opciones: %s\n", strings.TrimSpace(arg), styleOptions())
			return false
		}
		if err := conv.SetPreference(ctx, style); err != nil {
			fmt.Fprintf(out, "error guardando preferencia: %v\n", err)
			return false
		}
		fmt.Fprintf(out, "Estilo actualizado: %s\n", style)
	case "/voice":
		if _, err := conv.SendVoice(ctx, voice); err != nil {
			if errors.Is(err, assistant.ErrVoiceNotSupported) {
				fmt.Fprintln(out, "La entrada por voz no esta disponible en esta terminal.")
				return false
			}
			fmt.Fprintf(out, "error de voz: %v\n", err)
		}
	default:
		fmt.Fprintf(out, "Comando desconocido %s. Comandos: /style, /voice, /quit\n", cmd)
	}
	return false
}

// renderMessage imprime texto, enlaces numerados y sugerencias.
func renderMessage(out io.Writer, msg domain.ChatMessage) {
	fmt.Fprintf(out, "Asistente > %s\n", msg.Content.Text)
	for i, link := range msg.Content.NavigationLinks {
		kind := "externo"
		if link.IsInternal {
			kind = "interno"
		}
		fmt.Fprintf(out, "  [%d] %s -> %s (%s)\n", i+1, link.Title, link.URL, kind)
		if link.Description != "" {
			fmt.Fprintf(out, "      %s\n", link.Description)
		}
	}
	if len(msg.Content.Suggestions) > 0 {
		fmt.Fprintln(out, "  Sugerencias:")
		for _, s := range msg.Content.Suggestions {
			fmt.Fprintf(out, "   - %s\n", s)
		}
	}
}

func printWelcome(out io.Writer, conv *assistant.Conversation) {
	fmt.Fprintln(out, "---- Asistente del sitio (/style <estilo>, /voice, /quit) ----")
	if style, ok := conv.Preference(); ok {
		fmt.Fprintf(out, "Estilo de aprendizaje: %s\n", style)
	} else {
		fmt.Fprintf(out, "Sin estilo definido. Elige uno con /style: %s\n", styleOptions())
	}
}

func styleOptions() string {
	names := make([]string, 0, len(domain.LearningStyles))
	for _, s := range domain.LearningStyles {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
