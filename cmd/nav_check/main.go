package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"site-assistant/internal/config"
	"site-assistant/internal/directive"
	"site-assistant/internal/domain"
	"site-assistant/internal/llm"
	"site-assistant/internal/service"
	"site-assistant/internal/sitemap"
	"site-assistant/internal/tools"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

var scenarios = []Scenario{
	{Name: "programas", Input: "Take me to your programs", Style: domain.StyleVisual, ExpectedURL: "/programs"},
	{Name: "donar", Input: "How can I make a donation?", Style: domain.StyleReading, ExpectedURL: "/donate"},
	{Name: "voluntariado", Input: "I want to volunteer on weekends", Style: domain.StyleKinesthetic, ExpectedURL: "/get-involved/volunteer"},
	{Name: "equipo", Input: "who runs this organisation?", Style: domain.StyleAuditory, ExpectedURL: "/about/team"},
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	tree, err := sitemap.Load(cfg.SitemapPath)
	if err != nil {
		log.Fatal(err)
	}
	index := sitemap.NewIndex(tree)
	registry := tools.NewRegistry(
		tools.NewListSitemapTool(index),
		tools.NewNavigateTool(index, sitemap.NewResolver(index)),
	)

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout(), logger)
	assistantSvc := service.NewAssistantService(llmClient, registry,
		service.AssistantPromptBuilder{SiteName: cfg.SiteName}, nil, logger, cfg.LLMMaxToolRounds)
	decoder := directive.NewDecoder(logger, index)

	var found, totalStyle, totalHelp int
	for _, sc := range scenarios {
		fmt.Printf("%s[%s/%s]%s %s\n", colorCyan, sc.Name, sc.Style, colorReset, sc.Input)

		var raw strings.Builder
		req := domain.ChatRequest{
			Messages:      []domain.WireMessage{{Role: domain.RoleUser, Content: sc.Input}},
			LearningStyle: sc.Style,
		}
		if err := assistantSvc.StreamReply(ctx, req, func(chunk string) error {
			raw.WriteString(chunk)
			return nil
		}); err != nil {
			log.Fatalf("assistant reply failed: %v", err)
		}

		content := decoder.Decode(raw.String())
		fmt.Printf("%s[Asistente]%s %s\n", colorGreen, colorReset, content.Text)

		nav := checkNavigation(sc, content)
		if nav.Found && nav.Internal {
			found++
			fmt.Printf("%sOK%s enlace %s ofrecido (%d enlaces)\n", colorGreen, colorReset, sc.ExpectedURL, nav.Links)
		} else {
			fmt.Printf("%sFALLO%s esperaba %s, enlaces=%d\n", colorRed, colorReset, sc.ExpectedURL, nav.Links)
		}

		jr, err := evaluateReply(ctx, llmClient, sc, content)
		if err != nil {
			log.Fatalf("judge failed: %v", err)
		}
		fmt.Printf("%sJuez%s %q\n", colorCyan, colorReset, jr.Reasoning)
		fmt.Printf("Scores: Estilo %d/5 | Utilidad %d/5\n\n", jr.StyleScore, jr.HelpfulScore)

		totalStyle += jr.StyleScore
		totalHelp += jr.HelpfulScore
	}

	n := len(scenarios)
	fmt.Println("==== Promedios ====")
	fmt.Printf("Navegacion: %d/%d | Estilo: %.2f/5 | Utilidad: %.2f/5\n",
		found, n, float64(totalStyle)/float64(n), float64(totalHelp)/float64(n))
}
