package main

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"site-assistant/internal/domain"
	"site-assistant/internal/llm"
)

// Scenario es una consulta de prueba con el destino que deberia ofrecerse.
type Scenario struct {
	Name        string
	Input       string
	Style       domain.LearningStyle
	ExpectedURL string
}

// judgeResponse representa la respuesta estructurada del juez evaluador en formato JSON.
type judgeResponse struct {
	Reasoning    string `json:"reasoning"`
	StyleScore   int    `json:"style_score"`
	HelpfulScore int    `json:"helpful_score"`
}

// navCheck es el resultado deterministico: si el enlace esperado aparece y es interno.
type navCheck struct {
	Found    bool
	Internal bool
	Links    int
}

func checkNavigation(sc Scenario, content domain.MessageContent) navCheck {
	res := navCheck{Links: len(content.NavigationLinks)}
	for _, l := range content.NavigationLinks {
		if strings.TrimSuffix(l.URL, "/") == strings.TrimSuffix(sc.ExpectedURL, "/") {
			res.Found = true
			res.Internal = l.IsInternal
			break
		}
	}
	return res
}

func evaluateReply(ctx context.Context, judge llm.LLMClient, sc Scenario, content domain.MessageContent) (judgeResponse, error) {
	prompt := buildJudgePrompt(sc, content)
	res, err := judge.StreamChat(ctx, llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: prompt}},
	}, nil)
	if err != nil {
		return judgeResponse{}, err
	}

	jsonStr := extractFirstJSONObject(cleanJudgeOutput(res.Content))
	if jsonStr == "" {
		return judgeResponse{}, fmt.Errorf("judge returned non-json: %q", res.Content)
	}

	var jr judgeResponse
	if err := json.Unmarshal([]byte(jsonStr), &jr); err != nil {
		return judgeResponse{}, fmt.Errorf("parse judge json: %w (raw=%q)", err, jsonStr)
	}

	// clamps simples por si el juez delira con 0/10
	jr.StyleScore = clamp1to5(jr.StyleScore)
	jr.HelpfulScore = clamp1to5(jr.HelpfulScore)
	return jr, nil
}

func clamp1to5(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

func buildJudgePrompt(sc Scenario, content domain.MessageContent) string {
	var links []string
	for _, l := range content.NavigationLinks {
		links = append(links, fmt.Sprintf("%s (%s)", l.Title, l.URL))
	}
	linkStr := "none"
	if len(links) > 0 {
		linkStr = strings.Join(links, ", ")
	}
	style := string(sc.Style)
	if style == "" {
		style = "not set"
	}

	return fmt.Sprintf(
		`You are grading a website assistant for a nonprofit.

Learning style requested: %s
User message: %q
Assistant reply: %q
Navigation links offered: %s
Page the user most likely wanted: %s

Score from 1 to 5:
1) style_score: does the tone and format fit the learning style?
2) helpful_score: does the reply point the user to the right page without inventing pages?

Reply with JSON only (no markdown):
{
  "reasoning": "...",
  "style_score": 0,
  "helpful_score": 0
}`,
		style, sc.Input, content.Text, linkStr, sc.ExpectedURL,
	)
}

var (
	fenceStart = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEnd   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// cleanJudgeOutput quita fences ```json ... ``` y BOM.
func cleanJudgeOutput(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "\uFEFF")
	s = fenceStart.ReplaceAllString(s, "")
	s = fenceEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// extractFirstJSONObject devuelve el primer objeto {...} balanceado, ignorando llaves dentro de strings.
func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0
	for i := start; i < len(input); i++ {
		ch := input[i]
		if inString {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}
