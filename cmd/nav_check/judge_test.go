package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"site-assistant/internal/domain"
	"site-assistant/internal/llm"
)

func TestExtractFirstJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "con texto alrededor", in: `sure: {"a":1} thanks`, want: `{"a":1}`},
		{name: "llaves en string", in: `{"reasoning":"uses } and {","style_score":4}`, want: `{"reasoning":"uses } and {","style_score":4}`},
		{name: "anidado", in: `{"a":{"b":2}} {"c":3}`, want: `{"a":{"b":2}}`},
		{name: "sin objeto", in: "no json here", want: ""},
		{name: "sin cerrar", in: `{"a":1`, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractFirstJSONObject(tc.in); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCleanJudgeOutputStripsFences(t *testing.T) {
	got := cleanJudgeOutput("\uFEFF```json\n{\"style_score\":3}\n```")
	if got != `{"style_score":3}` {
		t.Fatalf("unexpected cleaned output %q", got)
	}
}

func TestCheckNavigation(t *testing.T) {
	sc := Scenario{ExpectedURL: "/donate"}
	content := domain.StructuredContent("", []domain.NavigationLink{
		{Title: "Events", URL: "/events", IsInternal: true},
		{Title: "Donate", URL: "/donate/", IsInternal: true},
	}, nil)

	nav := checkNavigation(sc, content)
	if !nav.Found || !nav.Internal || nav.Links != 2 {
		t.Fatalf("unexpected check result %+v", nav)
	}
	if checkNavigation(sc, domain.PlainContent("no links")).Found {
		t.Fatalf("plain content must not count as found")
	}
}

func TestEvaluateReply(t *testing.T) {
	sc := Scenario{Input: "donate", Style: domain.StyleVisual, ExpectedURL: "/donate"}
	content := domain.StructuredContent("Here:", []domain.NavigationLink{{Title: "Donate", URL: "/donate"}}, nil)

	t.Run("clamps scores", func(t *testing.T) {
		judge := &llm.MockClient{Rounds: []llm.MockRound{{Deltas: []string{"```json\n", `{"reasoning":"ok","style_score":9,"helpful_score":0}`, "\n```"}}}}
		jr, err := evaluateReply(context.Background(), judge, sc, content)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if jr.StyleScore != 5 || jr.HelpfulScore != 1 {
			t.Fatalf("expected clamped scores, got %+v", jr)
		}
		prompt := judge.Requests[0].Messages[0].Content
		if !strings.Contains(prompt, "Donate (/donate)") || !strings.Contains(prompt, "visual") {
			t.Fatalf("prompt missing scenario data: %q", prompt)
		}
		if len(judge.Requests[0].Tools) != 0 {
			t.Fatalf("judge must run without tools")
		}
	})

	t.Run("respuesta no json", func(t *testing.T) {
		judge := &llm.MockClient{Rounds: []llm.MockRound{{Deltas: []string{"great answer"}}}}
		if _, err := evaluateReply(context.Background(), judge, sc, content); err == nil {
			t.Fatalf("expected error for non-json judge output")
		}
	})

	t.Run("error del juez", func(t *testing.T) {
		judge := &llm.MockClient{Rounds: []llm.MockRound{{Err: errors.New("timeout")}}}
		if _, err := evaluateReply(context.Background(), judge, sc, content); err == nil {
			t.Fatalf("expected judge error")
		}
	})
}
