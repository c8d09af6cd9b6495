package service

import (
	"fmt"
	"testing"

	"site-assistant/internal/domain"
)

func conversationOf(n int) []domain.WireMessage {
	msgs := make([]domain.WireMessage, 0, n)
	for i := 0; i < n; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		msgs = append(msgs, domain.WireMessage{Role: role, Content: fmt.Sprintf("m%d", i)})
	}
	return msgs
}

func TestHistoryWindow_Apply(t *testing.T) {
	t.Run("pocos mensajes", func(t *testing.T) {
		msgs := conversationOf(3)
		if got := (HistoryWindow{Max: 10}).Apply(msgs); len(got) != 3 {
			t.Fatalf("expected untouched history, got %d", len(got))
		}
	})

	t.Run("recorta y empieza en usuario", func(t *testing.T) {
		// 11 mensajes: m0..m10, ventana de 4 -> m7(assistant) se descarta
		got := (HistoryWindow{Max: 4}).Apply(conversationOf(11))
		if len(got) != 3 || got[0].Content != "m8" || got[0].Role != domain.RoleUser {
			t.Fatalf("unexpected window: %+v", got)
		}
		if got[len(got)-1].Content != "m10" {
			t.Fatalf("last message must be kept, got %+v", got)
		}
	})

	t.Run("sin limite", func(t *testing.T) {
		if got := (HistoryWindow{}).Apply(conversationOf(50)); len(got) != 50 {
			t.Fatalf("expected no trimming, got %d", len(got))
		}
	})
}
