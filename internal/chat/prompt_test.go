package chat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/firebase/genkit/go/ai"
)

func messageText(m *ai.Message) string {
	var sb strings.Builder
	for _, p := range m.Content {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

func TestBuildMessages_Structure(t *testing.T) {
	req := Request{Question: "¿Dónde ha trabajado?", Language: "es"}
	sources := []Source{
		{ChunkID: 1, Similarity: 0.92, Excerpt: "Ingeniero backend en Acme."},
		{ChunkID: 4, Similarity: 0.81, Excerpt: "Proyectos de microservicios."},
	}

	messages := buildMessages(req, sources)
	if len(messages) != 2 {
		t.Fatalf("len(messages) = %d, want system + user", len(messages))
	}
	if messages[0].Role != ai.RoleSystem {
		t.Errorf("messages[0].Role = %q, want system", messages[0].Role)
	}

	user := messageText(messages[1])
	if !strings.Contains(user, "CONTEXTO RECUPERADO:") {
		t.Error("user turn missing context header")
	}
	if !strings.Contains(user, "PREGUNTA DEL USUARIO:\n¿Dónde ha trabajado?") {
		t.Error("user turn missing question")
	}
	if !strings.Contains(user, "[Fragmento 1] (relevancia: 0.92)") ||
		!strings.Contains(user, "[Fragmento 2] (relevancia: 0.81)") {
		t.Errorf("user turn missing numbered fragments:\n%s", user)
	}
	if !strings.Contains(user, "\n\n---\n\n") {
		t.Error("fragments not separated")
	}
}

func TestBuildMessages_LanguageSelectsPersona(t *testing.T) {
	es := messageText(buildMessages(Request{Question: "q"}, nil)[0])
	if !strings.Contains(es, "Responde en español") {
		t.Error("default persona is not Spanish")
	}
	en := messageText(buildMessages(Request{Question: "q", Language: "en"}, nil)[0])
	if !strings.Contains(en, "Answer in English") {
		t.Error("en persona is not English")
	}
}

func TestBuildMessages_HistoryTruncation(t *testing.T) {
	var history []Message
	for i := range 10 {
		role := "user"
		if i%2 == 1 {
			role = "model"
		}
		history = append(history, Message{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}

	messages := buildMessages(Request{Question: "q", History: history}, nil)
	// system + 6 most recent turns + final user turn
	if len(messages) != 8 {
		t.Fatalf("len(messages) = %d, want 8", len(messages))
	}
	if got := messageText(messages[1]); got != "turn 4" {
		t.Errorf("first replayed turn = %q, want turn 4", got)
	}
	if messages[2].Role != ai.RoleModel {
		t.Errorf("messages[2].Role = %q, want model", messages[2].Role)
	}
}

func TestBuildMessages_SkipsEmptyHistoryTurns(t *testing.T) {
	history := []Message{
		{Role: "user", Content: "real turn"},
		{Role: "model", Content: "   "},
	}
	messages := buildMessages(Request{Question: "q", History: history}, nil)
	if len(messages) != 3 {
		t.Fatalf("len(messages) = %d, want blank turn dropped", len(messages))
	}
}

func TestFormatContext_Empty(t *testing.T) {
	got := formatContext(nil)
	if !strings.Contains(got, "No se encontró") {
		t.Errorf("formatContext(nil) = %q, want empty-context notice", got)
	}
}
