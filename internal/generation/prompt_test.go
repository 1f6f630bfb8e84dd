package generation

import (
	"strings"
	"testing"
)

func TestPrompt_Render(t *testing.T) {
	p := Prompt{
		Content:  "Tickets are refundable within 24 hours.",
		Question: "Can I get a refund?",
		Language: "en",
	}
	got := p.Render()
	for _, want := range []string{
		"self-service",
		"Tickets are refundable within 24 hours.",
		"Can I get a refund?",
		"in English",
		"strictly in English",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestPrompt_RenderVietnamese(t *testing.T) {
	p := Prompt{Content: "c", Question: "q", Language: "vi"}
	if got := p.Render(); !strings.Contains(got, "Vietnamese") {
		t.Errorf("prompt missing language name:\n%s", got)
	}
}

func TestLanguageName_Unknown(t *testing.T) {
	if got := languageName("fr"); got != "fr" {
		t.Errorf("languageName(fr)=%q", got)
	}
}
