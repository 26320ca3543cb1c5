package summarize

import (
	"context"
	"strings"
	"testing"
)

type captureGenerator struct {
	prompt string
	out    string
	err    error
}

func (g *captureGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.out, g.err
}

func TestAutoSummarize_RendersTemplate(t *testing.T) {
	gen := &captureGenerator{out: "summary"}
	svc := New(gen)

	out, err := svc.AutoSummarize(context.Background(), "old text", "new text", "bumped deps")
	if err != nil {
		t.Fatalf("auto summarize: %v", err)
	}
	if out != "summary" {
		t.Fatalf("out = %q", out)
	}
	for _, want := range []string{
		"You write crisp changelogs.",
		"1) One-line summary",
		"2) 3-6 key changes",
		"3) Impact/Risks",
		"4) Reference user notes if useful.",
		"PREV:\nold text",
		"NEW:\nnew text",
		"NOTES:\nbumped deps",
	} {
		if !strings.Contains(gen.prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, gen.prompt)
		}
	}
}

func TestAutoSummarize_TruncatesToBudget(t *testing.T) {
	gen := &captureGenerator{}
	svc := New(gen)

	long := strings.Repeat("x", ContentBudget+500)
	if _, err := svc.AutoSummarize(context.Background(), long, long, ""); err != nil {
		t.Fatalf("auto summarize: %v", err)
	}
	if strings.Contains(gen.prompt, strings.Repeat("x", ContentBudget+1)) {
		t.Fatalf("prompt contains more than %d runes of content", ContentBudget)
	}
	if !strings.Contains(gen.prompt, strings.Repeat("x", ContentBudget)) {
		t.Fatalf("prompt should keep the first %d runes", ContentBudget)
	}
}
