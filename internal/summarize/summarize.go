// Package summarize turns a version edit (previous text, next text, author
// notes) into a natural-language changelog via a text generator.
package summarize

import (
	"context"
	"fmt"
)

// ContentBudget is the per-blob rune budget for the prompt. Tail content
// beyond it is dropped; there is no sliding window or multi-chunk pass.
const ContentBudget = 8000

// Generator produces text for a single prompt. Implemented by
// llmclient.RouterGenerator and llmclient.GeminiGenerator.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service builds changelog prompts and runs them through a Generator.
type Service struct {
	gen Generator
}

func New(gen Generator) *Service {
	return &Service{gen: gen}
}

// AutoSummarize asks the generator for a changelog of prev -> next. Best
// effort: generator failures propagate uncaught, and a malformed or empty
// provider response comes back as "".
func (s *Service) AutoSummarize(ctx context.Context, prev, next, notes string) (string, error) {
	prompt := fmt.Sprintf(
		"You write crisp changelogs.\n1) One-line summary\n2) 3-6 key changes\n3) Impact/Risks\n4) Reference user notes if useful.\n\nPREV:\n%s\n\nNEW:\n%s\n\nNOTES:\n%s",
		truncate(prev, ContentBudget),
		truncate(next, ContentBudget),
		notes,
	)
	return s.gen.Generate(ctx, prompt)
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
