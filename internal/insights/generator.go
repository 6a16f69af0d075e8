package insights

import (
	"context"
	"log/slog"

	"github.com/lastro-co/insights-agent/internal/hubspot"
)

// Generator produces one structured insight result from a set of
// per-channel transcripts. A single populated entry is the single-source
// form; multiple entries are the consolidated cross-channel form.
type Generator interface {
	Generate(ctx context.Context, transcripts map[hubspot.Channel]string) (*Result, error)
}

// LLM is the completion surface the generator needs. *openai.Client
// satisfies it.
type LLM interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type llmGenerator struct {
	llm    LLM
	logger *slog.Logger
}

func NewGenerator(llm LLM, logger *slog.Logger) Generator {
	return &llmGenerator{llm: llm, logger: logger}
}

func (g *llmGenerator) Generate(ctx context.Context, transcripts map[hubspot.Channel]string) (*Result, error) {
	prompt := buildPrompt(transcripts)

	g.logger.Debug("generating insights",
		"sources", len(transcripts),
		"prompt_len", len(prompt),
	)

	raw, err := g.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	result, err := ParseResult(raw)
	if err != nil {
		g.logger.Error("failed to parse generation response", "error", err, "raw", raw)
		return nil, err
	}
	return result, nil
}
