// Package notes renders structured insight results into the HTML note
// documents written back to the CRM.
package notes

import (
	"fmt"
	"strings"

	"github.com/lastro-co/insights-agent/internal/insights"
)

// placeholder is rendered for any empty list section; a section is never
// omitted.
const placeholder = "<li>—</li>"

// Render produces the note document for one insight result: a title
// block, the score/classification block, then one section per field.
// The output has no blank lines so the persisted note stays compact.
func Render(title string, r *insights.Result) string {
	label := r.InteractionLabel
	if label == "" {
		label = "-"
	}

	lines := []string{
		fmt.Sprintf("<h3>%s</h3>", title),
		"<ul>",
		fmt.Sprintf("<li><strong>Lead pré:</strong> %d &nbsp;|&nbsp; <strong>pós:</strong> %d</li>", r.LeadScorePre, r.LeadScorePos),
		fmt.Sprintf("<li><strong>Classificação:</strong> %s</li>", label),
		"</ul>",
		section("Resumo", r.SummaryBullets),
		section("Objeções", r.Objections),
		section("Sinais de fechamento", r.ClosingSignals),
		section("Próximos passos", stepDescriptions(r.NextSteps)),
		section("Recomendações", r.Recommendations),
		section("Trechos relevantes", r.TopSnippets),
	}
	return strings.Join(lines, "\n")
}

func section(heading string, items []string) string {
	return fmt.Sprintf("<h4>%s</h4><ul>%s</ul>", heading, listItems(items))
}

func listItems(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		fmt.Fprintf(&sb, "<li>%s</li>", item)
	}
	if sb.Len() == 0 {
		return placeholder
	}
	return sb.String()
}

func stepDescriptions(steps []insights.NextStep) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.Description)
	}
	return out
}
