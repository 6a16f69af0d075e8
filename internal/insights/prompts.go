package insights

import (
	"fmt"
	"strings"

	"github.com/lastro-co/insights-agent/internal/hubspot"
)

const systemPrompt = `Analista de vendas. Responda apenas JSON válido em pt-BR.`

const schemaExample = `{
  "resumo_bullets": ["..."],
  "principais_objeções": ["preço", "prioridade"],
  "sinais_fechamento": ["timeline", "budget", "pedido_proposta", "multi-stakeholder"],
  "proximos_passos": [{"descricao": "Enviar proposta", "prazo_iso": ""}],
  "label_interacao": "ruim|ok|boa",
  "lead_scoring_pre": 60,
  "lead_scoring_pos": 80,
  "recomendacoes": ["Agendar follow-up em 48h"],
  "top_snippets": ["cliente: 'temos orçamento'"]
}`

var channelHeadings = map[hubspot.Channel]string{
	hubspot.ChannelChat:     "Transcript (WhatsApp Cooby)",
	hubspot.ChannelCalls:    "Resumo das ligações",
	hubspot.ChannelMeetings: "Notas de reunião",
}

// buildPrompt assembles the user prompt from the supplied transcripts.
// Channels map to fixed pt-BR headings in a stable order; an empty
// transcript renders its section with an empty body so the combined form
// always presents all three sources.
func buildPrompt(transcripts map[hubspot.Channel]string) string {
	var sb strings.Builder
	for _, ch := range hubspot.Channels {
		text, ok := transcripts[ch]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "%s:\n<<<\n%s\n>>>\n", channelHeadings[ch], text)
	}
	sb.WriteString("Retorne SOMENTE JSON seguindo este formato:\n")
	sb.WriteString(schemaExample)
	return sb.String()
}
