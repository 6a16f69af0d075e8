package insights

import "encoding/json"

// NextStep is one recommended follow-up action.
type NextStep struct {
	Description string `json:"descricao"`
	DueDateISO  string `json:"prazo_iso"`
}

// Result is the structured insight produced by one generation call. The
// JSON keys are the pt-BR wire schema the model is prompted with. Fields
// the model omits default to empty values, never nil slices.
type Result struct {
	SummaryBullets   []string   `json:"resumo_bullets"`
	Objections       []string   `json:"principais_objeções"`
	ClosingSignals   []string   `json:"sinais_fechamento"`
	NextSteps        []NextStep `json:"proximos_passos"`
	InteractionLabel string     `json:"label_interacao"`
	LeadScorePre     int        `json:"lead_scoring_pre"`
	LeadScorePos     int        `json:"lead_scoring_pos"`
	Recommendations  []string   `json:"recomendacoes"`
	TopSnippets      []string   `json:"top_snippets"`
}

// GenerationError indicates the generation collaborator failed or
// returned content that is not the expected structured object.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "generation: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

// ParseResult validates raw model output as a well-formed Result.
// Missing fields are defaulted; anything unparseable is a GenerationError.
func ParseResult(raw string) (*Result, error) {
	var r Result
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, &GenerationError{Err: err}
	}

	if r.SummaryBullets == nil {
		r.SummaryBullets = []string{}
	}
	if r.Objections == nil {
		r.Objections = []string{}
	}
	if r.ClosingSignals == nil {
		r.ClosingSignals = []string{}
	}
	if r.NextSteps == nil {
		r.NextSteps = []NextStep{}
	}
	if r.Recommendations == nil {
		r.Recommendations = []string{}
	}
	if r.TopSnippets == nil {
		r.TopSnippets = []string{}
	}
	return &r, nil
}
