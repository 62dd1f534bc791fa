package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"intake-chatbot/pkg"
)

// OutputKind tags what the model actually sent back.
type OutputKind int

const (
	// OutputPlain is a follow-up question or explanatory text, shown to the
	// user unmodified.
	OutputPlain OutputKind = iota
	// OutputDiagnosis is a valid structured differential diagnosis.
	OutputDiagnosis
)

// ModelOutput is the model reply resolved into a tagged variant, classified
// once by the parser rather than re-derived downstream.
type ModelOutput struct {
	Kind       OutputKind
	Text       string
	Candidates []pkg.DiagnosisCandidate
}

// ParseModelOutput attempts a strict JSON-array parse of the model text. The
// reply is a valid diagnosis iff the parse succeeds, the list is non-empty,
// and the first candidate has both a name and a chance. Anything else is a
// plain message; parse failures never propagate as errors. The engine checks
// shape only, never that the percentages sum to 100.
func ParseModelOutput(raw string) ModelOutput {
	trimmed := strings.TrimSpace(raw)

	var candidates []pkg.DiagnosisCandidate
	if err := json.Unmarshal([]byte(trimmed), &candidates); err == nil &&
		len(candidates) > 0 && candidates[0].Name != "" && candidates[0].Chance != "" {
		return ModelOutput{Kind: OutputDiagnosis, Text: trimmed, Candidates: candidates}
	}
	return ModelOutput{Kind: OutputPlain, Text: raw}
}

// FormatDiagnosis renders the user-facing summary: a numbered list of
// condition names with their likelihoods. Rationale text is kept in the raw
// payload for the detailed view, not shown here.
func FormatDiagnosis(candidates []pkg.DiagnosisCandidate) string {
	var b strings.Builder
	b.WriteString(DiagnosisLead)
	b.WriteString("\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "\n%d. %s (%s)", i+1, c.Name, c.Chance)
	}
	return b.String()
}
