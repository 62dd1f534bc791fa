package engine

import "intake-chatbot/pkg"

// Readiness thresholds. Any single condition is sufficient: the gate is a
// deliberately permissive OR, trading completeness for responsiveness.
const (
	readyDimensionCount = 5
	readyQualitySum     = 6
	readyQuestionCount  = 8
)

// RecordReply folds one scored user reply into the coverage state: the score
// is added to the running sum, the detected dimensions are ORed in, and the
// engagement tier is replaced (it reflects the latest message only).
func RecordReply(t *pkg.CoverageState, a Assessment) {
	t.QualityScore += a.Score
	t.Dimensions.Merge(a.Dimensions)
	t.Engagement = a.Engagement
}

// Ready reports whether enough diagnostic signal has been gathered to request
// a structured diagnosis. It is recomputed from scratch every turn, never
// cached.
func Ready(t pkg.CoverageState) bool {
	return t.Dimensions.Count() >= readyDimensionCount ||
		t.QualityScore >= readyQualitySum ||
		t.QuestionsAsked >= readyQuestionCount
}

// NextFocus picks the dimension the next question should target: the first
// not-yet-covered one in priority order, or "general symptoms" once all seven
// are covered.
func NextFocus(d pkg.DimensionSet) string {
	switch {
	case !d.Severity:
		return "severity"
	case !d.Timing:
		return "timing"
	case !d.Location:
		return "location"
	case !d.Duration:
		return "duration"
	case !d.Triggers:
		return "triggers"
	case !d.Associated:
		return "associated symptoms"
	case !d.Pattern:
		return "pattern"
	default:
		return "general symptoms"
	}
}
