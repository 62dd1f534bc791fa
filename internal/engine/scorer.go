package engine

import (
	"regexp"
	"strings"

	"intake-chatbot/pkg"
)

// Cue vocabularies for the seven clinical dimensions. Matching is
// case-insensitive on word boundaries and non-exclusive: one message can set
// several dimensions at once.
var (
	timingCues     = regexp.MustCompile(`(?i)\b(started|began|since|ago|yesterday|today|week|month|day|morning|evening)\b`)
	severityCues   = regexp.MustCompile(`(?i)\b(severe|mild|moderate|intense|terrible|unbearable|slight|bad|worse|better|scale|out of|pain level)\b`)
	triggerCues    = regexp.MustCompile(`(?i)\b(when|after|before|during|makes|triggers|worse|better|eating|walking|lying|sitting|movement)\b`)
	associatedCues = regexp.MustCompile(`(?i)\b(also|along with|together|plus|nausea|headache|fever|swelling|rash|numbness|tingling)\b`)
	locationCues   = regexp.MustCompile(`(?i)\b(left|right|upper|lower|back|front|side|chest|head|leg|arm|stomach|abdomen)\b`)
	durationCues   = regexp.MustCompile(`(?i)\b(lasts|duration|hours|minutes|seconds|all day|constant|comes and goes|intermittent)\b`)
	patternCues    = regexp.MustCompile(`(?i)\b(daily|weekly|monthly|pattern|regular|irregular|random|cyclical|morning|evening|night)\b`)

	// One-word acknowledgements that carry no diagnostic signal regardless
	// of anything else. Exact match after trimming.
	ackWords = regexp.MustCompile(`(?i)^(yes|no|maybe|ok|fine|good|bad|sure|right|correct)$`)
)

// Assessment is the outcome of scoring one user message.
type Assessment struct {
	Score      int
	Engagement pkg.Engagement
	Dimensions pkg.DimensionSet
}

// ScoreResponse classifies one free-text user message: a quality score in
// {0,1,2}, an engagement tier, and the set of clinical dimensions the message
// touches. Dimension detection runs even for low-quality messages; a terse
// "since yesterday" still covers timing.
func ScoreResponse(message string) Assessment {
	a := Assessment{
		Dimensions: pkg.DimensionSet{
			Timing:     timingCues.MatchString(message),
			Severity:   severityCues.MatchString(message),
			Triggers:   triggerCues.MatchString(message),
			Associated: associatedCues.MatchString(message),
			Location:   locationCues.MatchString(message),
			Duration:   durationCues.MatchString(message),
			Pattern:    patternCues.MatchString(message),
		},
	}

	words := len(strings.Fields(message))
	switch {
	case words < 5 || ackWords.MatchString(strings.TrimSpace(message)):
		a.Score = 0
		a.Engagement = pkg.EngagementLow
	case words < 15:
		a.Score = 1
		a.Engagement = pkg.EngagementMedium
	default:
		a.Score = 2
		a.Engagement = pkg.EngagementHigh
	}
	return a
}
