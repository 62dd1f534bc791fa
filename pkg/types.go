package pkg

import (
	"encoding/json"
	"errors"
	"sort"
	"time"
)

// MessageRole describes who authored a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is one entry in a session transcript. Messages are append-only;
// the only mutations are the bounded-retention trim and the bulk prune of
// superseded diagnosis messages.
type ChatMessage struct {
	Content   string      `json:"content"`
	Role      MessageRole `json:"role"`
	Timestamp time.Time   `json:"timestamp"`
}

// ConversationMode is the phase of the intake conversation.
type ConversationMode string

const (
	// ModeGathering collects symptom information turn by turn.
	ModeGathering ConversationMode = "gathering"
	// ModeExplanation answers questions about an already issued diagnosis.
	ModeExplanation ConversationMode = "explanation"
)

// Engagement classifies how much signal the latest user message carried.
type Engagement string

const (
	EngagementLow    Engagement = "low"
	EngagementMedium Engagement = "medium"
	EngagementHigh   Engagement = "high"
)

// DimensionSet tracks which of the seven clinical information dimensions
// have been covered so far. Flags are only ever set, never cleared, within
// a session.
type DimensionSet struct {
	Timing     bool `json:"timing"`
	Severity   bool `json:"severity"`
	Triggers   bool `json:"triggers"`
	Associated bool `json:"associated"`
	Location   bool `json:"location"`
	Duration   bool `json:"duration"`
	Pattern    bool `json:"pattern"`
}

// NumDimensions is the number of tracked clinical dimensions.
const NumDimensions = 7

// Merge ORs the flags of other into d.
func (d *DimensionSet) Merge(other DimensionSet) {
	d.Timing = d.Timing || other.Timing
	d.Severity = d.Severity || other.Severity
	d.Triggers = d.Triggers || other.Triggers
	d.Associated = d.Associated || other.Associated
	d.Location = d.Location || other.Location
	d.Duration = d.Duration || other.Duration
	d.Pattern = d.Pattern || other.Pattern
}

// Count returns the number of covered dimensions.
func (d DimensionSet) Count() int {
	n := 0
	for _, set := range []bool{d.Timing, d.Severity, d.Triggers, d.Associated, d.Location, d.Duration, d.Pattern} {
		if set {
			n++
		}
	}
	return n
}

// QuestionSet is a set of normalized question fingerprints. It serializes as
// a sorted JSON array and deduplicates on load, so set semantics survive a
// save/restore round trip.
type QuestionSet map[string]struct{}

func (s QuestionSet) Add(key string) {
	if key == "" {
		return
	}
	s[key] = struct{}{}
}

func (s QuestionSet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s QuestionSet) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return json.Marshal(keys)
}

func (s *QuestionSet) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	set := make(QuestionSet, len(keys))
	for _, k := range keys {
		set.Add(k)
	}
	*s = set
	return nil
}

// Clone returns an independent copy of the set.
func (s QuestionSet) Clone() QuestionSet {
	out := make(QuestionSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// CoverageState is the running diagnostic-signal state of one session. It is
// persisted alongside the profile and restored verbatim.
type CoverageState struct {
	QuestionsAsked    int              `json:"questions_asked"`
	QualityScore      int              `json:"quality_score"`
	Dimensions        DimensionSet     `json:"dimensions"`
	Engagement        Engagement       `json:"engagement"`
	ReadyForDiagnosis bool             `json:"ready_for_diagnosis"`
	Mode              ConversationMode `json:"mode"`
	DiagnosisIssued   bool             `json:"diagnosis_issued"`
	LastDiagnosis     string           `json:"last_diagnosis,omitempty"`
	AskedQuestions    QuestionSet      `json:"asked_questions"`
}

// NewCoverageState returns the zero state of a fresh session.
func NewCoverageState() CoverageState {
	return CoverageState{
		Engagement:     EngagementLow,
		Mode:           ModeGathering,
		AskedQuestions: make(QuestionSet),
	}
}

// Clone returns a deep copy, so a turn can be computed on a working copy and
// committed only once the whole turn has succeeded.
func (c CoverageState) Clone() CoverageState {
	out := c
	out.AskedQuestions = c.AskedQuestions.Clone()
	return out
}

// DiagnosisCandidate is one entry of the model's structured differential
// diagnosis. Field names match the model wire format exactly.
type DiagnosisCandidate struct {
	Name   string `json:"name"`
	Chance string `json:"chance"`
	Reason string `json:"reason"`
}

// Profile holds the structured intake answers plus the running transcript
// and coverage state for one session.
type Profile struct {
	Gender             string        `json:"gender"`
	Age                string        `json:"age"`
	Country            string        `json:"country"`
	State              string        `json:"state"`
	Location           string        `json:"location"`
	Conditions         []string      `json:"conditions"`
	OtherConditionText string        `json:"other_condition_text,omitempty"`
	Medication         string        `json:"medication"`
	Allergies          string        `json:"allergies"`
	AllergyTypes       string        `json:"allergy_types,omitempty"`
	SmokeDrink         string        `json:"smoke_drink"`
	Exercise           string        `json:"exercise"`
	Sleep              string        `json:"sleep"`
	ChatHistory        []ChatMessage `json:"chat_history"`
	Tracking           CoverageState `json:"tracking"`
	LastUpdated        time.Time     `json:"last_updated"`
}

// NewProfile returns an empty profile with initialized tracking state.
func NewProfile() *Profile {
	return &Profile{Tracking: NewCoverageState()}
}

// ConditionNone and ConditionOther are the two special entries of the
// condition multi-select.
const (
	ConditionNone  = "none"
	ConditionOther = "others"
)

// Validate checks the profile field invariants. It does not require the
// profile to be complete; Complete covers that separately.
func (p *Profile) Validate() error {
	hasNone, hasOther, others := false, false, 0
	for _, c := range p.Conditions {
		switch c {
		case ConditionNone:
			hasNone = true
		case ConditionOther:
			hasOther = true
			others++
		default:
			others++
		}
	}
	if hasNone && others > 0 {
		return errors.New(`condition "none" cannot be combined with other conditions`)
	}
	if hasOther && p.OtherConditionText == "" {
		return errors.New(`condition "others" requires a description`)
	}
	if p.Allergies == "yes" && p.AllergyTypes == "" {
		return errors.New("allergy details are required when allergies is yes")
	}
	if p.Allergies != "yes" && p.AllergyTypes != "" {
		return errors.New("allergy details are only allowed when allergies is yes")
	}
	return nil
}

// Complete reports whether every required intake field has been answered.
// A complete profile resumes directly into chat; an incomplete one restarts
// the wizard.
func (p *Profile) Complete() bool {
	required := []string{
		p.Gender, p.Age, p.State, p.Location,
		p.Medication, p.Allergies, p.SmokeDrink, p.Exercise, p.Sleep,
	}
	for _, f := range required {
		if f == "" {
			return false
		}
	}
	return true
}

// ChatRequest is the body of a message turn.
type ChatRequest struct {
	Content string `json:"content"`
}

// TrackingSummary is the client-facing view of the coverage state.
type TrackingSummary struct {
	QuestionsAsked    int              `json:"questions_asked"`
	QualityScore      int              `json:"quality_score"`
	DimensionsCovered int              `json:"dimensions_covered"`
	Ready             bool             `json:"ready"`
	Mode              ConversationMode `json:"mode"`
	DiagnosisIssued   bool             `json:"diagnosis_issued"`
}

// Summary condenses the coverage state for responses.
func (c CoverageState) Summary() TrackingSummary {
	return TrackingSummary{
		QuestionsAsked:    c.QuestionsAsked,
		QualityScore:      c.QualityScore,
		DimensionsCovered: c.Dimensions.Count(),
		Ready:             c.ReadyForDiagnosis,
		Mode:              c.Mode,
		DiagnosisIssued:   c.DiagnosisIssued,
	}
}

// ChatResponse carries the assistant replies produced by one turn.
type ChatResponse struct {
	Replies   []ChatMessage        `json:"replies"`
	Diagnosis []DiagnosisCandidate `json:"diagnosis,omitempty"`
	Tracking  TrackingSummary      `json:"tracking"`
}
