package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"intake-chatbot/pkg"
)

// BuildQuestionPrompt assembles the prompt for one gathering turn: the first
// reported symptom as context anchor, the numeric tracking state, the chosen
// focus, a profile summary, and the recent assistant questions the model must
// not repeat.
func BuildQuestionPrompt(p *pkg.Profile, t pkg.CoverageState, firstUserMessage, focus string, recentQuestions []string) string {
	conditions := strings.Join(p.Conditions, ", ")
	if conditions == "" {
		conditions = "no conditions"
	}
	medication := p.Medication
	if medication == "" {
		medication = "none"
	}
	allergies := p.Allergies
	if allergies == "" {
		allergies = "none"
	}
	return fmt.Sprintf(questionPromptTemplate,
		firstUserMessage,
		t.QuestionsAsked,
		t.QualityScore,
		t.Dimensions.Count(),
		focus,
		p.Age, p.Gender, p.State, p.Country,
		conditions,
		medication,
		allergies,
		strings.Join(recentQuestions, " | "),
		focus,
	)
}

// conclusionProfile is the grouped profile shape embedded in conclusion
// prompts.
type conclusionProfile struct {
	Demographics struct {
		Gender string `json:"gender"`
		Age    string `json:"age"`
	} `json:"demographics"`
	Geography struct {
		Country  string `json:"country"`
		State    string `json:"state"`
		Location string `json:"location"`
	} `json:"geography"`
	Medical struct {
		Conditions         []string `json:"conditions"`
		OtherConditionText string   `json:"other_condition_text"`
		Medication         string   `json:"medication"`
		Allergies          string   `json:"allergies"`
		AllergyTypes       string   `json:"allergy_types"`
	} `json:"medical"`
	Lifestyle struct {
		SmokeDrink string `json:"smoke_drink"`
		Exercise   string `json:"exercise"`
		Sleep      string `json:"sleep"`
	} `json:"lifestyle"`
}

// BuildConclusionPrompt assembles the prompt that demands the structured
// 3-candidate diagnosis. It embeds the full profile and every user message in
// the transcript, excluding control commands.
func BuildConclusionPrompt(p *pkg.Profile, history []pkg.ChatMessage) (string, error) {
	var cp conclusionProfile
	cp.Demographics.Gender = p.Gender
	cp.Demographics.Age = p.Age
	cp.Geography.Country = p.Country
	cp.Geography.State = p.State
	cp.Geography.Location = p.Location
	cp.Medical.Conditions = p.Conditions
	cp.Medical.OtherConditionText = p.OtherConditionText
	cp.Medical.Medication = p.Medication
	cp.Medical.Allergies = p.Allergies
	cp.Medical.AllergyTypes = p.AllergyTypes
	cp.Lifestyle.SmokeDrink = p.SmokeDrink
	cp.Lifestyle.Exercise = p.Exercise
	cp.Lifestyle.Sleep = p.Sleep

	profileJSON, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile: %w", err)
	}

	var symptoms []string
	for _, m := range history {
		if m.Role != pkg.RoleUser || isCommand(m.Content) {
			continue
		}
		symptoms = append(symptoms, m.Content)
	}

	return fmt.Sprintf(conclusionPromptTemplate, profileJSON, strings.Join(symptoms, ". ")), nil
}

// BuildExplanationPrompt assembles the prompt for a turn in explanation mode.
func BuildExplanationPrompt(lastDiagnosis, userMessage string) string {
	return fmt.Sprintf(explanationPromptTemplate, lastDiagnosis, userMessage)
}

// StatusSummary is the local reply to a /result request that arrives before
// the readiness gate opens.
func StatusSummary(t pkg.CoverageState) string {
	return fmt.Sprintf(statusSummaryTemplate, t.QuestionsAsked, t.QualityScore, t.Dimensions.Count())
}
