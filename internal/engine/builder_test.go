package engine

import (
	"strings"
	"testing"

	"intake-chatbot/pkg"
)

func testProfile() *pkg.Profile {
	p := pkg.NewProfile()
	p.Gender = "male"
	p.Age = "42"
	p.Country = "Iran"
	p.State = "Tehran"
	p.Location = "urban"
	p.Conditions = []string{"hypertension"}
	p.Medication = "lisinopril"
	p.Allergies = "yes"
	p.AllergyTypes = "penicillin"
	p.SmokeDrink = "no"
	p.Exercise = "rarely"
	p.Sleep = "5-6 hours"
	return p
}

func TestBuildQuestionPrompt(t *testing.T) {
	p := testProfile()
	tracking := pkg.NewCoverageState()
	tracking.QuestionsAsked = 3
	tracking.QualityScore = 4
	tracking.Dimensions = pkg.DimensionSet{Timing: true, Severity: true}

	prompt := BuildQuestionPrompt(p, tracking, "my chest hurts", "location", []string{"When did it start?", "How severe is it?"})

	for _, want := range []string{
		`helping diagnose: "my chest hurts"`,
		"Questions asked: 3",
		"Quality responses received: 4",
		"Information areas covered: 2/7",
		"Next question focus: location",
		"42 male from Tehran, Iran",
		"Medical history: hypertension",
		"Medications: lisinopril",
		"When did it start? | How severe is it?",
		"ONE focused question about location",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildQuestionPromptDefaults(t *testing.T) {
	p := testProfile()
	p.Conditions = nil
	p.Medication = ""
	p.Allergies = ""

	prompt := BuildQuestionPrompt(p, pkg.NewCoverageState(), "headache", "severity", nil)
	if !strings.Contains(prompt, "Medical history: no conditions") {
		t.Error("empty conditions should render as 'no conditions'")
	}
	if !strings.Contains(prompt, "Medications: none") {
		t.Error("empty medication should render as 'none'")
	}
	if !strings.Contains(prompt, "Allergies: none") {
		t.Error("empty allergies should render as 'none'")
	}
}

func TestBuildConclusionPrompt(t *testing.T) {
	p := testProfile()
	history := []pkg.ChatMessage{
		{Role: pkg.RoleUser, Content: "my chest hurts"},
		{Role: pkg.RoleAssistant, Content: "When did it start?"},
		{Role: pkg.RoleUser, Content: "two days ago"},
		{Role: pkg.RoleUser, Content: "/result"},
	}

	prompt, err := BuildConclusionPrompt(p, history)
	if err != nil {
		t.Fatalf("BuildConclusionPrompt: %v", err)
	}

	if !strings.Contains(prompt, "--- USER PROFILE ---") {
		t.Error("missing profile section")
	}
	for _, want := range []string{
		`"gender": "male"`,
		`"country": "Iran"`,
		`"allergy_types": "penicillin"`,
		`"sleep": "5-6 hours"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("profile JSON missing %q", want)
		}
	}

	if !strings.Contains(prompt, "my chest hurts. two days ago") {
		t.Error("user messages should be joined with '. '")
	}
	if strings.Contains(prompt, "/result") {
		t.Error("control commands must not appear in the symptom list")
	}
	if strings.Contains(prompt, "When did it start?") {
		t.Error("assistant messages must not appear in the symptom list")
	}
	if !strings.Contains(prompt, `"chance": "X%"`) {
		t.Error("format instructions should carry literal percent placeholders")
	}
}

func TestBuildExplanationPrompt(t *testing.T) {
	prompt := BuildExplanationPrompt(`[{"name":"Migraine","chance":"70%"}]`, "what should I do now?")
	if !strings.Contains(prompt, "EXPLANATION MODE") {
		t.Error("missing mode banner")
	}
	if !strings.Contains(prompt, `LAST DIAGNOSIS PROVIDED: [{"name":"Migraine","chance":"70%"}]`) {
		t.Error("missing diagnosis payload")
	}
	if !strings.Contains(prompt, `USER QUESTION: "what should I do now?"`) {
		t.Error("missing user question")
	}
}

func TestStatusSummary(t *testing.T) {
	tracking := pkg.NewCoverageState()
	tracking.QuestionsAsked = 4
	tracking.QualityScore = 2
	tracking.Dimensions = pkg.DimensionSet{Timing: true, Location: true, Duration: true}

	got := StatusSummary(tracking)
	for _, want := range []string{
		"Questions answered: 4",
		"Quality responses: 2",
		"Information areas covered: 3/7",
		`"/proceed"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}
