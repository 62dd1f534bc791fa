package engine

// prompts.go collects the outbound prompt templates and the fixed user-facing
// messages. Keeping them in one file makes them easy to tweak without
// touching the turn logic.

const (
	// ApologyMessage is shown when the model boundary fails. The turn is not
	// persisted, so the user can simply re-send their message.
	ApologyMessage = "Sorry, I'm having trouble connecting right now. Please try again later."

	// ProceedWarning precedes a forced, low-confidence diagnosis.
	ProceedWarning = "Proceeding with limited information. Diagnosis accuracy may be reduced."

	// ConclusionFallback is shown when a conclusion request came back as
	// something other than the structured diagnosis list.
	ConclusionFallback = "I'll analyze your symptoms and provide a conclusion."

	// DiagnosisLead opens every diagnosis summary. The prune step keys on the
	// "possible conditions" phrase to drop superseded diagnosis messages.
	DiagnosisLead = "Based on our conversation, here are the possible conditions:"

	// DetailRequestMessage is the local short-circuit reply for sessions with
	// many questions but too little substance. No model call is made.
	DetailRequestMessage = `I understand you might prefer brief answers, but I need more detailed information to provide an accurate diagnosis.

Without sufficient details about your symptoms (timing, severity, triggers, etc.), I cannot responsibly offer a medical assessment.

Could you please provide more specific details about your condition? For example:
- When did it start exactly?
- How severe is it on a scale of 1-10?
- What makes it better or worse?

This will help me give you the most accurate possible assessment.`
)

// statusSummaryTemplate answers a /result request that arrives before the
// readiness gate opens. Verbs: questions asked, quality sum, covered count.
const statusSummaryTemplate = `I need more information for an accurate diagnosis.

Current status:
- Questions answered: %d
- Quality responses: %d
- Information areas covered: %d/7

Send "/proceed" if you want me to make an assessment with limited information (Note: this will be less accurate).

Otherwise, please continue answering questions for a better diagnosis.`

// questionPromptTemplate drives one information-gathering turn. The
// thresholds quoted in the instructions are intentionally stricter than the
// engine's own readiness gate; the two policies operate independently at
// different layers. Verbs: first reported symptom, questions asked, quality
// sum, covered count, focus, age, gender, state, country, conditions,
// medication, allergies, recent questions, focus again.
const questionPromptTemplate = `You are a medical AI assistant helping diagnose: "%s"

CURRENT DIAGNOSTIC STATE:
- Questions asked: %d
- Quality responses received: %d
- Information areas covered: %d/7
- Next question focus: %s

User Profile: %s %s from %s, %s.
Medical history: %s
Medications: %s
Allergies: %s

RECENT BOT QUESTIONS (DON'T REPEAT):
%s

CRITICAL INSTRUCTIONS:
1. Ask ONE focused question about %s (keep it under 20 words)
2. Be empathetic and encouraging
3. If user gives short answers, gently ask for more detailed information
4. You MUST gather thorough information before diagnosing - need at least 6/7 areas covered, 8+ quality responses, and 12+ questions
5. NEVER provide diagnosis prematurely - keep asking detailed questions until you have comprehensive information
6. DON'T repeat questions that have been answered or asked recently
7. Encourage longer, more descriptive responses when users give brief answers

Ask your next question now:`

// conclusionPromptTemplate requests the structured differential diagnosis.
// Verbs: profile JSON, concatenated user messages.
const conclusionPromptTemplate = `You are a medical AI assistant. Analyze the user's profile and symptoms to provide a diagnosis conclusion.

--- USER PROFILE ---
%s

--- ALL SYMPTOMS REPORTED ---
%s

--- TASK ---
Based on the user's profile and all symptoms discussed, provide ONLY a JSON array with the 3 most likely medical conditions.

Respond ONLY with this exact JSON format (no other text):

[
  {
    "name": "Most Likely Condition Name",
    "chance": "X%%",
    "reason": "Brief explanation based on symptoms and profile"
  },
  {
    "name": "Second Possible Condition Name",
    "chance": "Y%%",
    "reason": "Brief explanation"
  },
  {
    "name": "Third Possible Condition Name",
    "chance": "Z%%",
    "reason": "Brief explanation"
  }
]

Make sure percentages add up to 100%% and provide real medical condition names based on the symptoms.`

// explanationPromptTemplate drives turns after a diagnosis has been issued.
// Verbs: last diagnosis payload, user question.
const explanationPromptTemplate = `You are a medical AI assistant in EXPLANATION MODE. The user has received a diagnosis and now wants more information.

LAST DIAGNOSIS PROVIDED: %s

USER QUESTION: "%s"

INSTRUCTIONS:
1. Answer the user's question about the diagnosed conditions
2. Provide clear, educational explanations
3. Suggest next steps (see a doctor, treatment options, prevention)
4. Be supportive and informative
5. Don't provide new diagnoses - explain the existing ones

Respond helpfully to their question:`
