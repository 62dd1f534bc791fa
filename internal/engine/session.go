package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"intake-chatbot/internal/llm"
	"intake-chatbot/internal/metrics"
	"intake-chatbot/pkg"
)

const (
	// historyLimit bounds the retained transcript; oldest messages drop first.
	historyLimit = 30
	// historyWindow is how many recent messages accompany a model call.
	historyWindow = 10
	// recentQuestionCount is how many raw assistant messages are embedded in
	// question prompts as do-not-repeat context.
	recentQuestionCount = 5

	// Stall detection: many questions asked but almost no substance received.
	stallQuestionThreshold = 8
	stallQualityFloor      = 4
)

// Control commands recognized in raw user text, case-insensitive after trim.
const (
	commandResult  = "/result"
	commandProceed = "/proceed"
)

var (
	// ErrEmptyMessage rejects blank input before any state is touched.
	ErrEmptyMessage = errors.New("empty message")
	// ErrModelUnavailable wraps any model boundary failure. The turn is
	// discarded whole; coverage state and history are left untouched.
	ErrModelUnavailable = errors.New("model backend unavailable")
)

// Session processes the turns of one conversation. Turns are serialized by
// the caller; nothing here is safe for concurrent use on the same profile.
type Session struct {
	profile *pkg.Profile
	llm     llm.Client
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewSession wraps a loaded profile for turn processing. metrics may be nil.
func NewSession(profile *pkg.Profile, client llm.Client, log zerolog.Logger, m *metrics.Metrics) *Session {
	if profile.Tracking.Mode == "" {
		profile.Tracking = pkg.NewCoverageState()
	}
	if profile.Tracking.AskedQuestions == nil {
		profile.Tracking.AskedQuestions = make(pkg.QuestionSet)
	}
	return &Session{
		profile: profile,
		llm:     client,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// TurnResult is what one user turn produced.
type TurnResult struct {
	Replies   []pkg.ChatMessage
	Diagnosis []pkg.DiagnosisCandidate
}

type inbound int

const (
	inboundPlain inbound = iota
	inboundResult
	inboundProceed
)

func classifyInbound(text string) inbound {
	switch strings.ToLower(text) {
	case commandResult:
		return inboundResult
	case commandProceed:
		return inboundProceed
	default:
		return inboundPlain
	}
}

func isCommand(text string) bool {
	return classifyInbound(strings.TrimSpace(text)) != inboundPlain
}

// ProcessTurn runs one full user turn: command interception, scoring,
// readiness evaluation, prompt construction, the model call, response
// classification, and history bookkeeping. All mutations happen on working
// copies and are committed only when the turn has fully succeeded, so a
// failed model call leaves the session exactly as it was.
func (s *Session) ProcessTurn(ctx context.Context, input string) (*TurnResult, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	switch classifyInbound(text) {
	case inboundResult:
		return s.resultCommand(ctx)
	case inboundProceed:
		return s.proceedCommand(ctx)
	default:
		return s.plainTurn(ctx, text)
	}
}

func (s *Session) plainTurn(ctx context.Context, text string) (*TurnResult, error) {
	assessment := ScoreResponse(text)
	tracking := s.profile.Tracking.Clone()
	RecordReply(&tracking, assessment)
	tracking.ReadyForDiagnosis = Ready(tracking)

	history := appendBounded(cloneHistory(s.profile.ChatHistory), s.message(pkg.RoleUser, text))

	s.log.Debug().
		Int("score", assessment.Score).
		Str("engagement", string(assessment.Engagement)).
		Int("dimensions", tracking.Dimensions.Count()).
		Bool("ready", tracking.ReadyForDiagnosis).
		Msg("scored user message")

	if tracking.ReadyForDiagnosis && !tracking.DiagnosisIssued {
		return s.conclude(ctx, tracking, history)
	}
	if tracking.Mode == pkg.ModeExplanation {
		return s.explain(ctx, tracking, history, text)
	}
	return s.question(ctx, tracking, history, text)
}

// question runs one gathering turn: pick the next uncovered dimension, build
// the question prompt, and relay the model's follow-up question.
func (s *Session) question(ctx context.Context, tracking pkg.CoverageState, history []pkg.ChatMessage, text string) (*TurnResult, error) {
	tracking.QuestionsAsked++

	if tracking.QuestionsAsked >= stallQuestionThreshold && tracking.QualityScore < stallQualityFloor {
		reply := s.message(pkg.RoleAssistant, DetailRequestMessage)
		s.commit(tracking, appendBounded(history, reply))
		s.countTurn("stall")
		return &TurnResult{Replies: []pkg.ChatMessage{reply}}, nil
	}

	focus := NextFocus(tracking.Dimensions)
	prompt := BuildQuestionPrompt(s.profile, tracking, firstUserMessage(history, text), focus, RecentAssistantMessages(history, recentQuestionCount))

	raw, err := s.complete(ctx, prompt, recentWire(history))
	if err != nil {
		return nil, err
	}

	out := ParseModelOutput(raw)
	if out.Kind == OutputDiagnosis {
		// The model concluded on its own despite the instructions.
		return s.acceptDiagnosis(tracking, history, out), nil
	}

	tracking.AskedQuestions.Add(NormalizeQuestion(out.Text))
	reply := s.message(pkg.RoleAssistant, out.Text)
	s.commit(tracking, appendBounded(history, reply))
	s.countTurn("question")
	return &TurnResult{Replies: []pkg.ChatMessage{reply}}, nil
}

// explain runs one turn after a diagnosis has been issued. The user question
// is answered against the stored diagnosis; no new diagnosis is requested.
func (s *Session) explain(ctx context.Context, tracking pkg.CoverageState, history []pkg.ChatMessage, text string) (*TurnResult, error) {
	prompt := BuildExplanationPrompt(tracking.LastDiagnosis, text)

	raw, err := s.complete(ctx, prompt, recentWire(history))
	if err != nil {
		return nil, err
	}

	out := ParseModelOutput(raw)
	if out.Kind == OutputDiagnosis {
		return s.acceptDiagnosis(tracking, history, out), nil
	}

	tracking.AskedQuestions.Add(NormalizeQuestion(out.Text))
	reply := s.message(pkg.RoleAssistant, out.Text)
	s.commit(tracking, appendBounded(history, reply))
	s.countTurn("explanation")
	return &TurnResult{Replies: []pkg.ChatMessage{reply}}, nil
}

// conclude requests the structured diagnosis. Conclusion calls deliberately
// carry no chat history; the prompt already embeds everything relevant.
func (s *Session) conclude(ctx context.Context, tracking pkg.CoverageState, history []pkg.ChatMessage) (*TurnResult, error) {
	prompt, err := BuildConclusionPrompt(s.profile, history)
	if err != nil {
		return nil, err
	}

	raw, err := s.complete(ctx, prompt, nil)
	if err != nil {
		return nil, err
	}

	out := ParseModelOutput(raw)
	if out.Kind != OutputDiagnosis {
		s.log.Warn().Msg("conclusion request returned unstructured output")
		reply := s.message(pkg.RoleAssistant, ConclusionFallback)
		s.commit(tracking, appendBounded(history, reply))
		s.countTurn("conclusion_fallback")
		return &TurnResult{Replies: []pkg.ChatMessage{reply}}, nil
	}
	return s.acceptDiagnosis(tracking, history, out), nil
}

// acceptDiagnosis finalizes a valid structured diagnosis: supersede any prior
// diagnosis message, append the summary, flip the session into explanation
// mode. The mode transition is one-way; only an explicit session reset leaves
// explanation mode.
func (s *Session) acceptDiagnosis(tracking pkg.CoverageState, history []pkg.ChatMessage, out ModelOutput) *TurnResult {
	tracking.DiagnosisIssued = true
	tracking.Mode = pkg.ModeExplanation
	tracking.LastDiagnosis = out.Text

	reply := s.message(pkg.RoleAssistant, FormatDiagnosis(out.Candidates))
	history = appendBounded(pruneDiagnosisMessages(history), reply)
	s.commit(tracking, history)

	s.countTurn("diagnosis")
	if s.metrics != nil {
		s.metrics.DiagnosesTotal.Inc()
	}
	s.log.Info().Int("candidates", len(out.Candidates)).Msg("diagnosis issued")

	return &TurnResult{Replies: []pkg.ChatMessage{reply}, Diagnosis: out.Candidates}
}

// resultCommand handles "/result": a status summary when the gate is closed,
// an immediate conclusion when it is open. The command itself only enters the
// transcript when a conclusion is actually attempted.
func (s *Session) resultCommand(ctx context.Context) (*TurnResult, error) {
	tracking := s.profile.Tracking.Clone()
	tracking.ReadyForDiagnosis = Ready(tracking)

	if !tracking.ReadyForDiagnosis {
		reply := s.message(pkg.RoleAssistant, StatusSummary(tracking))
		s.commit(tracking, appendBounded(cloneHistory(s.profile.ChatHistory), reply))
		s.countTurn("status")
		return &TurnResult{Replies: []pkg.ChatMessage{reply}}, nil
	}

	history := appendBounded(cloneHistory(s.profile.ChatHistory), s.message(pkg.RoleUser, commandResult))
	return s.conclude(ctx, tracking, history)
}

// proceedCommand handles "/proceed": an explicit override that forces a
// conclusion regardless of readiness, after a low-confidence warning.
func (s *Session) proceedCommand(ctx context.Context) (*TurnResult, error) {
	tracking := s.profile.Tracking.Clone()
	warning := s.message(pkg.RoleAssistant, ProceedWarning)

	history := cloneHistory(s.profile.ChatHistory)
	history = appendBounded(history, s.message(pkg.RoleUser, commandProceed))
	history = appendBounded(history, warning)

	res, err := s.conclude(ctx, tracking, history)
	if err != nil {
		return nil, err
	}
	res.Replies = append([]pkg.ChatMessage{warning}, res.Replies...)
	return res, nil
}

// complete calls the model boundary, the only suspension point of a turn.
func (s *Session) complete(ctx context.Context, prompt string, history []llm.Message) (string, error) {
	start := s.now()
	raw, err := s.llm.Complete(ctx, prompt, history)
	if s.metrics != nil {
		s.metrics.ObserveModelRequest(err, time.Since(start))
	}
	if err != nil {
		s.log.Error().Err(err).Msg("model call failed")
		return "", fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return raw, nil
}

// commit publishes a fully computed turn onto the session profile.
func (s *Session) commit(tracking pkg.CoverageState, history []pkg.ChatMessage) {
	s.profile.Tracking = tracking
	s.profile.ChatHistory = history
	s.profile.LastUpdated = s.now()
}

func (s *Session) countTurn(outcome string) {
	if s.metrics != nil {
		s.metrics.TurnsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Session) message(role pkg.MessageRole, content string) pkg.ChatMessage {
	return pkg.ChatMessage{Content: content, Role: role, Timestamp: s.now()}
}

func cloneHistory(history []pkg.ChatMessage) []pkg.ChatMessage {
	return append([]pkg.ChatMessage(nil), history...)
}

// appendBounded appends and trims to the retention limit, dropping the oldest
// messages first.
func appendBounded(history []pkg.ChatMessage, msg pkg.ChatMessage) []pkg.ChatMessage {
	history = append(history, msg)
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	return history
}

// pruneDiagnosisMessages drops earlier diagnosis summaries so the transcript
// never shows two diagnosis cards.
func pruneDiagnosisMessages(history []pkg.ChatMessage) []pkg.ChatMessage {
	out := history[:0]
	for _, m := range history {
		if m.Role == pkg.RoleAssistant && strings.Contains(m.Content, "possible conditions") {
			continue
		}
		out = append(out, m)
	}
	return out
}

// firstUserMessage finds the anchor symptom report: the first user message in
// the transcript, falling back to the current message.
func firstUserMessage(history []pkg.ChatMessage, fallback string) string {
	for _, m := range history {
		if m.Role == pkg.RoleUser && !isCommand(m.Content) {
			return m.Content
		}
	}
	return fallback
}

// recentWire converts the tail of the transcript into boundary messages.
func recentWire(history []pkg.ChatMessage) []llm.Message {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	out := make([]llm.Message, 0, len(history))
	for _, m := range history {
		out = append(out, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}
