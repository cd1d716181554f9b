package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/behuman/cascade/internal/cache"
	"github.com/behuman/cascade/internal/model"
	"github.com/behuman/cascade/internal/repository"
)

// SessionService is the top-level session state machine. Each operation
// loads the whole aggregate, mutates it in memory, and writes it back; two
// concurrent operations on the same session id can lose an update, which is
// a documented limitation of the single-writer design, not a feature.
type SessionService struct {
	sessionRepo    repository.SessionRepo
	catalogRepo    repository.CatalogRepo
	invitationRepo repository.InvitationRepo
	sessionCache   cache.SessionCache
	catalogCache   cache.CatalogCache

	selector   *QuestionSelector
	dialogue   *DialogueEngine
	confidence *ConfidenceScorer
	gate       *AnalysisGate

	mirror GraphMirror
	log    *zap.SugaredLogger
}

// NewSessionService creates the session orchestrator.
func NewSessionService(
	sessionRepo repository.SessionRepo,
	catalogRepo repository.CatalogRepo,
	invitationRepo repository.InvitationRepo,
	sessionCache cache.SessionCache,
	catalogCache cache.CatalogCache,
	selector *QuestionSelector,
	dialogue *DialogueEngine,
	confidence *ConfidenceScorer,
	gate *AnalysisGate,
	log *zap.SugaredLogger,
) *SessionService {
	return &SessionService{
		sessionRepo:    sessionRepo,
		catalogRepo:    catalogRepo,
		invitationRepo: invitationRepo,
		sessionCache:   sessionCache,
		catalogCache:   catalogCache,
		selector:       selector,
		dialogue:       dialogue,
		confidence:     confidence,
		gate:           gate,
		log:            log,
	}
}

// SetMirror injects the optional graph-mirror collaborator.
func (s *SessionService) SetMirror(m GraphMirror) {
	s.mirror = m
}

// Create validates the profile, consumes the single-use invitation, and
// creates the session in intake. Reused or unknown tokens are rejected.
func (s *SessionService) Create(ctx context.Context, profile model.ParticipantProfile, invitationToken, assessmentType string) (*model.Session, error) {
	if err := validateProfile(profile); err != nil {
		return nil, err
	}
	if invitationToken == "" {
		return nil, model.Validationf("invitation token is required")
	}
	if assessmentType == "" {
		assessmentType = DefaultAssessmentType
	}

	sessionID := "sess_" + uuid.New().String()

	inv, err := s.invitationRepo.Consume(ctx, invitationToken, sessionID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, model.Validationf("invitation token is invalid or already used")
	}

	session := &model.Session{
		ID:             sessionID,
		AssessmentType: assessmentType,
		Status:         model.SessionIntake,
		InvitationID:   inv.ID,
		Participant:    profile,
		Responses:      []model.Response{},
		CreatedAt:      time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	s.cacheSet(ctx, session)

	s.log.Infow("session created", "sessionId", session.ID, "company", profile.Company)
	return session, nil
}

// AttachResearch stores research context for dialogue personalization and
// moves intake to researched. Safe to resubmit; re-attaching overwrites.
func (s *SessionService) AttachResearch(ctx context.Context, sessionID, summary string) (*model.Session, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.ResearchContext = summary
	if session.Status == model.SessionIntake {
		session.Status = model.SessionResearched
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// BeginResult is returned by Begin and by RecordResponse when the interview
// continues: the next question plus the ids skipped this step.
type BeginResult struct {
	Session    *model.Session  `json:"session"`
	Question   *model.Question `json:"question,omitempty"`
	Prompt     string          `json:"prompt,omitempty"`
	SkippedIDs []string        `json:"skippedIds,omitempty"`
}

// Begin resolves the catalog, runs auto-population, computes the first
// eligible question, and moves the session to in_progress. Resubmitting on
// an already-running session returns the current question unchanged.
func (s *SessionService) Begin(ctx context.Context, sessionID string) (*BeginResult, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.resolveCatalog(ctx, session.AssessmentType)
	if err != nil {
		return nil, err
	}

	if session.Status == model.SessionInProgress {
		// Idempotent resubmit: re-serve the current position.
		var q *model.Question
		var prompt string
		if cur := catalog.Find(session.CurrentQuestionID); cur != nil {
			q = cur
			prompt = cur.Personalize(session.Participant.Company)
		}
		return &BeginResult{Session: session, Question: q, Prompt: prompt}, nil
	}
	if session.Status != model.SessionIntake && session.Status != model.SessionResearched {
		return nil, model.Validationf("session %s cannot begin from status %s", sessionID, session.Status)
	}

	now := time.Now()
	auto := AutoPopulate(session.Participant, catalog, session.AnsweredSet(), now)
	session.Responses = append(session.Responses, auto...)

	candidates, filtered := FilterCandidates(session.Participant, catalog, session.AnsweredSet())
	if len(candidates) == 0 {
		return nil, model.Validationf("catalog %s has no askable questions", catalog.ID)
	}

	autoIDs := make([]string, 0, len(auto))
	for _, r := range auto {
		autoIDs = append(autoIDs, r.QuestionID)
	}

	sel := s.selector.Next(ctx, session, catalog, candidates, append(autoIDs, filtered...))
	s.setPosition(session, &sel.Question)
	session.Status = model.SessionInProgress

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	return &BeginResult{
		Session:    session,
		Question:   &sel.Question,
		Prompt:     sel.Prompt,
		SkippedIDs: sel.SkippedIDs,
	}, nil
}

// RecordResult is the outcome of RecordResponse.
type RecordResult struct {
	Session *model.Session `json:"session"`

	// DialogueReply is set when an ai_conversation question continues; the
	// response is not yet recorded and the caller should resubmit with the
	// participant's next turn.
	DialogueReply string `json:"dialogueReply,omitempty"`

	// Recorded is the finalized response, when one was appended.
	Recorded *model.Response `json:"recorded,omitempty"`

	// Next question, empty when the interview completed.
	Question   *model.Question `json:"question,omitempty"`
	Prompt     string          `json:"prompt,omitempty"`
	SkippedIDs []string        `json:"skippedIds,omitempty"`
	Completed  bool            `json:"completed"`
}

// RecordResponse validates and records one answer, routing free-form
// answers through the confidence scorer and ai_conversation answers through
// the dialogue sub-engine, then advances the interview. Resubmitting the
// identical question/answer pair after a persistence failure is safe and
// produces an equivalent response.
func (s *SessionService) RecordResponse(ctx context.Context, sessionID, questionID string, answer model.AnswerValue, skipped bool) (*RecordResult, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.resolveCatalog(ctx, session.AssessmentType)
	if err != nil {
		return nil, err
	}

	question := catalog.Find(questionID)
	if question == nil {
		return nil, model.Validationf("question %s does not exist in catalog %s", questionID, catalog.ID)
	}

	if existing := session.FindResponse(questionID); existing != nil {
		if existing.Answer.Equal(answer) || (skipped && existing.Skipped) {
			// Idempotent resubmit after a lost ack.
			return s.advance(ctx, session, catalog, existing, false)
		}
		return nil, model.Validationf("question %s is already answered; use the edit operation to change it", questionID)
	}

	if session.Status != model.SessionInProgress {
		return nil, model.Validationf("session %s is not accepting responses (status %s)", sessionID, session.Status)
	}

	now := time.Now()
	resp := model.Response{
		QuestionID:   question.ID,
		QuestionText: question.Personalize(session.Participant.Company),
		InputType:    question.InputType,
		AnsweredAt:   now,
	}

	switch {
	case skipped:
		if question.Required {
			return nil, model.Validationf("question %s is required and cannot be skipped", questionID)
		}
		resp.Skipped = true
		resp.Confidence = model.Confidence{}

	case question.InputType == model.InputConversation:
		if answer.Text == "" {
			return nil, model.Validationf("question %s requires a text turn", questionID)
		}
		result := s.dialogue.Step(ctx, session, question, answer.Text, now)
		if !result.Done {
			// Persist the partial transcript; the sub-dialogue resumes on
			// the next submission.
			if err := s.save(ctx, session); err != nil {
				return nil, err
			}
			return &RecordResult{Session: session, DialogueReply: result.Reply}, nil
		}
		resp.Answer = model.AnswerValue{Text: result.Answer}
		resp.FollowUps = result.FollowUps
		resp.Confidence = s.confidence.Score(ctx, question, result.Answer, session.HumanResponses())

	case question.InputType.FreeForm():
		if err := answer.Validate(question); err != nil {
			return nil, err
		}
		resp.Answer = answer
		resp.Confidence = s.confidence.Score(ctx, question, answer.Text, session.HumanResponses())

	default:
		if err := answer.Validate(question); err != nil {
			return nil, err
		}
		resp.Answer = answer
		resp.Confidence = model.ConfidenceStructured
	}

	session.Responses = append(session.Responses, resp)
	return s.advance(ctx, session, catalog, &session.Responses[len(session.Responses)-1], true)
}

// advance recomputes the candidate set and either selects the next question
// or completes the session.
func (s *SessionService) advance(ctx context.Context, session *model.Session, catalog *model.Catalog, recorded *model.Response, dirty bool) (*RecordResult, error) {
	candidates, filtered := FilterCandidates(session.Participant, catalog, session.AnsweredSet())

	if len(candidates) == 0 {
		if session.Status == model.SessionInProgress {
			now := time.Now()
			session.Status = model.SessionCompleted
			session.CompletedAt = &now
			session.CurrentQuestionID = ""
			dirty = true
		}
		if dirty {
			if err := s.save(ctx, session); err != nil {
				return nil, err
			}
		}
		return &RecordResult{Session: session, Recorded: recorded, Completed: true}, nil
	}

	sel := s.selector.Next(ctx, session, catalog, candidates, filtered)
	s.setPosition(session, &sel.Question)

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	return &RecordResult{
		Session:    session,
		Recorded:   recorded,
		Question:   &sel.Question,
		Prompt:     sel.Prompt,
		SkippedIDs: sel.SkippedIDs,
	}, nil
}

// EditResponse replaces an existing answer regardless of session status.
// Confidence is recomputed against all other responses; stale follow-up
// exchanges are discarded only when the original modality was a dialogue.
func (s *SessionService) EditResponse(ctx context.Context, sessionID, questionID string, answer model.AnswerValue) (*model.Response, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp := session.FindResponse(questionID)
	if resp == nil {
		return nil, model.Validationf("no response recorded for question %s", questionID)
	}

	catalog, err := s.resolveCatalog(ctx, session.AssessmentType)
	if err != nil {
		return nil, err
	}
	question := catalog.Find(questionID)
	if question == nil {
		return nil, model.Validationf("question %s does not exist in catalog %s", questionID, catalog.ID)
	}

	if err := answer.Validate(question); err != nil {
		return nil, err
	}

	// Context is every response except the one being edited.
	others := make([]model.Response, 0, len(session.Responses))
	for _, r := range session.HumanResponses() {
		if r.QuestionID != questionID {
			others = append(others, r)
		}
	}

	now := time.Now()
	resp.Answer = answer
	resp.Skipped = false
	resp.AutoPopulated = false
	resp.Source = ""
	resp.Confidence = s.confidence.Score(ctx, question, answer.Display(), others)
	resp.EditedAt = &now
	resp.EditCount++
	if question.InputType == model.InputConversation {
		resp.FollowUps = nil
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return resp, nil
}

// Analyze runs the scoring gate once enough responses exist and attaches
// the result atomically. Resubmitting on an analyzed session returns the
// existing analysis.
func (s *SessionService) Analyze(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status == model.SessionAnalyzed && session.Analysis != nil {
		return session, nil
	}

	if n := session.NonSkippedCount(); n < MinResponsesForAnalysis {
		return nil, model.Validationf("analysis requires at least %d responses, have %d", MinResponsesForAnalysis, n)
	}
	if !session.Status.CanAdvanceTo(model.SessionAnalyzed) {
		return nil, model.Validationf("session %s cannot be analyzed from status %s", sessionID, session.Status)
	}

	result := s.gate.Generate(ctx, session)

	now := time.Now()
	session.Analysis = result
	session.Status = model.SessionAnalyzed
	session.AnalyzedAt = &now

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	if s.mirror != nil {
		go func(snapshot model.Session) {
			mctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.mirror.SyncAnalyzedSession(mctx, &snapshot); err != nil {
				s.log.Warnw("graph mirror sync failed", "sessionId", snapshot.ID, "error", err)
			}
		}(*session)
	}

	s.log.Infow("session analyzed", "sessionId", session.ID,
		"archetype", result.Archetype.Name, "degraded", result.Degraded)
	return session, nil
}

// CorrectProfile layers an admin correction over one profile field; the
// original intake value is retained.
func (s *SessionService) CorrectProfile(ctx context.Context, sessionID, field, value string) (*model.Session, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(field) {
	case "name", "role", "company", "industry", "companysize", "email":
	default:
		return nil, model.Validationf("unknown profile field %q", field)
	}

	session.Corrections = append(session.Corrections, model.ProfileCorrection{
		Field:     strings.ToLower(field),
		Value:     value,
		AppliedAt: time.Now(),
	})

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get loads one session.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.load(ctx, sessionID)
}

// List returns all sessions, optionally without response bodies.
func (s *SessionService) List(ctx context.Context, withResponses bool) ([]*model.Session, error) {
	return s.sessionRepo.List(ctx, withResponses)
}

// Delete removes a session and everything embedded in it (responses,
// transcript, analysis) plus its graph-mirror footprint.
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := s.sessionRepo.Delete(ctx, session.ID); err != nil {
		return err
	}
	if err := s.sessionCache.Delete(ctx, session.ID); err != nil {
		s.log.Warnw("session cache delete failed", "sessionId", session.ID, "error", err)
	}
	if s.mirror != nil {
		if err := s.mirror.RemoveSession(ctx, session.ID); err != nil {
			s.log.Warnw("graph mirror delete failed", "sessionId", session.ID, "error", err)
		}
	}
	return nil
}

// load fetches the aggregate, cache first.
func (s *SessionService) load(ctx context.Context, sessionID string) (*model.Session, error) {
	if cached, err := s.sessionCache.Get(ctx, sessionID); err == nil && cached != nil {
		return cached, nil
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, model.Validationf("session %s not found", sessionID)
	}
	return session, nil
}

// save writes the whole aggregate back and refreshes the cache.
func (s *SessionService) save(ctx context.Context, session *model.Session) error {
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return err
	}
	s.cacheSet(ctx, session)
	return nil
}

func (s *SessionService) cacheSet(ctx context.Context, session *model.Session) {
	if err := s.sessionCache.Set(ctx, session); err != nil {
		s.log.Warnw("session cache set failed", "sessionId", session.ID, "error", err)
	}
}

func (s *SessionService) setPosition(session *model.Session, q *model.Question) {
	session.CurrentPhase = q.Phase
	session.CurrentSection = q.Section
	session.CurrentQuestionID = q.ID
}

// DefaultAssessmentType is the catalog used when a session does not name one.
const DefaultAssessmentType = "cascade_v1"

func validateProfile(p model.ParticipantProfile) error {
	if strings.TrimSpace(p.Name) == "" {
		return model.Validationf("participant name is required")
	}
	if strings.TrimSpace(p.Role) == "" {
		return model.Validationf("participant role is required")
	}
	if strings.TrimSpace(p.Company) == "" {
		return model.Validationf("company name is required")
	}
	if strings.TrimSpace(p.CompanySize) == "" {
		return model.Validationf("company size bracket is required")
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return model.Validationf("email %q is not valid", p.Email)
	}
	return nil
}

// resolveCatalog loads the immutable catalog, cache first.
func (s *SessionService) resolveCatalog(ctx context.Context, assessmentType string) (*model.Catalog, error) {
	if cached, err := s.catalogCache.Get(ctx, assessmentType); err == nil && cached != nil {
		return cached, nil
	}

	catalog, err := s.catalogRepo.GetByID(ctx, assessmentType)
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, model.Validationf("assessment catalog %s not found", assessmentType)
	}

	if err := s.catalogCache.Set(ctx, catalog); err != nil {
		s.log.Warnw("catalog cache set failed", "catalogId", assessmentType, "error", err)
	}
	return catalog, nil
}
