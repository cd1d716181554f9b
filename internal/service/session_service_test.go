package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/behuman/cascade/internal/config"
	"github.com/behuman/cascade/internal/model"
	"github.com/behuman/cascade/internal/oracle"
	"github.com/behuman/cascade/internal/rubric"
)

type serviceFixture struct {
	svc     *SessionService
	invRepo *memInvitationRepo
	repo    *memSessionRepo
}

func newServiceFixture(t *testing.T, gen oracle.Generator) *serviceFixture {
	t.Helper()

	cfg := config.DefaultAIConfig()
	log := testLogger()

	repo := newMemSessionRepo()
	catalogRepo := newMemCatalogRepo(testCatalog())
	invRepo := newMemInvitationRepo()

	svc := NewSessionService(
		repo, catalogRepo, invRepo,
		noopSessionCache{}, noopCatalogCache{},
		NewQuestionSelector(gen, cfg, log),
		NewDialogueEngine(gen, cfg, log),
		NewConfidenceScorer(gen, cfg, log),
		NewAnalysisGate(gen, cfg, log),
		log,
	)

	return &serviceFixture{svc: svc, invRepo: invRepo, repo: repo}
}

func (f *serviceFixture) mintToken(t *testing.T) string {
	t.Helper()
	inv := &model.Invitation{ID: "inv_test", Token: "tok-" + t.Name()}
	require.NoError(t, f.invRepo.Create(context.Background(), inv))
	return inv.Token
}

func (f *serviceFixture) createSession(t *testing.T) *model.Session {
	t.Helper()
	session, err := f.svc.Create(context.Background(), testProfile(), f.mintToken(t), "")
	require.NoError(t, err)
	return session
}

func TestCreateSession(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())

	session := f.createSession(t)

	assert.Equal(t, model.SessionIntake, session.Status)
	assert.Equal(t, DefaultAssessmentType, session.AssessmentType)
	assert.Equal(t, "inv_test", session.InvitationID)
	assert.NotEmpty(t, session.ID)
	assert.Empty(t, session.Responses)
}

func TestCreateSessionInvitationSingleUse(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	token := f.mintToken(t)

	_, err := f.svc.Create(context.Background(), testProfile(), token, "")
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), testProfile(), token, "")
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestCreateSessionUnknownToken(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())

	_, err := f.svc.Create(context.Background(), testProfile(), "never-minted", "")
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestCreateSessionRejectsIncompleteProfile(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	profile := testProfile()
	profile.Company = ""

	_, err := f.svc.Create(context.Background(), profile, f.mintToken(t), "")
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestAttachResearch(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)

	got, err := f.svc.AttachResearch(context.Background(), session.ID, "Brightpath Labs is a 7-person consultancy.")
	require.NoError(t, err)

	assert.Equal(t, model.SessionResearched, got.Status)
	assert.Equal(t, "Brightpath Labs is a 7-person consultancy.", got.ResearchContext)
}

func TestBeginAutoPopulatesAndStarts(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)

	result, err := f.svc.Begin(context.Background(), session.ID)
	require.NoError(t, err)

	assert.Equal(t, model.SessionInProgress, result.Session.Status)
	require.NotNil(t, result.Question)
	assert.Equal(t, "ai_familiarity", result.Question.ID,
		"first unanswered, unfiltered question in catalog order")

	answered := result.Session.AnsweredSet()
	assert.True(t, answered[QuestionRole])
	assert.True(t, answered[QuestionIndustry])
	assert.True(t, answered[QuestionCompanySize])
	assert.True(t, answered[QuestionTeamSize], "deduced for 1-10 founder")

	assert.Contains(t, result.SkippedIDs, QuestionTechLead)
}

func TestBeginIdempotent(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)

	first, err := f.svc.Begin(context.Background(), session.ID)
	require.NoError(t, err)
	second, err := f.svc.Begin(context.Background(), session.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Question.ID, second.Question.ID)
	assert.Len(t, second.Session.Responses, len(first.Session.Responses),
		"resubmitting begin must not duplicate auto-populated responses")
}

func TestBeginRejectedAfterCompletion(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)
	runToCompletion(t, f, session.ID)

	_, err := f.svc.Begin(context.Background(), session.ID)
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestRecordStructuredResponse(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)
	_, err := f.svc.Begin(context.Background(), session.ID)
	require.NoError(t, err)

	result, err := f.svc.RecordResponse(context.Background(), session.ID, "ai_familiarity", model.AnswerValue{Scale: 4}, false)
	require.NoError(t, err)

	require.NotNil(t, result.Recorded)
	assert.Equal(t, model.ConfidenceStructured, result.Recorded.Confidence)
	require.NotNil(t, result.Question)
	assert.Equal(t, "repetitive_work", result.Question.ID)
}

func TestRecordFreeFormNeutralConfidenceOnDeadOracle(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)
	_, err := f.svc.Begin(context.Background(), session.ID)
	require.NoError(t, err)

	result, err := f.svc.RecordResponse(context.Background(), session.ID, "repetitive_work",
		model.AnswerValue{Text: "Invoicing and weekly status reports."}, false)
	require.NoError(t, err)

	assert.Equal(t, model.ConfidenceNeutral, result.Recorded.Confidence)
}

func TestRecordSkipRequiredRejected(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)
	_, err := f.svc.Begin(context.Background(), session.ID)
	require.NoError(t, err)

	_, err = f.svc.RecordResponse(context.Background(), session.ID, "ai_familiarity", model.AnswerValue{}, true)
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestRecordSkipOptional(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)
	_, err := f.svc.Begin(context.Background(), session.ID)
	require.NoError(t, err)

	result, err := f.svc.RecordResponse(context.Background(), session.ID, "repetitive_work", model.AnswerValue{}, true)
	require.NoError(t, err)

	require.NotNil(t, result.Recorded)
	assert.True(t, result.Recorded.Skipped)
	assert.Equal(t, model.Confidence{}, result.Recorded.Confidence)
}

func TestRecordRejectsScaleOutOfRange(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)
	_, err := f.svc.Begin(context.Background(), session.ID)
	require.NoError(t, err)

	_, err = f.svc.RecordResponse(context.Background(), session.ID, "ai_familiarity", model.AnswerValue{Scale: 9}, false)
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestRecordIdempotentResubmit(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)
	_, err := f.svc.Begin(context.Background(), session.ID)
	require.NoError(t, err)

	answer := model.AnswerValue{Scale: 4}
	first, err := f.svc.RecordResponse(context.Background(), session.ID, "ai_familiarity", answer, false)
	require.NoError(t, err)

	second, err := f.svc.RecordResponse(context.Background(), session.ID, "ai_familiarity", answer, false)
	require.NoError(t, err)

	assert.Len(t, second.Session.Responses, len(first.Session.Responses),
		"identical resubmission must not duplicate the response")
	assert.Equal(t, first.Question.ID, second.Question.ID)
}

func TestRecordConflictingResubmitRejected(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)
	_, err := f.svc.Begin(context.Background(), session.ID)
	require.NoError(t, err)

	_, err = f.svc.RecordResponse(context.Background(), session.ID, "ai_familiarity", model.AnswerValue{Scale: 4}, false)
	require.NoError(t, err)

	_, err = f.svc.RecordResponse(context.Background(), session.ID, "ai_familiarity", model.AnswerValue{Scale: 2}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edit")
}

func TestRecordDialogueContinuation(t *testing.T) {
	gen := &fakeGenerator{replies: []string{
		`{"message": "What did the chatbot actually handle?"}`,
		`{"message": "That makes sense. CONVERSATION_COMPLETE"}`,
	}}
	f := newServiceFixture(t, gen)
	session := f.createSession(t)
	// Begin and the two confidence calls also hit the oracle, so run against
	// a session positioned manually.
	require.NoError(t, f.repo.Save(context.Background(), seededInProgress(session)))

	first, err := f.svc.RecordResponse(context.Background(), session.ID, "ai_experiments",
		model.AnswerValue{Text: "We tried a support chatbot."}, false)
	require.NoError(t, err)

	assert.Equal(t, "What did the chatbot actually handle?", first.DialogueReply)
	assert.Nil(t, first.Recorded, "mid-dialogue turns do not record a response")
	assert.Nil(t, first.Session.FindResponse("ai_experiments"))
	require.NotNil(t, first.Session.ActiveDialogue)

	second, err := f.svc.RecordResponse(context.Background(), session.ID, "ai_experiments",
		model.AnswerValue{Text: "Password resets, mostly."}, false)
	require.NoError(t, err)

	assert.Empty(t, second.DialogueReply)
	recorded := second.Session.FindResponse("ai_experiments")
	require.NotNil(t, recorded)
	assert.Equal(t, "We tried a support chatbot.\nPassword resets, mostly.", recorded.Answer.Text)
	require.Len(t, recorded.FollowUps, 1)
	assert.Equal(t, "What did the chatbot actually handle?", recorded.FollowUps[0].Question)
	assert.Nil(t, second.Session.ActiveDialogue)
}

// seededInProgress positions a fresh session as if Begin already ran, without
// consuming scripted oracle replies.
func seededInProgress(session *model.Session) *model.Session {
	session.Status = model.SessionInProgress
	session.CurrentQuestionID = "ai_experiments"
	return session
}

func TestInterviewCompletesWhenCatalogExhausted(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)

	final := runToCompletion(t, f, session.ID)

	assert.Equal(t, model.SessionCompleted, final.Status)
	assert.NotNil(t, final.CompletedAt)
	assert.Empty(t, final.CurrentQuestionID)
}

// runToCompletion drives the interview with a dead oracle: deterministic
// catalog-order selection, forced dialogue completion, neutral confidence.
func runToCompletion(t *testing.T, f *serviceFixture, sessionID string) *model.Session {
	t.Helper()

	begin, err := f.svc.Begin(context.Background(), sessionID)
	require.NoError(t, err)

	question := begin.Question
	for i := 0; i < 20 && question != nil; i++ {
		var answer model.AnswerValue
		switch question.InputType {
		case model.InputScale:
			answer = model.AnswerValue{Scale: question.ScaleMin + 1}
		case model.InputSingleChoice:
			answer = model.AnswerValue{Choice: question.Options[0]}
		case model.InputMultiChoice:
			answer = model.AnswerValue{Choices: question.Options[:1]}
		default:
			answer = model.AnswerValue{Text: "A concrete answer."}
		}

		result, err := f.svc.RecordResponse(context.Background(), sessionID, question.ID, answer, false)
		require.NoError(t, err)
		if result.Completed {
			return result.Session
		}
		question = result.Question
	}

	t.Fatal("interview did not complete")
	return nil
}

func TestAnalyzeRequiresMinimumResponses(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	profile := testProfile()
	profile.Role = "Operations Manager"
	profile.CompanySize = "51-200" // only 3 auto-populated responses

	session, err := f.svc.Create(context.Background(), profile, f.mintToken(t), "")
	require.NoError(t, err)
	_, err = f.svc.Begin(context.Background(), session.ID)
	require.NoError(t, err)

	_, err = f.svc.RecordResponse(context.Background(), session.ID, "ai_familiarity", model.AnswerValue{Scale: 3}, false)
	require.NoError(t, err)

	// 3 auto + 1 human = 4 < 5.
	_, err = f.svc.Analyze(context.Background(), session.ID)
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))

	_, err = f.svc.RecordResponse(context.Background(), session.ID, "repetitive_work",
		model.AnswerValue{Text: "Scheduling."}, false)
	require.NoError(t, err)

	got, err := f.svc.Analyze(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionAnalyzed, got.Status)
}

func TestAnalyzeDegradedOnDeadOracle(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)
	runToCompletion(t, f, session.ID)

	got, err := f.svc.Analyze(context.Background(), session.ID)
	require.NoError(t, err)

	assert.Equal(t, model.SessionAnalyzed, got.Status)
	require.NotNil(t, got.Analysis)
	assert.True(t, got.Analysis.Degraded)
	assert.Equal(t, rubric.FallbackArchetype.Name, got.Analysis.Archetype.Name)
	assert.NotNil(t, got.AnalyzedAt)
}

func TestAnalyzeIdempotent(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)
	runToCompletion(t, f, session.ID)

	first, err := f.svc.Analyze(context.Background(), session.ID)
	require.NoError(t, err)
	second, err := f.svc.Analyze(context.Background(), session.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Analysis.GeneratedAt, second.Analysis.GeneratedAt,
		"re-analyzing an analyzed session returns the stored result")
}

func TestEditResponse(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)
	_, err := f.svc.Begin(context.Background(), session.ID)
	require.NoError(t, err)

	_, err = f.svc.RecordResponse(context.Background(), session.ID, "ai_familiarity", model.AnswerValue{Scale: 2}, false)
	require.NoError(t, err)

	edited, err := f.svc.EditResponse(context.Background(), session.ID, "ai_familiarity", model.AnswerValue{Scale: 5})
	require.NoError(t, err)

	assert.Equal(t, 5, edited.Answer.Scale)
	assert.Equal(t, 1, edited.EditCount)
	assert.NotNil(t, edited.EditedAt)
}

func TestEditResponseAllowedAfterAnalysis(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)
	runToCompletion(t, f, session.ID)
	_, err := f.svc.Analyze(context.Background(), session.ID)
	require.NoError(t, err)

	edited, err := f.svc.EditResponse(context.Background(), session.ID, "repetitive_work",
		model.AnswerValue{Text: "Actually, it is mostly data entry."})
	require.NoError(t, err)
	assert.Equal(t, "Actually, it is mostly data entry.", edited.Answer.Text)
}

func TestEditUnansweredQuestionRejected(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)
	_, err := f.svc.Begin(context.Background(), session.ID)
	require.NoError(t, err)

	_, err = f.svc.EditResponse(context.Background(), session.ID, "final_reflections", model.AnswerValue{Text: "x"})
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestCorrectProfileLayersCorrection(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)

	got, err := f.svc.CorrectProfile(context.Background(), session.ID, "industry", "Healthcare")
	require.NoError(t, err)

	require.Len(t, got.Corrections, 1)
	assert.Equal(t, "industry", got.Corrections[0].Field)
	assert.Equal(t, "Healthcare", got.Corrections[0].Value)
	assert.Equal(t, "Professional Services", got.Participant.Industry, "intake value is never overwritten")
}

func TestCorrectProfileUnknownField(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)

	_, err := f.svc.CorrectProfile(context.Background(), session.ID, "favorite_color", "blue")
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestDeleteSession(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())
	session := f.createSession(t)

	require.NoError(t, f.svc.Delete(context.Background(), session.ID))

	_, err := f.svc.Get(context.Background(), session.ID)
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}

func TestGetUnknownSession(t *testing.T) {
	f := newServiceFixture(t, deadGenerator())

	_, err := f.svc.Get(context.Background(), "sess_missing")
	require.Error(t, err)
	assert.True(t, model.IsValidation(err))
}
