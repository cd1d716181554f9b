package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/behuman/cascade/internal/model"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// fakeGenerator is a scripted oracle: replies are returned in order, then
// failErr (or an exhaustion error) afterwards.
type fakeGenerator struct {
	mu      sync.Mutex
	replies []string
	failErr error
	calls   int
	prompts []string
}

func (f *fakeGenerator) GenerateJSON(_ context.Context, _ string, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if len(f.replies) > 0 {
		reply := f.replies[0]
		f.replies = f.replies[1:]
		return reply, nil
	}
	if f.failErr != nil {
		return "", f.failErr
	}
	return "", errors.New("no scripted reply")
}

// deadGenerator simulates an unreachable oracle.
func deadGenerator() *fakeGenerator {
	return &fakeGenerator{failErr: errors.New("oracle unreachable")}
}

func testProfile() model.ParticipantProfile {
	return model.ParticipantProfile{
		Name:        "Jordan Reyes",
		Role:        "Founder & CEO",
		Company:     "Brightpath Labs",
		Industry:    "Professional Services",
		CompanySize: "1-10",
		Email:       "jordan@brightpath.example",
	}
}

func testCatalog() *model.Catalog {
	return &model.Catalog{
		ID:      "cascade_v1",
		Name:    "AI Readiness Assessment",
		Version: 1,
		Questions: []model.Question{
			{ID: QuestionRole, Phase: "profile", Section: "about_you", Text: "What is your role at {company}?", InputType: model.InputOpenText, Required: true},
			{ID: QuestionIndustry, Phase: "profile", Section: "about_you", Text: "What industry is {company} in?", InputType: model.InputOpenText, Required: true},
			{ID: QuestionCompanySize, Phase: "profile", Section: "about_you", Text: "How many people work at {company}?", InputType: model.InputSingleChoice, Required: true, Options: []string{"1-10", "11-50", "51-200"}},
			{ID: QuestionTeamSize, Phase: "profile", Section: "about_you", Text: "How many people report to you?", InputType: model.InputScale, ScaleMin: 0, ScaleMax: 50},
			{ID: QuestionTechLead, Phase: "profile", Section: "about_you", Text: "Who makes technology decisions at {company}?", InputType: model.InputSingleChoice, Options: []string{"I do", "A leadership group", "It varies"}},
			{ID: "ai_familiarity", Phase: "awareness", Section: "ai_today", Text: "How familiar are you with AI tools?", InputType: model.InputScale, Required: true, ScaleMin: 1, ScaleMax: 5, Dimensions: []string{"ai_awareness"}, Weight: 1},
			{ID: "repetitive_work", Phase: "operations", Section: "how_work_happens", Text: "What repetitive work eats the most time at {company}?", InputType: model.InputOpenText, Dimensions: []string{"process_readiness"}, Weight: 1},
			{ID: "ai_experiments", Phase: "awareness", Section: "ai_today", Text: "Tell me about AI experiments at {company}.", InputType: model.InputConversation, Dimensions: []string{"ai_action"}, Weight: 1.5},
			{ID: "final_reflections", Phase: "wrap_up", Section: "closing", Text: "Anything else?", InputType: model.InputOpenText, Weight: 0.5},
		},
	}
}

func testSession(profile model.ParticipantProfile) *model.Session {
	return &model.Session{
		ID:             "sess_test",
		AssessmentType: "cascade_v1",
		Status:         model.SessionInProgress,
		Participant:    profile,
		Responses:      []model.Response{},
		CreatedAt:      time.Now(),
	}
}

// In-memory fakes for the orchestrator tests.

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]*model.Session{}}
}

func (r *memSessionRepo) Create(_ context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *memSessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) Save(_ context.Context, s *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *memSessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memSessionRepo) List(_ context.Context, _ bool) ([]*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

type memCatalogRepo struct {
	catalogs map[string]*model.Catalog
}

func newMemCatalogRepo(catalogs ...*model.Catalog) *memCatalogRepo {
	r := &memCatalogRepo{catalogs: map[string]*model.Catalog{}}
	for _, c := range catalogs {
		r.catalogs[c.ID] = c
	}
	return r
}

func (r *memCatalogRepo) Upsert(_ context.Context, c *model.Catalog) error {
	r.catalogs[c.ID] = c
	return nil
}

func (r *memCatalogRepo) GetByID(_ context.Context, id string) (*model.Catalog, error) {
	return r.catalogs[id], nil
}

type memInvitationRepo struct {
	mu          sync.Mutex
	invitations map[string]*model.Invitation
}

func newMemInvitationRepo() *memInvitationRepo {
	return &memInvitationRepo{invitations: map[string]*model.Invitation{}}
}

func (r *memInvitationRepo) Create(_ context.Context, inv *model.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invitations[inv.Token] = inv
	return nil
}

func (r *memInvitationRepo) GetByToken(_ context.Context, token string) (*model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invitations[token], nil
}

func (r *memInvitationRepo) Consume(_ context.Context, token, sessionID string) (*model.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invitations[token]
	if !ok || inv.ConsumedAt != nil {
		return nil, nil
	}
	now := time.Now()
	inv.ConsumedAt = &now
	inv.SessionID = sessionID
	return inv, nil
}

type noopSessionCache struct{}

func (noopSessionCache) Set(context.Context, *model.Session) error { return nil }
func (noopSessionCache) Get(context.Context, string) (*model.Session, error) {
	return nil, nil
}
func (noopSessionCache) Delete(context.Context, string) error { return nil }

type noopCatalogCache struct{}

func (noopCatalogCache) Set(context.Context, *model.Catalog) error { return nil }
func (noopCatalogCache) Get(context.Context, string) (*model.Catalog, error) {
	return nil, nil
}
