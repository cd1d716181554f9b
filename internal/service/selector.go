package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/behuman/cascade/internal/config"
	"github.com/behuman/cascade/internal/model"
	"github.com/behuman/cascade/internal/oracle"
)

// QuestionSelector chooses the next question from the candidate set,
// oracle-assisted with a deterministic catalog-order fallback.
type QuestionSelector struct {
	oracle oracle.Generator
	config *config.AIConfig
	log    *zap.SugaredLogger
}

// NewQuestionSelector creates a new selector.
func NewQuestionSelector(gen oracle.Generator, cfg *config.AIConfig, log *zap.SugaredLogger) *QuestionSelector {
	return &QuestionSelector{oracle: gen, config: cfg, log: log}
}

// Selection is the selector output: exactly one next question plus the ids
// skipped this step, reported for caller transparency but never marked
// answered.
type Selection struct {
	Question   model.Question
	Prompt     string // personalized question text
	SkippedIDs []string
	Path       oracle.Path
}

// selectorReply is the expected oracle output shape.
type selectorReply struct {
	QuestionID       string `json:"questionId"`
	PersonalizedText string `json:"personalizedText"`
}

// Next picks one question from a non-empty candidate set. Oracle context is
// built from human-entered responses only; auto-populated entries are
// excluded. The fallback — first candidate in catalog order — guarantees
// forward progress under total oracle unavailability.
func (s *QuestionSelector) Next(ctx context.Context, session *model.Session, catalog *model.Catalog, candidates []model.Question, skippedIDs []string) *Selection {
	if len(candidates) == 0 {
		return nil
	}

	fallback := selectorReply{QuestionID: candidates[0].ID}

	prompt := s.buildPrompt(session, candidates)
	reply, path := oracle.CallJSON(ctx, s.oracle, s.config.Models.Selector, "question_selection", prompt, fallback, s.log)

	chosen := findCandidate(candidates, reply.QuestionID)
	if chosen == nil && path == oracle.PathOracle {
		// The oracle proposed an id outside the filtered candidate set.
		// Recover by looking it up in the full catalog; this can reintroduce
		// a question deduction excluded, so it is logged loudly.
		if q := catalog.Find(reply.QuestionID); q != nil {
			s.log.Warnw("oracle chose question outside candidate set, recovering from full catalog",
				"questionId", reply.QuestionID, "sessionId", session.ID)
			chosen = q
		}
	}
	if chosen == nil {
		chosen = &candidates[0]
		reply.PersonalizedText = ""
		path = oracle.PathFallback
	}

	text := reply.PersonalizedText
	if text == "" {
		text = chosen.Text
	}
	// Placeholder substitution happens uniformly, whichever path produced
	// the text.
	text = strings.ReplaceAll(text, model.CompanyPlaceholder, session.Participant.Company)

	return &Selection{
		Question:   *chosen,
		Prompt:     text,
		SkippedIDs: skippedIDs,
		Path:       path,
	}
}

func (s *QuestionSelector) buildPrompt(session *model.Session, candidates []model.Question) string {
	var sb strings.Builder

	sb.WriteString(`You are conducting an adaptive AI-readiness interview. Choose the single best next question from the candidates below and personalize its wording for this participant.
Return ONLY valid JSON:
{"questionId": "<id from the candidate list>", "personalizedText": "<the question, personalized>"}

`)

	fmt.Fprintf(&sb, "Participant: %s, %s at %s (%s, %s employees)\n\n",
		session.Participant.Name, session.Participant.Role, session.Participant.Company,
		session.Participant.Industry, session.Participant.CompanySize)

	sb.WriteString("Candidate questions:\n")
	for _, q := range candidates {
		fmt.Fprintf(&sb, "- [%s] (%s/%s, %s) %s\n", q.ID, q.Phase, q.Section, q.InputType, q.Text)
	}

	human := session.HumanResponses()
	if len(human) > 0 {
		sb.WriteString("\nResponses so far:\n")
		for _, r := range human {
			fmt.Fprintf(&sb, "Q: %s\nA: %s\n", r.QuestionText, r.Answer.Display())
		}
	}

	if guidance := GuidanceBlock(session.Participant); guidance != "" {
		sb.WriteString("\nDeduction guidance:\n")
		sb.WriteString(guidance)
	}

	sb.WriteString("\nPrefer the question that best follows from what the participant just said. Pick exactly one candidate id.")
	return sb.String()
}

func findCandidate(candidates []model.Question, id string) *model.Question {
	for i := range candidates {
		if candidates[i].ID == id {
			return &candidates[i]
		}
	}
	return nil
}
