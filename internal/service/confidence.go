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

// confidenceContextWindow bounds how many prior responses feed the scorer.
const confidenceContextWindow = 5

// ConfidenceScorer scores one free-form answer against prior context.
// Output components are always clamped into [0,1]; any oracle failure yields
// the neutral default.
type ConfidenceScorer struct {
	oracle oracle.Generator
	config *config.AIConfig
	log    *zap.SugaredLogger
}

// NewConfidenceScorer creates a new scorer.
func NewConfidenceScorer(gen oracle.Generator, cfg *config.AIConfig, log *zap.SugaredLogger) *ConfidenceScorer {
	return &ConfidenceScorer{oracle: gen, config: cfg, log: log}
}

// Score evaluates answerText for the given question. Structured modalities
// never reach the oracle: the format itself removes ambiguity, so they get
// the fixed high-confidence default.
func (s *ConfidenceScorer) Score(ctx context.Context, question *model.Question, answerText string, prior []model.Response) model.Confidence {
	if question.InputType.Structured() {
		return model.ConfidenceStructured
	}

	prompt := s.buildPrompt(question, answerText, prior)
	conf, _ := oracle.CallJSON(ctx, s.oracle, s.config.Models.Confidence, "confidence_scoring", prompt, model.ConfidenceNeutral, s.log)
	return conf.Clamp()
}

func (s *ConfidenceScorer) buildPrompt(question *model.Question, answerText string, prior []model.Response) string {
	var sb strings.Builder

	sb.WriteString(`Score this interview answer on three independent axes, each 0.0 to 1.0.
Return ONLY valid JSON:
{"specificity": 0.0, "emotionalCharge": 0.0, "consistency": 0.0}

specificity: concrete details, names, numbers vs. vague generalities.
emotionalCharge: how emotionally loaded the language is.
consistency: agreement with the participant's earlier answers.

`)

	fmt.Fprintf(&sb, "Question: %s\nAnswer: %s\n", question.Text, answerText)

	if len(prior) > confidenceContextWindow {
		prior = prior[len(prior)-confidenceContextWindow:]
	}
	if len(prior) > 0 {
		sb.WriteString("\nEarlier answers for consistency checking:\n")
		for _, r := range prior {
			fmt.Fprintf(&sb, "Q: %s\nA: %s\n", r.QuestionText, r.Answer.Display())
		}
	}

	return sb.String()
}
