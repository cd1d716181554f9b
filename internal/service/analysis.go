package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/behuman/cascade/internal/config"
	"github.com/behuman/cascade/internal/model"
	"github.com/behuman/cascade/internal/oracle"
	"github.com/behuman/cascade/internal/rubric"
)

// MinResponsesForAnalysis is the analysis precondition: fewer recorded
// non-skipped responses and the request is rejected.
const MinResponsesForAnalysis = 5

// AnalysisGate produces the final scoring report. Its only responsibility
// is structural: one oracle call, shape validation, and a degraded-but-valid
// substitute on failure so the session still reaches analyzed.
type AnalysisGate struct {
	oracle oracle.Generator
	config *config.AIConfig
	log    *zap.SugaredLogger
}

// NewAnalysisGate creates a new analysis gate.
func NewAnalysisGate(gen oracle.Generator, cfg *config.AIConfig, log *zap.SugaredLogger) *AnalysisGate {
	return &AnalysisGate{oracle: gen, config: cfg, log: log}
}

// Generate runs the single analysis oracle call over the full transcript
// plus the static rubric. The result is always structurally valid and
// complete — partial or malformed oracle output is replaced wholesale by
// the degraded default, never persisted.
func (g *AnalysisGate) Generate(ctx context.Context, session *model.Session) *model.AnalysisResult {
	prompt := g.buildPrompt(session)

	result, path := oracle.CallJSON(ctx, g.oracle, g.config.Models.Analysis, "final_analysis", prompt, model.AnalysisResult{}, g.log)
	if path == oracle.PathFallback || !structurallyValid(&result) {
		if path == oracle.PathOracle {
			g.log.Warnw("analysis output structurally invalid, substituting degraded result", "sessionId", session.ID)
		}
		return degradedResult()
	}

	sanitize(&result)
	result.GeneratedAt = time.Now()
	return &result
}

// structurallyValid checks the shape the gate requires: an archetype from
// the closed set and at least one scored dimension.
func structurallyValid(r *model.AnalysisResult) bool {
	if r.Archetype.Name == "" || !rubric.ValidArchetype(r.Archetype.Name) {
		return false
	}
	if len(r.Dimensions) == 0 {
		return false
	}
	return true
}

// sanitize clamps numeric fields and fills missing dimensions so the stored
// result is always complete.
func sanitize(r *model.AnalysisResult) {
	r.OverallScore = clampScore(r.OverallScore)
	r.Archetype.Confidence = clamp01(r.Archetype.Confidence)

	for _, id := range rubric.DimensionIDs() {
		d, ok := r.Dimensions[id]
		if !ok {
			r.Dimensions[id] = model.DimensionScore{Score: 50, Confidence: 0, Flags: []string{"not_scored"}}
			continue
		}
		d.Score = clampScore(d.Score)
		d.Confidence = clamp01(d.Confidence)
		r.Dimensions[id] = d
	}

	if r.Gaps == nil {
		r.Gaps = []model.GapFinding{}
	}
	if r.Flags == nil {
		r.Flags = []string{}
	}
	if r.Actions == nil {
		r.Actions = []model.PriorityAction{}
	}
	if r.Recommendations == nil {
		r.Recommendations = []model.ServiceRecommendation{}
	}
}

// degradedResult is the fixed valid substitute for unusable analysis
// output: neutral score, lowest-confidence archetype, empty findings, and a
// narrative flagging manual review.
func degradedResult() *model.AnalysisResult {
	dims := make(map[string]model.DimensionScore, len(rubric.Dimensions))
	for _, id := range rubric.DimensionIDs() {
		dims[id] = model.DimensionScore{Score: 50, Confidence: 0, Evidence: []string{}, Flags: []string{}}
	}
	return &model.AnalysisResult{
		OverallScore:    50,
		Dimensions:      dims,
		Archetype:       model.ArchetypeResult{Name: rubric.FallbackArchetype.Name, Confidence: 0},
		Gaps:            []model.GapFinding{},
		Flags:           []string{"degraded_analysis"},
		Actions:         []model.PriorityAction{},
		Recommendations: []model.ServiceRecommendation{},
		Narrative:       "Automated analysis was unavailable for this session. Scores are neutral placeholders; manual review is required.",
		Degraded:        true,
		GeneratedAt:     time.Now(),
	}
}

func (g *AnalysisGate) buildPrompt(session *model.Session) string {
	var sb strings.Builder

	sb.WriteString(`You are scoring a completed AI-readiness assessment interview.
Return ONLY valid JSON:
{
  "overallScore": 0-100,
  "dimensions": {"<dimension_id>": {"score": 0-100, "confidence": 0.0-1.0, "evidence": ["quote"], "flags": []}},
  "archetype": {"name": "<archetype from the list>", "confidence": 0.0-1.0},
  "gaps": [{"dimensionA": "...", "dimensionB": "...", "delta": 0, "insight": "..."}],
  "flags": [],
  "actions": [{"priority": 1, "action": "..."}],
  "recommendations": [{"service": "<from service catalog>", "reason": "..."}],
  "narrative": "2-3 sentence summary"
}

`)

	sb.WriteString(rubric.PromptBlock())

	fmt.Fprintf(&sb, "\nParticipant: %s, %s at %s (%s, %s employees)\n",
		session.Participant.Name, session.Participant.Role, session.Participant.Company,
		session.Participant.Industry, session.Participant.CompanySize)

	sb.WriteString("\nFULL INTERVIEW TRANSCRIPT:\n")
	for _, r := range session.Responses {
		fmt.Fprintf(&sb, "\nQ [%s, %s]: %s\n", r.QuestionID, r.InputType, r.QuestionText)
		if r.Skipped {
			sb.WriteString("A: (skipped)\n")
			continue
		}
		fmt.Fprintf(&sb, "A: %s\n", r.Answer.Display())
		fmt.Fprintf(&sb, "   confidence: specificity=%.2f emotionalCharge=%.2f consistency=%.2f\n",
			r.Confidence.Specificity, r.Confidence.EmotionalCharge, r.Confidence.Consistency)
		for _, fu := range r.FollowUps {
			fmt.Fprintf(&sb, "   follow-up Q: %s\n   follow-up A: %s\n", fu.Question, fu.Answer)
		}
	}

	sb.WriteString("\nScore every dimension, assign exactly one archetype, report applicable gaps, and recommend services only from the catalog.")
	return sb.String()
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
