package model

import "time"

// DimensionScore is the per-dimension slice of an analysis.
type DimensionScore struct {
	Score      float64  `json:"score" bson:"score"`           // 0-100
	Confidence float64  `json:"confidence" bson:"confidence"` // 0-1
	Evidence   []string `json:"evidence,omitempty" bson:"evidence,omitempty"`
	Flags      []string `json:"flags,omitempty" bson:"flags,omitempty"`
}

// ArchetypeResult assigns one behavioral archetype with confidence.
type ArchetypeResult struct {
	Name       string  `json:"name" bson:"name"`
	Confidence float64 `json:"confidence" bson:"confidence"`
}

// GapFinding reports a divergence between two scored dimensions.
type GapFinding struct {
	DimensionA string  `json:"dimensionA" bson:"dimensionA"`
	DimensionB string  `json:"dimensionB" bson:"dimensionB"`
	Delta      float64 `json:"delta" bson:"delta"`
	Insight    string  `json:"insight" bson:"insight"`
}

// PriorityAction is one recommended next step, lower priority = sooner.
type PriorityAction struct {
	Priority int    `json:"priority" bson:"priority"`
	Action   string `json:"action" bson:"action"`
}

// ServiceRecommendation maps a finding to a catalog service offering.
type ServiceRecommendation struct {
	Service string `json:"service" bson:"service"`
	Reason  string `json:"reason" bson:"reason"`
}

// AnalysisResult is the complete output of the scoring step. It is created
// atomically as one unit and attached to the session in a single write;
// partial results are never persisted.
type AnalysisResult struct {
	OverallScore    float64                   `json:"overallScore" bson:"overallScore"` // 0-100
	Dimensions      map[string]DimensionScore `json:"dimensions" bson:"dimensions"`
	Archetype       ArchetypeResult           `json:"archetype" bson:"archetype"`
	Gaps            []GapFinding              `json:"gaps" bson:"gaps"`
	Flags           []string                  `json:"flags" bson:"flags"`
	Actions         []PriorityAction          `json:"actions" bson:"actions"`
	Recommendations []ServiceRecommendation   `json:"recommendations" bson:"recommendations"`
	Narrative       string                    `json:"narrative,omitempty" bson:"narrative,omitempty"`
	Degraded        bool                      `json:"degraded,omitempty" bson:"degraded,omitempty"`
	GeneratedAt     time.Time                 `json:"generatedAt" bson:"generatedAt"`
}
