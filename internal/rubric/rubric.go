// Package rubric holds the static reference data the analysis step scores
// against: dimension definitions, archetype profiles, gap patterns, and the
// service catalog. Loaded into the analysis prompt verbatim.
package rubric

import (
	"fmt"
	"strings"
)

// Dimension ids, in report order.
const (
	DimAIAwareness      = "ai_awareness"
	DimAIAction         = "ai_action"
	DimProcessReadiness = "process_readiness"
	DimStrategicClarity = "strategic_clarity"
	DimChangeEnergy     = "change_energy"
	DimTeamCapacity     = "team_capacity"
	DimMissionAlignment = "mission_alignment"
	DimInvestmentReady  = "investment_readiness"
)

// Dimension describes one scoring axis.
type Dimension struct {
	ID          string
	Label       string
	Description string
}

// Dimensions is the canonical ordered list of scoring axes.
var Dimensions = []Dimension{
	{DimAIAwareness, "AI Awareness", "How well the participant understands current AI capabilities and limits."},
	{DimAIAction, "AI Action", "Concrete AI usage today: tools adopted, workflows changed, experiments run."},
	{DimProcessReadiness, "Process Readiness", "Whether workflows are documented and repeatable enough to automate."},
	{DimStrategicClarity, "Strategic Clarity", "Whether there is a coherent view of where AI fits the business."},
	{DimChangeEnergy, "Change Energy", "Appetite and momentum for organizational change."},
	{DimTeamCapacity, "Team Capacity", "Skills and bandwidth available to adopt new tooling."},
	{DimMissionAlignment, "Mission Alignment", "Whether AI ambitions serve the organization's stated mission."},
	{DimInvestmentReady, "Investment Readiness", "Willingness and ability to fund transformation work."},
}

// DimensionIDs returns the ordered id list.
func DimensionIDs() []string {
	ids := make([]string, len(Dimensions))
	for i, d := range Dimensions {
		ids[i] = d.ID
	}
	return ids
}

// Archetype is one behavioral/organizational profile the analysis can assign.
type Archetype struct {
	Name        string
	Description string
	// Signature names the dimension pattern that typically produces this
	// archetype, as guidance for the oracle.
	Signature string
}

// Archetypes is the closed set of assignable profiles.
var Archetypes = []Archetype{
	{"Curious Observer", "Interested in AI but has not moved past reading and conversation.", "high ai_awareness, low ai_action"},
	{"Scrappy Experimenter", "Adopts tools ad hoc with energy but no structure.", "high ai_action and change_energy, low process_readiness"},
	{"Systematic Builder", "Methodical adoption grounded in documented processes.", "high process_readiness and strategic_clarity"},
	{"Visionary Strategist", "Clear AI strategy ahead of current execution capacity.", "high strategic_clarity, lower team_capacity"},
	{"Overloaded Operator", "Sees the need but has no bandwidth to act.", "low team_capacity and change_energy despite awareness"},
	{"Mission-Locked Skeptic", "Holds back from AI out of concern it conflicts with the mission.", "high mission_alignment concern, low ai_action"},
}

// FallbackArchetype is assigned when analysis output cannot be parsed; the
// session still reaches analyzed, flagged for manual review.
var FallbackArchetype = Archetype{
	Name:        "Unclassified",
	Description: "Automated classification unavailable; requires manual review.",
}

// GapPattern describes a known meaningful divergence between two dimensions.
type GapPattern struct {
	DimensionA string
	DimensionB string
	Insight    string
}

// GapPatterns is the catalog of divergences the analysis should look for.
var GapPatterns = []GapPattern{
	{DimAIAwareness, DimAIAction, "Knows more than they do: awareness outruns execution, usually a process or confidence gap."},
	{DimStrategicClarity, DimTeamCapacity, "Strategy outruns staffing: plans exist that the current team cannot deliver."},
	{DimChangeEnergy, DimProcessReadiness, "Enthusiasm without rails: change appetite will dissipate without documented process."},
	{DimInvestmentReady, DimStrategicClarity, "Budget without direction: funding available but no clear place to spend it."},
	{DimAIAction, DimMissionAlignment, "Adoption drifting from mission: tools in use that nobody tied back to purpose."},
}

// Service is one offering the analysis can recommend.
type Service struct {
	Name        string
	Description string
}

// Services is the recommendable catalog.
var Services = []Service{
	{"AI Readiness Workshop", "Half-day session mapping current capability against the eight dimensions."},
	{"Process Mapping Sprint", "Two-week engagement documenting core workflows ahead of automation."},
	{"Pilot Build", "Scoped four-week build of one AI-assisted workflow with the client team."},
	{"Leadership Alignment Session", "Facilitated session reconciling AI strategy with mission and budget."},
	{"Team Enablement Program", "Structured upskilling track for teams adopting AI tooling."},
}

// PromptBlock renders the full rubric as a text block for the analysis
// prompt.
func PromptBlock() string {
	var sb strings.Builder

	sb.WriteString("SCORING DIMENSIONS (score each 0-100 with confidence 0-1):\n")
	for _, d := range Dimensions {
		fmt.Fprintf(&sb, "- %s (%s): %s\n", d.ID, d.Label, d.Description)
	}

	sb.WriteString("\nARCHETYPES (assign exactly one):\n")
	for _, a := range Archetypes {
		fmt.Fprintf(&sb, "- %s: %s Typical signature: %s\n", a.Name, a.Description, a.Signature)
	}

	sb.WriteString("\nGAP PATTERNS (report any that apply):\n")
	for _, g := range GapPatterns {
		fmt.Fprintf(&sb, "- %s vs %s: %s\n", g.DimensionA, g.DimensionB, g.Insight)
	}

	sb.WriteString("\nSERVICES (recommend from this catalog only):\n")
	for _, s := range Services {
		fmt.Fprintf(&sb, "- %s: %s\n", s.Name, s.Description)
	}

	return sb.String()
}

// ValidArchetype reports whether name is in the closed archetype set.
func ValidArchetype(name string) bool {
	if name == FallbackArchetype.Name {
		return true
	}
	for _, a := range Archetypes {
		if a.Name == name {
			return true
		}
	}
	return false
}
