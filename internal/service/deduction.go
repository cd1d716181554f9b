package service

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/behuman/cascade/internal/model"
)

// Well-known catalog question ids the deduction engine operates on.
const (
	QuestionRole        = "profile_role"
	QuestionIndustry    = "profile_industry"
	QuestionCompanySize = "profile_company_size"
	QuestionTeamSize    = "team_size"
	QuestionTechLead    = "tech_decisions"
)

// SmallestBracket is the lowest organization-size bracket.
const SmallestBracket = "1-10"

// RoleBucket is the coarse role classification used by deduction rules.
type RoleBucket string

const (
	BucketExecutive    RoleBucket = "executive_founder"
	BucketChiefOfficer RoleBucket = "chief_officer"
	BucketVPDirector   RoleBucket = "vp_director"
	BucketManagerLead  RoleBucket = "manager_lead"
	BucketIC           RoleBucket = "individual_contributor"
)

// BucketLabels are the display answers for the role question.
var BucketLabels = map[RoleBucket]string{
	BucketExecutive:    "Executive / Founder",
	BucketChiefOfficer: "Chief Officer",
	BucketVPDirector:   "VP / Director",
	BucketManagerLead:  "Manager / Lead",
	BucketIC:           "Individual Contributor",
}

// roleMatchers is the ordered priority list; the first bucket with any match
// wins. Short acronyms live in words and match whole tokens only, so that
// "director" never triggers "cto" and "coordinator" never triggers "coo".
var roleMatchers = []struct {
	bucket     RoleBucket
	substrings []string
	words      []string
}{
	{BucketExecutive, []string{"founder", "chief executive", "owner", "president"}, []string{"ceo"}},
	{BucketChiefOfficer, []string{"chief"}, []string{"cto", "coo", "cfo", "cio", "cmo", "cpo"}},
	{BucketVPDirector, []string{"vice president", "director", "head of"}, []string{"vp"}},
	{BucketManagerLead, []string{"manager", "lead", "supervisor"}, nil},
}

// ClassifyRole buckets free-form role text by ordered match: phrase
// substrings plus whole-token acronyms. Identical input always yields the
// identical bucket.
func ClassifyRole(role string) RoleBucket {
	lower := strings.ToLower(role)

	tokens := map[string]bool{}
	for _, t := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		tokens[t] = true
	}

	for _, m := range roleMatchers {
		for _, sub := range m.substrings {
			if strings.Contains(lower, sub) {
				return m.bucket
			}
		}
		for _, w := range m.words {
			if tokens[w] {
				return m.bucket
			}
		}
	}
	return BucketIC
}

// directReportsEstimate synthesizes a team-size guess for the smallest
// bracket: founders of tiny companies typically run the whole team.
func directReportsEstimate(bucket RoleBucket) int {
	if bucket == BucketExecutive {
		return 8
	}
	return 3
}

// DeductionRule removes one question from the candidate set when its answer
// is obvious from known facts. Rules are evaluated independently.
type DeductionRule struct {
	QuestionID string
	Reason     string
	Applies    func(profile model.ParticipantProfile, bucket RoleBucket) bool
}

// deductionRules is the declarative rule table. The selector's guidance
// block is rendered from this same table.
var deductionRules = []DeductionRule{
	{
		QuestionID: QuestionTeamSize,
		Reason:     "organization is in the smallest size bracket, so team size is already determined",
		Applies: func(p model.ParticipantProfile, _ RoleBucket) bool {
			return p.CompanySize == SmallestBracket
		},
	},
	{
		QuestionID: QuestionTechLead,
		Reason:     "a founder/executive of the smallest organization necessarily leads technology decisions",
		Applies: func(p model.ParticipantProfile, bucket RoleBucket) bool {
			return p.CompanySize == SmallestBracket && bucket == BucketExecutive
		},
	},
}

// AutoPopulate synthesizes responses for demographic questions directly from
// the participant profile, plus deduced estimates where the rules allow.
// Pure function of (profile, catalog, answered set); no external calls.
func AutoPopulate(profile model.ParticipantProfile, catalog *model.Catalog, answered map[string]bool, now time.Time) []model.Response {
	bucket := ClassifyRole(profile.Role)

	var out []model.Response

	populate := func(questionID string, answer model.AnswerValue, source model.ResponseSource, conf model.Confidence) {
		if answered[questionID] {
			return
		}
		q := catalog.Find(questionID)
		if q == nil {
			return
		}
		out = append(out, model.Response{
			QuestionID:    q.ID,
			QuestionText:  q.Personalize(profile.Company),
			InputType:     q.InputType,
			Answer:        answer,
			Confidence:    conf,
			AutoPopulated: true,
			Source:        source,
			AnsweredAt:    now,
		})
	}

	populate(QuestionRole, model.AnswerValue{Choice: BucketLabels[bucket]}, model.SourceIntake, model.ConfidenceIntake)
	populate(QuestionIndustry, model.AnswerValue{Text: profile.Industry}, model.SourceIntake, model.ConfidenceIntake)
	populate(QuestionCompanySize, model.AnswerValue{Choice: profile.CompanySize}, model.SourceIntake, model.ConfidenceIntake)

	if profile.CompanySize == SmallestBracket {
		populate(QuestionTeamSize, model.AnswerValue{Scale: directReportsEstimate(bucket)}, model.SourceDeduced, model.ConfidenceDeduced)
	}

	return out
}

// FilterCandidates returns the remaining candidate set: catalog order, minus
// answered questions, minus questions excluded by deduction rules. Filtered
// questions are permanently excluded for this session, never answered.
func FilterCandidates(profile model.ParticipantProfile, catalog *model.Catalog, answered map[string]bool) (candidates []model.Question, filtered []string) {
	bucket := ClassifyRole(profile.Role)

	excluded := make(map[string]bool)
	for _, rule := range deductionRules {
		if rule.Applies(profile, bucket) {
			excluded[rule.QuestionID] = true
		}
	}

	for _, q := range catalog.Questions {
		if answered[q.ID] {
			continue
		}
		if excluded[q.ID] {
			filtered = append(filtered, q.ID)
			continue
		}
		candidates = append(candidates, q)
	}
	return candidates, filtered
}

// GuidanceBlock renders the applicable deduction rules as oracle guidance,
// so the selector knows which questions were excluded and why.
func GuidanceBlock(profile model.ParticipantProfile) string {
	bucket := ClassifyRole(profile.Role)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Participant role classified as: %s\n", BucketLabels[bucket])
	for _, rule := range deductionRules {
		if rule.Applies(profile, bucket) {
			fmt.Fprintf(&sb, "Excluded question %s: %s\n", rule.QuestionID, rule.Reason)
		}
	}
	return sb.String()
}
