package model

import "time"

// SessionStatus is the lifecycle state of an assessment session.
// Transitions are forward-only and happen only through service operations.
type SessionStatus string

const (
	SessionIntake     SessionStatus = "intake"
	SessionResearched SessionStatus = "researched" // optional enrichment step
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAnalyzed   SessionStatus = "analyzed"
)

var statusOrder = map[SessionStatus]int{
	SessionIntake:     0,
	SessionResearched: 1,
	SessionInProgress: 2,
	SessionCompleted:  3,
	SessionAnalyzed:   4,
}

// CanAdvanceTo reports whether moving to next respects the forward-only lifecycle.
func (s SessionStatus) CanAdvanceTo(next SessionStatus) bool {
	cur, ok := statusOrder[s]
	if !ok {
		return false
	}
	target, ok := statusOrder[next]
	if !ok {
		return false
	}
	return target > cur
}

// ParticipantProfile is captured at session creation and never overwritten;
// later corrections are layered on top (see ProfileCorrection).
type ParticipantProfile struct {
	Name        string `json:"name" bson:"name"`
	Role        string `json:"role" bson:"role"`
	Company     string `json:"company" bson:"company"`
	Industry    string `json:"industry" bson:"industry"`
	CompanySize string `json:"companySize" bson:"companySize"` // bracket, e.g. "1-10"
	Email       string `json:"email" bson:"email"`
}

// ProfileCorrection is an admin-applied fix to one profile field.
// The original intake value stays in Participant.
type ProfileCorrection struct {
	Field     string    `json:"field" bson:"field"`
	Value     string    `json:"value" bson:"value"`
	AppliedAt time.Time `json:"appliedAt" bson:"appliedAt"`
}

// DialogueState is the persisted partial transcript of an in-flight
// ai_conversation question. Cleared once the dialogue completes.
type DialogueState struct {
	QuestionID       string             `json:"questionId" bson:"questionId"`
	Turns            []ConversationTurn `json:"turns" bson:"turns"`
	ParticipantTurns int                `json:"participantTurns" bson:"participantTurns"`
	StartedAt        time.Time          `json:"startedAt" bson:"startedAt"`
}

// Session is the single-writer aggregate for one assessment interview.
// Every mutating operation loads it whole, mutates in memory, and saves it
// back; there is no internal locking.
type Session struct {
	ID              string              `json:"id" bson:"_id,omitempty"`
	AssessmentType  string              `json:"assessmentType" bson:"assessmentType"`
	Status          SessionStatus       `json:"status" bson:"status"`
	InvitationID    string              `json:"invitationId" bson:"invitationId"`
	Participant     ParticipantProfile  `json:"participant" bson:"participant"`
	Corrections     []ProfileCorrection `json:"corrections,omitempty" bson:"corrections,omitempty"`
	Responses       []Response          `json:"responses" bson:"responses"`
	Transcript      []ConversationTurn  `json:"transcript,omitempty" bson:"transcript,omitempty"`
	ActiveDialogue  *DialogueState      `json:"activeDialogue,omitempty" bson:"activeDialogue,omitempty"`
	Analysis        *AnalysisResult     `json:"analysis,omitempty" bson:"analysis,omitempty"`
	ResearchContext string              `json:"researchContext,omitempty" bson:"researchContext,omitempty"`

	// Position pointers for the current question.
	CurrentPhase      string `json:"currentPhase,omitempty" bson:"currentPhase,omitempty"`
	CurrentSection    string `json:"currentSection,omitempty" bson:"currentSection,omitempty"`
	CurrentQuestionID string `json:"currentQuestionId,omitempty" bson:"currentQuestionId,omitempty"`

	CreatedAt   time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	AnalyzedAt  *time.Time `json:"analyzedAt,omitempty" bson:"analyzedAt,omitempty"`
}

// FindResponse returns the recorded response for a question, or nil.
func (s *Session) FindResponse(questionID string) *Response {
	for i := range s.Responses {
		if s.Responses[i].QuestionID == questionID {
			return &s.Responses[i]
		}
	}
	return nil
}

// AnsweredSet returns the set of question IDs that already have a response.
func (s *Session) AnsweredSet() map[string]bool {
	answered := make(map[string]bool, len(s.Responses))
	for i := range s.Responses {
		answered[s.Responses[i].QuestionID] = true
	}
	return answered
}

// HumanResponses returns responses actually entered by the participant,
// excluding auto-populated ones. Oracle context is built only from these.
func (s *Session) HumanResponses() []Response {
	out := make([]Response, 0, len(s.Responses))
	for _, r := range s.Responses {
		if r.AutoPopulated {
			continue
		}
		out = append(out, r)
	}
	return out
}

// NonSkippedCount counts responses carrying an actual answer; the analysis
// precondition is checked against this.
func (s *Session) NonSkippedCount() int {
	n := 0
	for _, r := range s.Responses {
		if !r.Skipped {
			n++
		}
	}
	return n
}
