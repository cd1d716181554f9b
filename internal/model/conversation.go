package model

import "time"

// TurnRole identifies who produced a conversation turn.
type TurnRole string

const (
	TurnParticipant TurnRole = "participant"
	TurnInterviewer TurnRole = "interviewer"
)

// ConversationTurn is one utterance in an ai_conversation dialogue.
// Text is always stored cleaned — completion markers and internal
// annotations never reach persistence.
type ConversationTurn struct {
	Role       TurnRole  `json:"role" bson:"role"`
	Text       string    `json:"text" bson:"text"`
	QuestionID string    `json:"questionId" bson:"questionId"`
	Timestamp  time.Time `json:"timestamp" bson:"timestamp"`
}
