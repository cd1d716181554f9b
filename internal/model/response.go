package model

import (
	"fmt"
	"time"
)

// ResponseSource marks where an auto-populated response came from.
type ResponseSource string

const (
	SourceIntake  ResponseSource = "intake"  // copied from the participant profile
	SourceDeduced ResponseSource = "deduced" // inferred by the deduction engine
)

// Confidence is the per-response scoring triple, each component in [0,1].
type Confidence struct {
	Specificity     float64 `json:"specificity" bson:"specificity"`
	EmotionalCharge float64 `json:"emotionalCharge" bson:"emotionalCharge"`
	Consistency     float64 `json:"consistency" bson:"consistency"`
}

// Clamp forces every component into [0,1] regardless of what the oracle
// returned.
func (c Confidence) Clamp() Confidence {
	return Confidence{
		Specificity:     clamp01(c.Specificity),
		EmotionalCharge: clamp01(c.EmotionalCharge),
		Consistency:     clamp01(c.Consistency),
	}
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

// Fixed confidence defaults per call-site policy.
var (
	ConfidenceNeutral    = Confidence{Specificity: 0.5, EmotionalCharge: 0.5, Consistency: 0.5}
	ConfidenceStructured = Confidence{Specificity: 0.9, EmotionalCharge: 0.5, Consistency: 0.9}
	ConfidenceIntake     = Confidence{Specificity: 0.95, EmotionalCharge: 0.5, Consistency: 0.95}
	ConfidenceDeduced    = Confidence{Specificity: 0.7, EmotionalCharge: 0.5, Consistency: 0.7}
)

// AnswerValue holds the answer payload; which field is set depends on the
// question's input type.
type AnswerValue struct {
	Text    string   `json:"text,omitempty" bson:"text,omitempty"`       // open_text, voice, ai_conversation
	Scale   int      `json:"scale,omitempty" bson:"scale,omitempty"`     // scale
	Choice  string   `json:"choice,omitempty" bson:"choice,omitempty"`   // single_choice
	Choices []string `json:"choices,omitempty" bson:"choices,omitempty"` // multi_choice
}

// Validate checks the payload shape against the question's input type.
func (a AnswerValue) Validate(q *Question) error {
	switch q.InputType {
	case InputScale:
		if q.ScaleMax > 0 && (a.Scale < q.ScaleMin || a.Scale > q.ScaleMax) {
			return Validationf("scale answer %d outside [%d,%d] for question %s", a.Scale, q.ScaleMin, q.ScaleMax, q.ID)
		}
	case InputSingleChoice:
		if a.Choice == "" {
			return Validationf("question %s requires a choice", q.ID)
		}
		if len(q.Options) > 0 && !containsOption(q.Options, a.Choice) {
			return Validationf("choice %q is not an option for question %s", a.Choice, q.ID)
		}
	case InputMultiChoice:
		if len(a.Choices) == 0 {
			return Validationf("question %s requires at least one choice", q.ID)
		}
		for _, c := range a.Choices {
			if len(q.Options) > 0 && !containsOption(q.Options, c) {
				return Validationf("choice %q is not an option for question %s", c, q.ID)
			}
		}
	case InputOpenText, InputVoice, InputConversation:
		if a.Text == "" {
			return Validationf("question %s requires a text answer", q.ID)
		}
	default:
		return Validationf("unknown input type %q", q.InputType)
	}
	return nil
}

// Equal compares two payloads, used for idempotent resubmission detection.
func (a AnswerValue) Equal(b AnswerValue) bool {
	if a.Text != b.Text || a.Scale != b.Scale || a.Choice != b.Choice {
		return false
	}
	if len(a.Choices) != len(b.Choices) {
		return false
	}
	for i := range a.Choices {
		if a.Choices[i] != b.Choices[i] {
			return false
		}
	}
	return true
}

// Display renders the payload as text for oracle context.
func (a AnswerValue) Display() string {
	switch {
	case a.Text != "":
		return a.Text
	case a.Choice != "":
		return a.Choice
	case len(a.Choices) > 0:
		return fmt.Sprintf("%v", a.Choices)
	default:
		return fmt.Sprintf("%d", a.Scale)
	}
}

func containsOption(opts []string, v string) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}

// FollowUpExchange pairs one interviewer follow-up with the participant's
// reply, produced by the conversation sub-engine.
type FollowUpExchange struct {
	Question string `json:"question" bson:"question"`
	Answer   string `json:"answer" bson:"answer"`
}

// Response is one recorded answer. Responses are append-only except through
// the explicit edit operation.
type Response struct {
	QuestionID   string      `json:"questionId" bson:"questionId"`
	QuestionText string      `json:"questionText" bson:"questionText"`
	InputType    InputType   `json:"inputType" bson:"inputType"`
	Answer       AnswerValue `json:"answer" bson:"answer"`
	Confidence   Confidence  `json:"confidence" bson:"confidence"`

	FollowUps []FollowUpExchange `json:"aiFollowUps,omitempty" bson:"aiFollowUps,omitempty"`

	Skipped       bool           `json:"skipped,omitempty" bson:"skipped,omitempty"`
	AutoPopulated bool           `json:"autoPopulated,omitempty" bson:"autoPopulated,omitempty"`
	Source        ResponseSource `json:"source,omitempty" bson:"source,omitempty"`

	AnsweredAt time.Time  `json:"answeredAt" bson:"answeredAt"`
	EditedAt   *time.Time `json:"editedAt,omitempty" bson:"editedAt,omitempty"`
	EditCount  int        `json:"editCount,omitempty" bson:"editCount,omitempty"`
}
