package model

import "strings"

// InputType defines how a question is answered. Each variant has its own
// answer payload shape and confidence policy.
type InputType string

const (
	InputScale        InputType = "scale"           // numeric rating, never oracle-scored
	InputSingleChoice InputType = "single_choice"   // one option
	InputMultiChoice  InputType = "multi_choice"    // several options
	InputOpenText     InputType = "open_text"       // free text, oracle-scored
	InputVoice        InputType = "voice"           // transcribed upstream, treated as free text
	InputConversation InputType = "ai_conversation" // multi-turn dialogue sub-engine
)

// Structured reports whether the format itself removes ambiguity, in which
// case confidence scoring skips the oracle.
func (t InputType) Structured() bool {
	switch t {
	case InputScale, InputSingleChoice, InputMultiChoice:
		return true
	}
	return false
}

// FreeForm reports whether the answer is free text to be confidence-scored.
func (t InputType) FreeForm() bool {
	return t == InputOpenText || t == InputVoice
}

// CompanyPlaceholder is the token in question text substituted with the
// participant's organization name.
const CompanyPlaceholder = "{company}"

// Question is one catalog entry. Catalogs are loaded once per assessment
// type and immutable for the life of a session.
type Question struct {
	ID        string    `json:"id" bson:"id"`
	Phase     string    `json:"phase" bson:"phase"`
	Section   string    `json:"section" bson:"section"`
	Text      string    `json:"text" bson:"text"` // may contain {company}
	InputType InputType `json:"inputType" bson:"inputType"`
	Required  bool      `json:"required" bson:"required"`

	// Scoring metadata.
	Dimensions []string `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
	Weight     float64  `json:"weight" bson:"weight"`

	// Per-type extras.
	ScaleMin int      `json:"scaleMin,omitempty" bson:"scaleMin,omitempty"`
	ScaleMax int      `json:"scaleMax,omitempty" bson:"scaleMax,omitempty"`
	Options  []string `json:"options,omitempty" bson:"options,omitempty"`

	// DialogueGuidance steers the interviewer during ai_conversation turns.
	DialogueGuidance string `json:"dialogueGuidance,omitempty" bson:"dialogueGuidance,omitempty"`
}

// Personalize substitutes the company placeholder in question text.
func (q Question) Personalize(company string) string {
	if company == "" {
		return q.Text
	}
	return strings.ReplaceAll(q.Text, CompanyPlaceholder, company)
}

// Catalog is the immutable per-assessment question list. Order is the
// deterministic fallback order for question selection.
type Catalog struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	Name      string     `json:"name" bson:"name"`
	Version   int        `json:"version" bson:"version"`
	Questions []Question `json:"questions" bson:"questions"`
}

// Find returns the question with the given id, or nil.
func (c *Catalog) Find(id string) *Question {
	for i := range c.Questions {
		if c.Questions[i].ID == id {
			return &c.Questions[i]
		}
	}
	return nil
}
