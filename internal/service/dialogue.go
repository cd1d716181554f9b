package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/behuman/cascade/internal/config"
	"github.com/behuman/cascade/internal/model"
	"github.com/behuman/cascade/internal/oracle"
)

// MaxParticipantTurns is the hard circuit breaker for ai_conversation
// questions: once the participant has spoken this many times the dialogue
// is forced to completion without another oracle call.
const MaxParticipantTurns = 5

// CompletionMarker is the in-band signal the interviewer model emits when
// the dialogue has gathered enough. Never persisted raw.
const CompletionMarker = "CONVERSATION_COMPLETE"

// annotationPattern matches bracketed internal annotations the model may
// attach; stripped before any turn is shown or stored.
var annotationPattern = regexp.MustCompile(`\[\[[^\]]*\]\]`)

// forcedCompletionMessage is synthesized when the turn cap is reached or the
// oracle is unreachable mid-dialogue.
const forcedCompletionMessage = "Thank you, that gives me a clear picture of this topic. Let's move on."

// dialogueContextWindow bounds how many prior responses feed the
// interviewer prompt.
const dialogueContextWindow = 3

// DialogueEngine runs the bounded multi-turn conversation for one
// ai_conversation question. State lives on the session (ActiveDialogue) so
// every turn is a reload-mutate-persist cycle, safe to retry at the network
// boundary.
type DialogueEngine struct {
	oracle oracle.Generator
	config *config.AIConfig
	log    *zap.SugaredLogger
}

// NewDialogueEngine creates a new dialogue engine.
func NewDialogueEngine(gen oracle.Generator, cfg *config.AIConfig, log *zap.SugaredLogger) *DialogueEngine {
	return &DialogueEngine{oracle: gen, config: cfg, log: log}
}

// DialogueResult is the outcome of one Step.
type DialogueResult struct {
	Done bool

	// Reply is the next interviewer turn when the dialogue continues.
	Reply string

	// Set when Done: the finalized answer and its follow-up exchanges.
	Answer    string
	FollowUps []model.FollowUpExchange
}

type dialogueReply struct {
	Message string `json:"message"`
}

// Step appends the participant's new turn and either produces the next
// interviewer turn or completes the dialogue. On completion the cleaned
// turns are appended to the session transcript and ActiveDialogue is
// cleared; on continuation only ActiveDialogue changes — nothing touches
// the permanent response list either way.
func (e *DialogueEngine) Step(ctx context.Context, session *model.Session, question *model.Question, participantText string, now time.Time) *DialogueResult {
	state := session.ActiveDialogue
	if state == nil || state.QuestionID != question.ID {
		state = &model.DialogueState{
			QuestionID: question.ID,
			StartedAt:  now,
		}
		session.ActiveDialogue = state
	}

	// Participant text goes through the same hygiene as interviewer turns:
	// a typed completion marker or [[...]] must never reach persistence.
	state.Turns = append(state.Turns, model.ConversationTurn{
		Role:       model.TurnParticipant,
		Text:       CleanTurnText(participantText),
		QuestionID: question.ID,
		Timestamp:  now,
	})
	state.ParticipantTurns++

	var reply string
	if state.ParticipantTurns >= MaxParticipantTurns {
		// Circuit breaker: no oracle call, fixed completion message.
		reply = forcedCompletionMessage + " " + CompletionMarker
	} else {
		prompt := e.buildPrompt(session, question, state)
		// A dead oracle must not stall the interview, so the fallback is a
		// forced completion.
		fallback := dialogueReply{Message: forcedCompletionMessage + " " + CompletionMarker}
		out, _ := oracle.CallJSON(ctx, e.oracle, e.config.Models.Dialogue, "dialogue_turn", prompt, fallback, e.log)
		reply = out.Message
		if strings.TrimSpace(CleanTurnText(reply)) == "" {
			reply = fallback.Message
		}
	}

	done := strings.Contains(reply, CompletionMarker)
	cleaned := CleanTurnText(reply)

	state.Turns = append(state.Turns, model.ConversationTurn{
		Role:       model.TurnInterviewer,
		Text:       cleaned,
		QuestionID: question.ID,
		Timestamp:  now,
	})

	if !done {
		return &DialogueResult{Reply: cleaned}
	}

	answer, followUps := finalizeDialogue(state.Turns)
	session.Transcript = append(session.Transcript, state.Turns...)
	session.ActiveDialogue = nil

	return &DialogueResult{
		Done:      true,
		Reply:     cleaned,
		Answer:    answer,
		FollowUps: followUps,
	}
}

// CleanTurnText strips the completion marker and bracketed internal
// annotations; this runs before any turn is shown or persisted.
func CleanTurnText(text string) string {
	text = strings.ReplaceAll(text, CompletionMarker, "")
	text = annotationPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// finalizeDialogue joins the participant turns into the final answer and
// pairs each interviewer turn with the participant turn that followed it.
func finalizeDialogue(turns []model.ConversationTurn) (string, []model.FollowUpExchange) {
	var parts []string
	var followUps []model.FollowUpExchange

	for i, t := range turns {
		if t.Role == model.TurnParticipant {
			parts = append(parts, t.Text)
			continue
		}
		if i+1 < len(turns) && turns[i+1].Role == model.TurnParticipant {
			followUps = append(followUps, model.FollowUpExchange{
				Question: t.Text,
				Answer:   turns[i+1].Text,
			})
		}
	}

	return strings.Join(parts, "\n"), followUps
}

func (e *DialogueEngine) buildPrompt(session *model.Session, question *model.Question, state *model.DialogueState) string {
	var sb strings.Builder

	sb.WriteString(`You are a warm, sharp interviewer conducting an AI-readiness assessment conversation.
Return ONLY valid JSON: {"message": "<your next question or remark>"}

Ask one focused follow-up at a time. When you have enough on this topic, include the token ` + CompletionMarker + ` in your message.
You may include private notes in double brackets like [[note]]; they are stripped before display.

`)

	fmt.Fprintf(&sb, "Topic question: %s\n", question.Personalize(session.Participant.Company))
	if question.DialogueGuidance != "" {
		fmt.Fprintf(&sb, "Guidance: %s\n", question.DialogueGuidance)
	}
	if session.ResearchContext != "" {
		fmt.Fprintf(&sb, "\nBackground research on %s:\n%s\n", session.Participant.Company, session.ResearchContext)
	}

	human := session.HumanResponses()
	if len(human) > dialogueContextWindow {
		human = human[len(human)-dialogueContextWindow:]
	}
	if len(human) > 0 {
		sb.WriteString("\nRecent answers from earlier in the interview:\n")
		for _, r := range human {
			fmt.Fprintf(&sb, "Q: %s\nA: %s\n", r.QuestionText, r.Answer.Display())
		}
	}

	sb.WriteString("\nConversation so far:\n")
	for _, t := range state.Turns {
		fmt.Fprintf(&sb, "%s: %s\n", t.Role, t.Text)
	}

	fmt.Fprintf(&sb, "\nThe participant has spoken %d of at most %d times.", state.ParticipantTurns, MaxParticipantTurns)
	return sb.String()
}
