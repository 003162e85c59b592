package dialogue

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"go-mindgarden/lexicon"
	"go-mindgarden/nlp"
	"go-mindgarden/types"
)

// Intent names reported on bot turns that did not come from the intent table.
const (
	IntentOpening  = "opening"
	IntentTips     = "tips"
	IntentDecline  = "decline"
	IntentFallback = "emotion_fallback"
	IntentCatchAll = "catch_all"
)

// Engine is the dialogue state machine. It keeps no conversation state of its
// own: Respond takes the current state and returns the next one.
type Engine struct {
	rules      *lexicon.Ruleset
	classifier *nlp.Classifier
	picker     Picker
	now        func() time.Time
}

func NewEngine(rs *lexicon.Ruleset, classifier *nlp.Classifier, picker Picker) *Engine {
	if picker == nil {
		picker = NewRoundRobin()
	}
	return &Engine{rules: rs, classifier: classifier, picker: picker, now: time.Now}
}

// Opening is the bot's first turn in a new conversation.
func (e *Engine) Opening(conversationID string) types.ChatTurn {
	return e.botTurn(conversationID, e.rules.Dialogue.Opening, IntentOpening, "")
}

// Respond produces exactly one bot turn for the user's input.
//
// A pending tip offer is resolved by yes/sure/please or no. Any other input,
// or no pending offer, runs the intent table, then the utterance classifier,
// then the catch-all. The pending slot never survives past one turn.
func (e *Engine) Respond(conversationID string, state types.ConversationState, input string) (types.ChatTurn, types.ConversationState) {
	in := lexicon.NewInput(input)
	d := e.rules.Dialogue
	next := types.ConversationState{State: types.Idle, LastActive: e.now().UTC()}

	if state.Awaiting() {
		if contains(d.Affirmatives, in.Text) {
			return e.botTurn(conversationID, d.Tips, IntentTips, ""), next
		}
		if contains(d.Negatives, in.Text) {
			return e.botTurn(conversationID, d.Decline, IntentDecline, ""), next
		}
	}

	if it, ok := lexicon.FirstIntent(e.rules.Intents, in); ok {
		return e.botTurn(conversationID, it.Reply, it.Name, ""), next
	}

	emotion := e.classifier.ClassifyUtterance(input)
	if replies := e.rules.Replies[emotion]; len(replies) > 0 {
		reply := replies[e.picker.Pick(string(emotion), len(replies))]
		if types.SentimentOf(emotion) == types.Negative && strings.Contains(reply, d.TipOffer) {
			next.State = types.AwaitingYesNo
			next.PendingReply = reply
		}
		return e.botTurn(conversationID, reply, IntentFallback, emotion), next
	}

	return e.botTurn(conversationID, d.CatchAll, IntentCatchAll, emotion), next
}

func (e *Engine) botTurn(conversationID, content, intent string, emotion types.Emotion) types.ChatTurn {
	return types.ChatTurn{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Content:        content,
		Sender:         types.SenderBot,
		Intent:         intent,
		EmotionContext: emotion,
		Timestamp:      e.now().UTC(),
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
