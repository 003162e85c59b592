package types

import "time"

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type ChatTurn struct {
	ID             string    `firestore:"-" json:"id"`
	ConversationID string    `firestore:"conversationId" json:"conversationId"`
	Content        string    `firestore:"content" json:"content"`
	Sender         Sender    `firestore:"sender" json:"sender"`
	Intent         string    `firestore:"intent,omitempty" json:"intent,omitempty"`
	EmotionContext Emotion   `firestore:"emotionContext,omitempty" json:"emotionContext,omitempty"`
	Timestamp      time.Time `firestore:"timestamp" json:"timestamp"`
}

type DialogueState string

const (
	Idle          DialogueState = "idle"
	AwaitingYesNo DialogueState = "awaiting_yes_no"
)

// ConversationState is the single pending-confirmation slot of one conversation.
// The zero value is Idle.
type ConversationState struct {
	State        DialogueState `json:"state"`
	PendingReply string        `json:"pendingReply,omitempty"`
	LastActive   time.Time     `json:"lastActive"`
}

func (s ConversationState) Awaiting() bool {
	return s.State == AwaitingYesNo
}
