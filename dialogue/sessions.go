package dialogue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"go-mindgarden/types"
)

// Sessions binds the stateless Engine to a StateStore, one state slot per
// conversation id.
type Sessions struct {
	engine *Engine
	store  StateStore
	now    func() time.Time
}

func NewSessions(engine *Engine, store StateStore) *Sessions {
	return &Sessions{engine: engine, store: store, now: time.Now}
}

// Start opens a conversation and returns its opening bot turn.
func (s *Sessions) Start(ctx context.Context) (types.ChatTurn, error) {
	id := uuid.NewString()
	err := s.store.Update(ctx, id, func(types.ConversationState) (types.ConversationState, error) {
		return types.ConversationState{State: types.Idle, LastActive: s.now().UTC()}, nil
	})
	if err != nil {
		return types.ChatTurn{}, fmt.Errorf("failed to start conversation: %w", err)
	}
	return s.engine.Opening(id), nil
}

// Reply is one answered message and the state the conversation moved to.
type Reply struct {
	User  types.ChatTurn
	Bot   types.ChatTurn
	State types.ConversationState
}

// OfferedTips reports whether the bot is now waiting for a yes or no.
func (r Reply) OfferedTips() bool {
	return r.State.Awaiting()
}

// Turn records the user's message and answers it. An unknown id starts from Idle.
func (s *Sessions) Turn(ctx context.Context, conversationID, message string) (Reply, error) {
	user := types.ChatTurn{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Content:        message,
		Sender:         types.SenderUser,
		Timestamp:      s.now().UTC(),
	}

	var bot types.ChatTurn
	var next types.ConversationState
	err := s.store.Update(ctx, conversationID, func(cur types.ConversationState) (types.ConversationState, error) {
		bot, next = s.engine.Respond(conversationID, cur, message)
		return next, nil
	})
	if err != nil {
		return Reply{}, fmt.Errorf("failed to update conversation %s: %w", conversationID, err)
	}
	return Reply{User: user, Bot: bot, State: next}, nil
}

func (s *Sessions) State(ctx context.Context, conversationID string) (types.ConversationState, bool, error) {
	return s.store.Get(ctx, conversationID)
}

func (s *Sessions) End(ctx context.Context, conversationID string) error {
	return s.store.Delete(ctx, conversationID)
}

// Sweep evicts conversations idle for longer than idle.
func (s *Sessions) Sweep(ctx context.Context, idle time.Duration) (int, error) {
	return s.store.Sweep(ctx, s.now().Add(-idle))
}
