package dialogue

import (
	"context"
	"sync"
	"time"

	"go-mindgarden/types"
)

// StateStore keeps one ConversationState per conversation.
//
// Update runs fn over the current state (the zero value for an unknown id) and
// stores its result as a single atomic step. fn runs exactly once per call, and
// concurrent updates of one conversation wait for each other. If fn returns an error nothing is
// written and the error is returned unchanged.
type StateStore interface {
	Update(ctx context.Context, conversationID string, fn func(types.ConversationState) (types.ConversationState, error)) error
	Get(ctx context.Context, conversationID string) (types.ConversationState, bool, error)
	Delete(ctx context.Context, conversationID string) error
	// Sweep drops conversations idle since before cutoff and reports how many went.
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]types.ConversationState
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]types.ConversationState)}
}

func (s *MemoryStateStore) Update(_ context.Context, conversationID string, fn func(types.ConversationState) (types.ConversationState, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.states[conversationID])
	if err != nil {
		return err
	}
	s.states[conversationID] = next
	return nil
}

func (s *MemoryStateStore) Get(_ context.Context, conversationID string) (types.ConversationState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[conversationID]
	return st, ok, nil
}

func (s *MemoryStateStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, conversationID)
	return nil
}

func (s *MemoryStateStore) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, st := range s.states {
		if st.LastActive.Before(cutoff) {
			delete(s.states, id)
			n++
		}
	}
	return n, nil
}
