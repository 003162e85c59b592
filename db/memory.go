package db

import (
	"context"
	"sort"
	"sync"

	"go-mindgarden/types"
)

// MemoryStore keeps everything in process memory. Used by default and in tests.
type MemoryStore struct {
	mu            sync.RWMutex
	analyses      []types.AnalysisResult
	voice         []types.VoiceAnalysis
	conversations map[string][]types.ChatTurn
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{conversations: make(map[string][]types.ChatTurn)}
}

func (s *MemoryStore) SaveAnalysis(_ context.Context, r types.AnalysisResult) error {
	r.Suggestions = append([]string(nil), r.Suggestions...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses = append(s.analyses, r)
	return nil
}

func (s *MemoryStore) SaveVoiceAnalysis(_ context.Context, v types.VoiceAnalysis) error {
	v.Suggestions = append([]string(nil), v.Suggestions...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice = append(s.voice, v)
	return nil
}

func (s *MemoryStore) ListAnalyses(_ context.Context, userID string, limit int) ([]types.AnalysisResult, error) {
	s.mu.RLock()
	var out []types.AnalysisResult
	for i := len(s.analyses) - 1; i >= 0; i-- {
		if s.analyses[i].UserID == userID {
			out = append(out, s.analyses[i])
		}
	}
	s.mu.RUnlock()

	// Walking backwards keeps later inserts first among equal timestamps.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) AppendChatTurns(_ context.Context, turns ...types.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range turns {
		s.conversations[t.ConversationID] = append(s.conversations[t.ConversationID], t)
	}
	return nil
}

func (s *MemoryStore) ListChatTurns(_ context.Context, conversationID string) ([]types.ChatTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.conversations[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]types.ChatTurn(nil), turns...), nil
}

func (s *MemoryStore) DeleteConversation(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return ErrNotFound
	}
	delete(s.conversations, conversationID)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
