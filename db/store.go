package db

import (
	"context"
	"errors"

	"go-mindgarden/types"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("not found")

// DefaultHistoryLimit is how many analyses a history request returns by default.
const DefaultHistoryLimit = 5

// Store persists classification results and chat transcripts.
type Store interface {
	SaveAnalysis(ctx context.Context, r types.AnalysisResult) error
	SaveVoiceAnalysis(ctx context.Context, v types.VoiceAnalysis) error
	// ListAnalyses returns a user's analyses, newest first. limit <= 0 means all.
	ListAnalyses(ctx context.Context, userID string, limit int) ([]types.AnalysisResult, error)

	AppendChatTurns(ctx context.Context, turns ...types.ChatTurn) error
	// ListChatTurns returns a transcript in the order it was written, or ErrNotFound.
	ListChatTurns(ctx context.Context, conversationID string) ([]types.ChatTurn, error)
	DeleteConversation(ctx context.Context, conversationID string) error

	Close() error
}
