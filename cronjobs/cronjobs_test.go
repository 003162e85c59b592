package cronjobs

import (
	"context"
	"testing"
	"time"

	"go-mindgarden/dialogue"
	"go-mindgarden/lexicon"
	"go-mindgarden/nlp"
	"go-mindgarden/suggestions"
	"go-mindgarden/types"
)

func newSessions(store dialogue.StateStore) *dialogue.Sessions {
	rs := lexicon.Default()
	classifier := nlp.NewClassifier(rs, suggestions.New(rs))
	return dialogue.NewSessions(dialogue.NewEngine(rs, classifier, nil), store)
}

func TestSweepIdleConversations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := dialogue.NewMemoryStateStore()
	sessions := newSessions(store)

	stale := func(types.ConversationState) (types.ConversationState, error) {
		return types.ConversationState{State: types.AwaitingYesNo, LastActive: time.Now().Add(-2 * time.Hour)}, nil
	}
	if err := store.Update(ctx, "stale", stale); err != nil {
		t.Fatalf("Update: %v", err)
	}
	fresh, err := sessions.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	SweepIdleConversations(ctx, sessions, 30*time.Minute)

	if _, ok, _ := store.Get(ctx, "stale"); ok {
		t.Fatalf("stale conversation should be swept")
	}
	if _, ok, _ := store.Get(ctx, fresh.ConversationID); !ok {
		t.Fatalf("fresh conversation should survive")
	}
}

func TestInitCronJobs(t *testing.T) {
	t.Parallel()

	sessions := newSessions(dialogue.NewMemoryStateStore())

	if _, err := InitCronJobs("not a schedule", sessions, time.Minute); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}

	c, err := InitCronJobs("*/5 * * * *", sessions, time.Minute)
	if err != nil {
		t.Fatalf("InitCronJobs: %v", err)
	}
	defer c.Stop()
	if len(c.Entries()) != 1 {
		t.Fatalf("entries=%d, want 1", len(c.Entries()))
	}
}
