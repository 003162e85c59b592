package dialogue

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"go-mindgarden/lexicon"
	"go-mindgarden/nlp"
	"go-mindgarden/suggestions"
	"go-mindgarden/types"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStateStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	store, err := NewRedisStateStore(context.Background(), mr.Addr(), "", 0, ttl)
	if err != nil {
		t.Fatalf("NewRedisStateStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

type countingPicker struct {
	calls atomic.Int64
	inner Picker
}

func (p *countingPicker) Pick(category string, n int) int {
	p.calls.Add(1)
	return p.inner.Pick(category, n)
}

func TestRedisStateStore_UpdateGetDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Minute)

	if _, ok, err := store.Get(ctx, "c1"); ok || err != nil {
		t.Fatalf("Get unknown: ok=%v err=%v", ok, err)
	}

	err := store.Update(ctx, "c1", func(cur types.ConversationState) (types.ConversationState, error) {
		if cur.State != "" || cur.Awaiting() {
			t.Errorf("unknown id should start from the zero state, got %+v", cur)
		}
		return types.ConversationState{State: types.AwaitingYesNo, PendingReply: "tips?"}, nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	st, ok, err := store.Get(ctx, "c1")
	if err != nil || !ok || !st.Awaiting() || st.PendingReply != "tips?" {
		t.Fatalf("Get: st=%+v ok=%v err=%v", st, ok, err)
	}
	if mr.Exists(lockKey("c1")) {
		t.Fatalf("lock should be released after Update")
	}

	boom := errors.New("boom")
	err = store.Update(ctx, "c1", func(types.ConversationState) (types.ConversationState, error) {
		return types.ConversationState{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want boom", err)
	}
	if st, _, _ := store.Get(ctx, "c1"); !st.Awaiting() {
		t.Fatalf("failed update must not be written")
	}

	if err := store.Delete(ctx, "c1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "c1"); ok {
		t.Fatalf("state should be gone after Delete")
	}
}

func TestRedisStateStore_ExpiresIdleConversations(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Minute)

	err := store.Update(ctx, "c1", func(types.ConversationState) (types.ConversationState, error) {
		return types.ConversationState{State: types.Idle}, nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "c1"); ok {
		t.Fatalf("state should expire after the ttl")
	}
	if n, err := store.Sweep(ctx, time.Now()); n != 0 || err != nil {
		t.Fatalf("Sweep=%d err=%v", n, err)
	}
}

func TestRedisStateStore_ConcurrentReadModifyWrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newTestRedisStore(t, time.Minute)

	const workers = 32
	var calls atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Update(ctx, "counter", func(cur types.ConversationState) (types.ConversationState, error) {
				calls.Add(1)
				n, _ := strconv.Atoi(cur.PendingReply)
				cur.PendingReply = strconv.Itoa(n + 1)
				return cur, nil
			})
			if err != nil {
				t.Errorf("Update: %v", err)
			}
		}()
	}
	wg.Wait()

	st, _, err := store.Get(ctx, "counter")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if st.PendingReply != strconv.Itoa(workers) {
		t.Fatalf("counter=%s, want %d", st.PendingReply, workers)
	}
	if calls.Load() != workers {
		t.Fatalf("fn ran %d times for %d updates", calls.Load(), workers)
	}
}

func TestRedisStateStore_UpdateHonorsContext(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t, time.Minute)
	if err := mr.Set(lockKey("held"), "someone-else"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := store.Update(ctx, "held", func(cur types.ConversationState) (types.ConversationState, error) {
		t.Errorf("fn must not run without the lock")
		return cur, nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v, want deadline exceeded", err)
	}
	if got, _ := mr.Get(lockKey("held")); got != "someone-else" {
		t.Fatalf("another holder's lock must be left alone, got %q", got)
	}
}

func TestSessions_ConcurrentTurnsOnRedis(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, _ := newTestRedisStore(t, time.Minute)

	rs := lexicon.Default()
	picker := &countingPicker{inner: NewRoundRobin()}
	s := NewSessions(NewEngine(rs, nlp.NewClassifier(rs, suggestions.New(rs)), picker), store)

	const turns = 64
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := s.Turn(ctx, "same", "what a wonderful day")
			if err != nil {
				t.Errorf("Turn: %v", err)
				return
			}
			if r.Bot.EmotionContext != types.Happy || r.Bot.Content == "" {
				t.Errorf("bot=%+v", r.Bot)
			}
		}()
	}
	wg.Wait()

	if got := picker.calls.Load(); got != turns {
		t.Fatalf("picker called %d times for %d turns", got, turns)
	}
}

func TestSessions_TurnErrorNamesConversationOnce(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t, time.Minute)
	if err := mr.Set(lockKey("busy"), "someone-else"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	s := NewSessions(newTestEngine(), store)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Turn(ctx, "busy", "hello")
	if err == nil {
		t.Fatalf("expected error while the lock is held")
	}
	if n := strings.Count(err.Error(), "busy"); n != 1 {
		t.Fatalf("conversation id appears %d times in %q", n, err)
	}
}
