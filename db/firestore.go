package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"go-mindgarden/logger"
	"go-mindgarden/types"
)

const (
	analysesCollection      = "analyses"
	voiceAnalysesCollection = "voiceAnalyses"
	conversationsCollection = "conversations"
	turnsCollection         = "turns"
)

// Firestore client singleton.
var (
	client     *firestore.Client
	clientErr  error
	clientOnce sync.Once
)

// InitFirestore initializes and returns the Firestore client. encodedCreds is
// the base64-encoded service account JSON.
func InitFirestore(ctx context.Context, encodedCreds string) (*firestore.Client, error) {
	clientOnce.Do(func() {
		creds, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			clientErr = fmt.Errorf("failed to decode Firestore credentials: %w", err)
			return
		}

		opt := option.WithCredentialsJSON(creds)
		app, err := firebase.NewApp(ctx, nil, opt)
		if err != nil {
			clientErr = fmt.Errorf("error initializing Firebase app: %w", err)
			return
		}

		client, err = app.Firestore(ctx)
		if err != nil {
			clientErr = fmt.Errorf("error getting Firestore client: %w", err)
		}
	})

	return client, clientErr
}

// FirestoreStore keeps analyses in top-level collections and each transcript
// under conversations/{id}/turns.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(ctx context.Context, encodedCreds string) (*FirestoreStore, error) {
	c, err := InitFirestore(ctx, encodedCreds)
	if err != nil {
		return nil, err
	}
	logger.Info("Firestore store initialized")
	return &FirestoreStore{client: c}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) SaveAnalysis(ctx context.Context, r types.AnalysisResult) error {
	_, err := s.client.Collection(analysesCollection).Doc(r.ID).Set(ctx, r)
	if err != nil {
		return fmt.Errorf("failed to save analysis %s: %w", r.ID, err)
	}
	return nil
}

func (s *FirestoreStore) SaveVoiceAnalysis(ctx context.Context, v types.VoiceAnalysis) error {
	_, err := s.client.Collection(voiceAnalysesCollection).Doc(v.ID).Set(ctx, v)
	if err != nil {
		return fmt.Errorf("failed to save voice analysis %s: %w", v.ID, err)
	}
	return nil
}

func (s *FirestoreStore) ListAnalyses(ctx context.Context, userID string, limit int) ([]types.AnalysisResult, error) {
	q := s.client.Collection(analysesCollection).
		Where("userId", "==", userID).
		OrderBy("timestamp", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []types.AnalysisResult
	iter := q.Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating analyses: %w", err)
		}
		var r types.AnalysisResult
		if err := doc.DataTo(&r); err != nil {
			return nil, fmt.Errorf("error converting document to AnalysisResult: %w", err)
		}
		r.ID = doc.Ref.ID
		out = append(out, r)
	}
	return out, nil
}

// storedTurn is a transcript document; seq keeps append order when timestamps tie.
type storedTurn struct {
	types.ChatTurn
	Seq int64 `firestore:"seq"`
}

// sequenceTurns numbers turns per conversation after each one's current count
// and returns the advanced counts.
func sequenceTurns(counts map[string]int64, turns []types.ChatTurn) ([]storedTurn, map[string]int64) {
	next := make(map[string]int64, len(counts))
	for id, n := range counts {
		next[id] = n
	}

	out := make([]storedTurn, 0, len(turns))
	for _, t := range turns {
		next[t.ConversationID]++
		out = append(out, storedTurn{ChatTurn: t, Seq: next[t.ConversationID]})
	}
	return out, next
}

// AppendChatTurns writes the turns and bumps the conversation's lastActive and
// turnCount in one transaction.
func (s *FirestoreStore) AppendChatTurns(ctx context.Context, turns ...types.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}

	// One conversation document write per transaction, carrying the latest turn time.
	lastActive := make(map[string]interface{})
	for _, t := range turns {
		lastActive[t.ConversationID] = t.Timestamp
	}

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		counts := make(map[string]int64, len(lastActive))
		for id := range lastActive {
			doc, err := tx.Get(s.client.Collection(conversationsCollection).Doc(id))
			if status.Code(err) == codes.NotFound {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to get conversation %s: %w", id, err)
			}
			if v, err := doc.DataAt("turnCount"); err == nil {
				if n, ok := v.(int64); ok {
					counts[id] = n
				}
			}
		}

		stored, counts := sequenceTurns(counts, turns)

		for id, at := range lastActive {
			convRef := s.client.Collection(conversationsCollection).Doc(id)
			fields := map[string]interface{}{"lastActive": at, "turnCount": counts[id]}
			if err := tx.Set(convRef, fields, firestore.MergeAll); err != nil {
				return fmt.Errorf("failed to set conversation %s: %w", id, err)
			}
		}
		for _, t := range stored {
			turnRef := s.client.Collection(conversationsCollection).Doc(t.ConversationID).Collection(turnsCollection).Doc(t.ID)
			if err := tx.Set(turnRef, t); err != nil {
				return fmt.Errorf("failed to set chat turn %s: %w", t.ID, err)
			}
		}
		return nil
	})
}

func (s *FirestoreStore) ListChatTurns(ctx context.Context, conversationID string) ([]types.ChatTurn, error) {
	convRef := s.client.Collection(conversationsCollection).Doc(conversationID)
	if _, err := convRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting conversation %s: %w", conversationID, err)
	}

	docs, err := convRef.Collection(turnsCollection).OrderBy("seq", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	out := make([]types.ChatTurn, 0, len(docs))
	for _, doc := range docs {
		var t storedTurn
		if err := doc.DataTo(&t); err != nil {
			return nil, fmt.Errorf("error converting document to ChatTurn: %w", err)
		}
		t.ID = doc.Ref.ID
		out = append(out, t.ChatTurn)
	}
	return out, nil
}

// DeleteConversation removes the transcript with a BulkWriter, then the conversation document.
func (s *FirestoreStore) DeleteConversation(ctx context.Context, conversationID string) error {
	convRef := s.client.Collection(conversationsCollection).Doc(conversationID)
	if _, err := convRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("error getting conversation %s: %w", conversationID, err)
	}

	refs, err := convRef.Collection(turnsCollection).DocumentRefs(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("error listing turns of %s: %w", conversationID, err)
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]writeJob, 0, len(refs)+1)
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return fmt.Errorf("failed to enqueue delete of turn %s: %w", ref.ID, err)
		}
		jobs = append(jobs, job)
	}
	job, err := bw.Delete(convRef)
	if err != nil {
		bw.End()
		return fmt.Errorf("failed to enqueue conversation delete: %w", err)
	}
	jobs = append(jobs, job)
	bw.End()

	if err := firstJobError(jobs); err != nil {
		return fmt.Errorf("failed to delete conversation %s: %w", conversationID, err)
	}

	logger.Debug("Conversation deleted",
		logger.ConversationID(conversationID),
		zap.Int("turns", len(refs)),
	)
	return nil
}

// writeJob is the part of *firestore.BulkWriterJob read after End.
type writeJob interface {
	Results() (*firestore.WriteResult, error)
}

// firstJobError reports how many jobs failed, wrapping the first failure.
func firstJobError(jobs []writeJob) error {
	var first error
	failed := 0
	for _, j := range jobs {
		if _, err := j.Results(); err != nil {
			if first == nil {
				first = err
			}
			failed++
		}
	}
	if first != nil {
		return fmt.Errorf("%d of %d writes failed: %w", failed, len(jobs), first)
	}
	return nil
}
