package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"go-mindgarden/logger"
	"go-mindgarden/types"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite store initialized", zap.String("path", dbPath))

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		text TEXT NOT NULL,
		emotion TEXT NOT NULL,
		confidence REAL NOT NULL,
		sentiment TEXT NOT NULL,
		suggestions TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_analyses_user ON analyses(user_id, created_at);

	CREATE TABLE IF NOT EXISTS voice_analyses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		transcript TEXT NOT NULL,
		emotion TEXT NOT NULL,
		sentiment TEXT NOT NULL,
		confidence REAL NOT NULL,
		duration REAL NOT NULL,
		pitch REAL,
		energy REAL,
		speaking_rate REAL,
		suggestions TEXT NOT NULL,
		spoken TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_voice_user ON voice_analyses(user_id, created_at);

	CREATE TABLE IF NOT EXISTS chat_turns (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		conversation_id TEXT NOT NULL,
		content TEXT NOT NULL,
		sender TEXT NOT NULL,
		intent TEXT,
		emotion_context TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_turns_conversation ON chat_turns(conversation_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("Database schema initialized")
	return nil
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, r types.AnalysisResult) error {
	suggestions, err := json.Marshal(r.Suggestions)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (id, user_id, text, emotion, confidence, sentiment, suggestions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Text, string(r.Emotion), r.Confidence, string(r.Sentiment), string(suggestions), r.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveVoiceAnalysis(ctx context.Context, v types.VoiceAnalysis) error {
	suggestions, err := json.Marshal(v.Suggestions)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO voice_analyses (id, user_id, transcript, emotion, sentiment, confidence, duration,
			pitch, energy, speaking_rate, suggestions, spoken, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, v.Transcript, string(v.Emotion), string(v.Sentiment), v.Confidence, v.Duration,
		v.AudioFeatures.Pitch, v.AudioFeatures.Energy, v.AudioFeatures.SpeakingRate,
		string(suggestions), v.Spoken, v.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert voice analysis: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, userID string, limit int) ([]types.AnalysisResult, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, text, emotion, confidence, sentiment, suggestions, created_at
		FROM analyses
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var out []types.AnalysisResult
	for rows.Next() {
		var (
			r           types.AnalysisResult
			emotion     string
			sentiment   string
			suggestions string
			createdAt   int64
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Text, &emotion, &r.Confidence, &sentiment, &suggestions, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		if err := json.Unmarshal([]byte(suggestions), &r.Suggestions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal suggestions: %w", err)
		}
		r.Emotion = types.Emotion(emotion)
		r.Sentiment = types.Sentiment(sentiment)
		r.Timestamp = time.Unix(0, createdAt).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AppendChatTurns(ctx context.Context, turns ...types.ChatTurn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range turns {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chat_turns (id, conversation_id, content, sender, intent, emotion_context, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.ConversationID, t.Content, string(t.Sender), t.Intent, string(t.EmotionContext), t.Timestamp.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chat turn: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListChatTurns(ctx context.Context, conversationID string) ([]types.ChatTurn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, conversation_id, content, sender, intent, emotion_context, created_at
		FROM chat_turns
		WHERE conversation_id = ?
		ORDER BY seq`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat turns: %w", err)
	}
	defer rows.Close()

	var out []types.ChatTurn
	for rows.Next() {
		var (
			t         types.ChatTurn
			sender    string
			emotion   string
			createdAt int64
		)
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.Content, &sender, &t.Intent, &emotion, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat turn: %w", err)
		}
		t.Sender = types.Sender(sender)
		t.EmotionContext = types.Emotion(emotion)
		t.Timestamp = time.Unix(0, createdAt).UTC()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

func (s *SQLiteStore) DeleteConversation(ctx context.Context, conversationID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM chat_turns WHERE conversation_id = ?", conversationID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
