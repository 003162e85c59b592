package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-mindgarden/config"
	"go-mindgarden/db"
	"go-mindgarden/dialogue"
	"go-mindgarden/lexicon"
	"go-mindgarden/logger"
	"go-mindgarden/nlp"
	"go-mindgarden/suggestions"
)

// app is the wired set of components shared by the commands.
type app struct {
	classifier *nlp.Classifier
	engine     *dialogue.Engine
	sessions   *dialogue.Sessions
	store      db.Store
	closers    []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Failed to close component", zap.Error(err))
		}
	}
}

// newCore builds the classifier and dialogue engine without any storage.
func newCore(cfg *config.Config) (*app, error) {
	rs, err := lexicon.Load(cfg.Rules.Path)
	if err != nil {
		return nil, err
	}

	classifier := nlp.NewClassifier(rs, suggestions.New(rs))

	var picker dialogue.Picker = dialogue.NewRoundRobin()
	if cfg.Dialogue.Seed != 0 {
		picker = dialogue.NewSeededPicker(cfg.Dialogue.Seed)
	}

	logger.Debug("Rules loaded",
		zap.Int("lexicon", len(rs.Lexicon)),
		zap.Int("utterance", len(rs.Utterance)),
		zap.Int("intents", len(rs.Intents)),
	)

	return &app{
		classifier: classifier,
		engine:     dialogue.NewEngine(rs, classifier, picker),
	}, nil
}

// newApp wires the core to the configured result store and state store.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a, err := newCore(cfg)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, store.Close)

	states, err := openStateStore(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	if closer, ok := states.(interface{ Close() error }); ok {
		a.closers = append(a.closers, closer.Close)
	}
	a.sessions = dialogue.NewSessions(a.engine, states)

	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config) (db.Store, error) {
	switch cfg.Store.Backend {
	case "sqlite":
		s, err := db.NewSQLiteStore(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := s.InitSchema(); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "firestore":
		return db.NewFirestoreStore(ctx, cfg.Firebase.Credentials)
	case "memory":
		return db.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func openStateStore(ctx context.Context, cfg *config.Config) (dialogue.StateStore, error) {
	switch cfg.State.Backend {
	case "redis":
		return dialogue.NewRedisStateStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.State.TTL())
	case "memory":
		return dialogue.NewMemoryStateStore(), nil
	}
	return nil, fmt.Errorf("unknown state backend %q", cfg.State.Backend)
}
