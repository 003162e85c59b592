package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Firebase FirebaseConfig
	State    StateConfig
	Redis    RedisConfig
	Dialogue DialogueConfig
	Rules    RulesConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port int
	Mode string
}

// StoreConfig selects where analyses and transcripts go: memory, sqlite or firestore.
type StoreConfig struct {
	Backend    string
	SQLitePath string
}

type FirebaseConfig struct {
	// Credentials is the base64-encoded service account JSON.
	Credentials string
}

// StateConfig selects where per-conversation dialogue state lives: memory or redis.
type StateConfig struct {
	Backend       string
	TTLMinutes    int
	SweepSchedule string
}

func (s StateConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type DialogueConfig struct {
	// Seed picks replies pseudo-randomly when non-zero; zero means round robin.
	Seed int64
}

type RulesConfig struct {
	Path string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads .env (if present), then MINDGARDEN_* environment variables and an
// optional mindgarden.yaml, over the defaults.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("mindgarden")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("MINDGARDEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// The original deployment exported FIREBASE_CREDENTIALS without a prefix.
	if err := v.BindEnv("firebase.credentials", "MINDGARDEN_FIREBASE_CREDENTIALS", "FIREBASE_CREDENTIALS"); err != nil {
		return nil, fmt.Errorf("failed to bind firebase credentials: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "sqlite":
	case "firestore":
		if c.Firebase.Credentials == "" {
			return fmt.Errorf("store backend firestore requires firebase credentials")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	switch c.State.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown state backend %q", c.State.Backend)
	}

	if c.State.TTLMinutes <= 0 {
		return fmt.Errorf("state.ttlMinutes must be positive, got %d", c.State.TTLMinutes)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.sqlitePath", "./data/mindgarden.db")
	v.SetDefault("firebase.credentials", "")

	v.SetDefault("state.backend", "memory")
	v.SetDefault("state.ttlMinutes", 30)
	v.SetDefault("state.sweepSchedule", "*/5 * * * *")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("dialogue.seed", 0)
	v.SetDefault("rules.path", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
