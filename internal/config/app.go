package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/lmittmann/tint"

	"github.com/vancomm/taskbingo-server/internal/hashing"
)

const (
	defaultPort          = ":8080"
	defaultSessionMaxAge = 12 * time.Hour
)

func BasePath() string {
	return os.Getenv("APP_BASE_PATH")
}

func Port() string {
	port, ok := os.LookupEnv("APP_PORT")
	if !ok || port == "" {
		return defaultPort
	}
	return port
}

func Development() bool {
	development, ok := os.LookupEnv("DEVELOPMENT")
	if !ok {
		return false
	}
	return development != "0"
}

// NewLogger returns a colored debug logger in development and a JSON logger
// otherwise.
func NewLogger() *slog.Logger {
	if Development() {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

type Session struct {
	MaxAge           time.Duration
	StrictVersioning bool
	PasswordScheme   hashing.Scheme
}

func NewSession() (*Session, error) {
	s := &Session{MaxAge: defaultSessionMaxAge}

	if maxAgeStr, ok := os.LookupEnv("SESSION_MAX_AGE"); ok {
		maxAge, err := time.ParseDuration(maxAgeStr)
		if err != nil {
			return nil, fmt.Errorf("unable to parse SESSION_MAX_AGE: %w", err)
		}
		if maxAge <= 0 {
			return nil, fmt.Errorf("SESSION_MAX_AGE must be positive")
		}
		s.MaxAge = maxAge
	}

	if strictStr, ok := os.LookupEnv("STRICT_VERSIONING"); ok {
		strict, err := strconv.ParseBool(strictStr)
		if err != nil {
			return nil, fmt.Errorf("unable to parse STRICT_VERSIONING: %w", err)
		}
		s.StrictVersioning = strict
	}

	scheme, err := hashing.ParseScheme(os.Getenv("PASSWORD_HASH"))
	if err != nil {
		return nil, err
	}
	s.PasswordScheme = scheme

	return s, nil
}

func JournalPath() string {
	return os.Getenv("JOURNAL_PATH")
}

func TasksFile() string {
	return os.Getenv("TASKS_FILE")
}
