// Package config resolves client configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds everything the client needs to reach the backend.
type Config struct {
	// APIBaseURL is the HTTP endpoint root, e.g. http://localhost:8800.
	APIBaseURL string
	// PushURL is the websocket endpoint for the live channel.
	PushURL string
	// PushRoom is the room joined after connecting.
	PushRoom string
	// StateDir holds the session file and the snapshot cache.
	StateDir string
	// DebugLogPath, when set, enables TUI debug logging to that file.
	DebugLogPath string
}

// Load reads configuration from the environment. A .env in the working
// directory is applied first, without overriding already-set variables.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIBaseURL:   getEnv("REPDESK_API_URL", "http://localhost:8800"),
		PushURL:      getEnv("REPDESK_WS_URL", "ws://localhost:8800/ws"),
		PushRoom:     getEnv("REPDESK_ROOM", "adminRoom"),
		StateDir:     getEnv("REPDESK_STATE_DIR", defaultStateDir()),
		DebugLogPath: strings.TrimSpace(os.Getenv("REPDESK_TUI_DEBUG_LOG")),
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".repdesk"
	}
	return filepath.Join(base, "repdesk")
}
