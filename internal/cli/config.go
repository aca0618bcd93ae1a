package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Environment variables read by the CLI
const (
	EnvServer    = "LETTERSTACKS_SERVER"
	EnvToken     = "LETTERSTACKS_TOKEN"
	EnvStateFile = "LETTERSTACKS_STATE_FILE"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Token     string
	StateFile string
	Output    string
	Verbose   bool
}

// State remembers the session most recently created by this CLI
type State struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault(EnvServer, "http://localhost:8080"),
		Token:     os.Getenv(EnvToken),
		StateFile: getEnvOrDefault(EnvStateFile, defaultStateFile()),
		Output:    "text",
		Verbose:   false,
	}
}

// LoadState reads the saved session. A missing file is an empty state.
func (c *Config) LoadState() (State, error) {
	var st State
	data, err := os.ReadFile(c.StateFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return st, nil
		}
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, err
	}
	return st, nil
}

// SaveState records the current session and its token
func (c *Config) SaveState(st State) error {
	dir := filepath.Dir(c.StateFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(c.StateFile, data, 0600)
}

func defaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".letterstacks/session.json"
	}
	return filepath.Join(home, ".letterstacks", "session.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
