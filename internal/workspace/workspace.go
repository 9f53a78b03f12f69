// Package workspace manages the on-disk workspace: directory layout and the
// settings file.
package workspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const BaseDirName = "SpeechScore"

// Settings is the persisted evaluation configuration: the pipeline stage
// names plus the worker count.
type Settings struct {
	Standardizer string `json:"standardizer"`
	Tokenizer    string `json:"tokenizer"`
	Normalizer   string `json:"normalizer"`
	Workers      int    `json:"workers"`
}

func DefaultSettings() Settings {
	return Settings{
		Standardizer: "default",
		Tokenizer:    "default",
		Normalizer:   "default",
		Workers:      0,
	}
}

// EnsureDefault creates the workspace under the user's home directory.
func EnsureDefault() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return EnsureAt(filepath.Join(home, BaseDirName))
}

// EnsureAt creates the workspace layout under base and seeds a default
// settings file when none exists yet. It returns base.
func EnsureAt(base string) (string, error) {
	paths := []string{
		filepath.Join(base, "configs"),
		filepath.Join(base, "datasets"),
		filepath.Join(base, "runs"),
	}
	for _, p := range paths {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", p, err)
		}
	}

	settingsPath := SettingsPath(base)
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := SaveSettings(settingsPath, DefaultSettings()); err != nil {
			return "", err
		}
	}
	return base, nil
}

func SettingsPath(base string) string {
	return filepath.Join(base, "configs", "settings.json")
}

// RunDBPath is where the workspace keeps its evaluation run database.
func RunDBPath(base string) string {
	return filepath.Join(base, "runs", "runs.db")
}

func LoadSettings(path string) (Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return s, nil
}

func SaveSettings(path string, s Settings) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
