// Package auth stores the Gemini API key used for description suggestions.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EnvAPIKey overrides any stored key.
const EnvAPIKey = "TASKDAY_GEMINI_API_KEY"

// Key sources.
const (
	SourceEnv    = "env"
	SourceFile   = "file"
	SourceConfig = "config"
)

type KeyInfo struct {
	Key       string    `json:"key"`
	Source    string    `json:"source"`     // "env" | "file" | "config"
	CreatedAt time.Time `json:"created_at"` // when we saved to file
}

// Masked returns the key with all but the last four characters hidden.
func (k KeyInfo) Masked() string {
	if len(k.Key) <= 4 {
		return strings.Repeat("*", len(k.Key))
	}
	return strings.Repeat("*", len(k.Key)-4) + k.Key[len(k.Key)-4:]
}

// Store reads and writes the credentials file at Path.
type Store struct {
	Path string
}

// GetKey returns the API key: env override first, then the credentials
// file. It returns nil, nil when no key is available.
func (s Store) GetKey() (*KeyInfo, error) {
	// 1) env override
	if env := strings.TrimSpace(os.Getenv(EnvAPIKey)); env != "" {
		return &KeyInfo{Key: env, Source: SourceEnv}, nil
	}

	// 2) file
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ki KeyInfo
	if err := json.Unmarshal(b, &ki); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ki.Key = strings.TrimSpace(ki.Key)
	if ki.Key == "" {
		return nil, nil
	}
	ki.Source = SourceFile
	return &ki, nil
}

// SetKey writes key to the credentials file with owner-only permissions.
func (s Store) SetKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("empty key")
	}
	// config dir is created with 0700
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	ki := KeyInfo{
		Key:       key,
		Source:    SourceFile,
		CreatedAt: time.Now(),
	}
	b, err := json.MarshalIndent(ki, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(s.Path, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// DeleteKey removes the credentials file. A missing file is not an error.
func (s Store) DeleteKey() error {
	if err := os.Remove(s.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}
