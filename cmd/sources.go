package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"jobfill/models"
)

// profileFile reads the profile from a JSON file on every fill, layered
// over the default profile.
type profileFile string

func (f profileFile) Profile(context.Context) (*models.Profile, error) {
	p := models.DefaultProfile()
	if err := readJSON(string(f), p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", f, err)
	}
	return p, nil
}

// settingsFile reads settings from a JSON file. An empty path yields the
// defaults.
type settingsFile string

func (f settingsFile) Settings(context.Context) (models.Settings, error) {
	s := models.DefaultSettings()
	if f == "" {
		return s, nil
	}
	if err := readJSON(string(f), &s); err != nil {
		return models.Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return models.Settings{}, fmt.Errorf("settings %s: %w", f, err)
	}
	return s, nil
}

func readJSON(path string, into any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// dirStore keeps screenshots on the local disk when no bucket is set.
type dirStore struct {
	dir string
}

func (d dirStore) Upload(_ context.Context, key string, body []byte, _ string) (string, error) {
	path := filepath.Join(d.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
