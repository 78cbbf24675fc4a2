package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type TypingSpeed string

const (
	TypingInstant TypingSpeed = "instant"
	TypingFast    TypingSpeed = "fast"
	TypingHuman   TypingSpeed = "human"
	TypingSlow    TypingSpeed = "slow"
)

func (s TypingSpeed) Valid() bool {
	switch s {
	case TypingInstant, TypingFast, TypingHuman, TypingSlow:
		return true
	}
	return false
}

// Settings controls how forms are filled. Delays are in milliseconds.
type Settings struct {
	AutoFillEnabled    bool            `json:"auto_fill_enabled"`
	SupportedPlatforms map[string]bool `json:"supported_platforms"`
	TypingSpeed        TypingSpeed     `json:"typing_speed"`
	TypingDelayMin     int             `json:"typing_delay_min"`
	TypingDelayMax     int             `json:"typing_delay_max"`
	RandomDelays       bool            `json:"random_delays"`
	AutoSubmit         bool            `json:"auto_submit"`
	SaveApplications   bool            `json:"save_applications"`
	UpdatedAt          time.Time       `json:"updated_at,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		AutoFillEnabled: true,
		SupportedPlatforms: map[string]bool{
			"linkedin":     true,
			"indeed":       true,
			"greenhouse":   true,
			"lever":        true,
			"workday":      true,
			"glassdoor":    true,
			"ziprecruiter": true,
		},
		TypingSpeed:      TypingHuman,
		TypingDelayMin:   50,
		TypingDelayMax:   150,
		RandomDelays:     true,
		AutoSubmit:       false,
		SaveApplications: true,
	}
}

func (s Settings) Validate() error {
	if !s.TypingSpeed.Valid() {
		return fmt.Errorf("typing_speed must be one of instant, fast, human, slow; got %q", s.TypingSpeed)
	}
	if s.TypingDelayMin < 0 || s.TypingDelayMax < 0 {
		return errors.New("typing delays must not be negative")
	}
	if s.TypingDelayMin > s.TypingDelayMax {
		return errors.New("typing_delay_min must not exceed typing_delay_max")
	}
	return nil
}

type SettingsModel struct {
	DB *sql.DB
}

func NewSettingsModel(db *sql.DB) *SettingsModel {
	return &SettingsModel{DB: db}
}

// Get returns the stored settings, or the defaults when none are saved.
func (m *SettingsModel) Get(ctx context.Context) (Settings, error) {
	var data []byte
	var updatedAt time.Time
	err := m.DB.QueryRowContext(ctx, `SELECT data, updated_at FROM settings WHERE id = $1`, mainDocumentID).
		Scan(&data, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	settings.UpdatedAt = updatedAt
	return settings, nil
}

func (m *SettingsModel) Settings(ctx context.Context) (Settings, error) {
	return m.Get(ctx)
}

func (m *SettingsModel) Upsert(ctx context.Context, settings Settings) (Settings, error) {
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to encode settings: %w", err)
	}
	now := time.Now().UTC()
	query := `
		INSERT INTO settings (id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`
	if _, err := m.DB.ExecContext(ctx, query, mainDocumentID, data, now); err != nil {
		return Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	settings.UpdatedAt = now
	return settings, nil
}
