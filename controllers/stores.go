package controllers

import (
	"context"
	"time"

	"jobfill/models"
	"jobfill/services"
)

// The controllers depend on these rather than the sql-backed models so the
// HTTP layer can be tested without a database.

type ProfileStore interface {
	GetOrDefault(ctx context.Context) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	Reset(ctx context.Context) (*models.Profile, error)
}

type SettingsStore interface {
	Get(ctx context.Context) (models.Settings, error)
	Upsert(ctx context.Context, settings models.Settings) (models.Settings, error)
}

type ApplicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
	Update(ctx context.Context, id int, app *models.Application) error
	Delete(ctx context.Context, id int) error
	Stats(ctx context.Context, now time.Time) (*models.ApplicationStats, error)
	Export(ctx context.Context) ([]models.ExportRow, error)
}

type Filler interface {
	Fill(ctx context.Context, req services.FillRequest) (*services.FillResponse, error)
}

var (
	_ ProfileStore     = (*models.ProfileModel)(nil)
	_ SettingsStore    = (*models.SettingsModel)(nil)
	_ ApplicationStore = (*models.ApplicationModel)(nil)
	_ Filler           = (*services.FillService)(nil)
)
