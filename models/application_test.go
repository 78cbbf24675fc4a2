package models

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var appColumns = []string{"id", "company", "position", "job_url", "platform", "status", "applied_date",
	"notes", "auto_filled", "fields_filled", "screenshot_key", "run_id", "created_at", "updated_at"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestApplication_SanitizeAndDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	app := &Application{
		Company:  `<b>Acme</b> <script>alert(1)</script>& Co`,
		Position: "  ",
		Notes:    `<img src=x onerror=alert(1)>follow up`,
	}
	app.Sanitize()
	app.ApplyDefaults(now)

	assert.Equal(t, "Acme & Co", app.Company)
	assert.Equal(t, "Unknown Position", app.Position)
	assert.Equal(t, "follow up", app.Notes)
	assert.Equal(t, "Other", app.Platform)
	assert.Equal(t, StatusApplied, app.Status)
	assert.Equal(t, now, app.AppliedDate)
}

func TestApplicationModel_Create(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO applications").
		WithArgs("Acme", "Engineer", "https://jobs.lever.co/acme/1", "Lever", StatusApplied,
			sqlmock.AnyArg(), "", true, 5, "", "run-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

	app := &Application{Company: "<i>Acme</i>", Position: "Engineer", JobURL: "https://jobs.lever.co/acme/1",
		Platform: "Lever", AutoFilled: true, FieldsFilled: 5, RunID: "run-1"}
	require.NoError(t, NewApplicationModel(db).LogApplication(context.Background(), app))
	assert.Equal(t, 7, app.ID)
	assert.Equal(t, "Acme", app.Company)
}

func TestApplicationModel_GetByID_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT .* FROM applications WHERE id = \\$1").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(appColumns))

	_, err := NewApplicationModel(db).GetByID(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApplicationModel_List(t *testing.T) {
	db, mock := newMock(t)
	applied := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM applications WHERE status = \\$1 AND platform = \\$2").
		WithArgs(StatusInterview, "Lever").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("ORDER BY applied_date DESC LIMIT \\$3 OFFSET \\$4").
		WithArgs(StatusInterview, "Lever", 50, 0).
		WillReturnRows(sqlmock.NewRows(appColumns).AddRow(
			1, "Acme", "Engineer", "", "Lever", StatusInterview, applied, "", false, 0, "", "", applied, applied))

	apps, total, err := NewApplicationModel(db).List(context.Background(),
		ApplicationFilter{Status: StatusInterview, Platform: "Lever", Skip: -3})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, apps, 1)
	assert.Equal(t, "Acme", apps[0].Company)
}

func TestApplicationModel_UpdateAndDelete_NotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("UPDATE applications SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM applications").WithArgs(9).WillReturnResult(sqlmock.NewResult(0, 0))

	m := NewApplicationModel(db)
	assert.ErrorIs(t, m.Update(context.Background(), 9, &Application{Company: "Acme"}), ErrNotFound)
	assert.ErrorIs(t, m.Delete(context.Background(), 9), ErrNotFound)
}

func TestApplicationModel_Stats(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\),").
		WillReturnRows(sqlmock.NewRows([]string{"total", "weekly", "today"}).AddRow(8, 3, 1))
	mock.ExpectQuery("SELECT status, COUNT\\(\\*\\) FROM applications GROUP BY status").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow(StatusApplied, 5).AddRow(StatusInterview, 2).AddRow(StatusOffer, 1))
	mock.ExpectQuery("SELECT platform, COUNT\\(\\*\\) FROM applications GROUP BY platform").
		WillReturnRows(sqlmock.NewRows([]string{"platform", "count"}).AddRow("Lever", 8))

	stats, err := NewApplicationModel(db).Stats(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 8, stats.Total)
	assert.Equal(t, 3, stats.WeeklyApps)
	assert.Equal(t, 1, stats.TodayApps)
	assert.Equal(t, 0, stats.StatusBreakdown[StatusRejected])
	assert.Equal(t, 0, stats.PlatformBreakdown["LinkedIn"])
	assert.Equal(t, 8, stats.PlatformBreakdown["Lever"])
	assert.Equal(t, 37.5, stats.SuccessRate)
}

func TestSuccessRate(t *testing.T) {
	assert.Equal(t, 0.0, SuccessRate(0, 0))
	assert.Equal(t, 33.3, SuccessRate(1, 3))
	assert.Equal(t, 66.7, SuccessRate(2, 3))
	assert.Equal(t, 100.0, SuccessRate(4, 4))
}

func TestExportRow(t *testing.T) {
	app := Application{Company: "Acme", AutoFilled: true, AppliedDate: time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)}
	row := app.ExportRow()
	assert.Equal(t, "Yes", row.AutoFilled)
	assert.Equal(t, "2026-03-01", row.AppliedDate)
}
