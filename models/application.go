package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

const (
	StatusApplied    = "Applied"
	StatusInProgress = "In Progress"
	StatusInterview  = "Interview"
	StatusRejected   = "Rejected"
	StatusOffer      = "Offer"
)

// Statuses lists every application status in pipeline order.
var Statuses = []string{StatusApplied, StatusInProgress, StatusInterview, StatusRejected, StatusOffer}

// StatsPlatforms are always present in the platform breakdown, even at zero.
var StatsPlatforms = []string{"LinkedIn", "Indeed", "Greenhouse", "Lever", "Workday", "Glassdoor", "ZipRecruiter", "Other"}

func ValidStatus(s string) bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Application is one submitted (or auto-filled) job application.
type Application struct {
	ID            int       `json:"id"`
	Company       string    `json:"company"`
	Position      string    `json:"position"`
	JobURL        string    `json:"job_url"`
	Platform      string    `json:"platform"`
	Status        string    `json:"status"`
	AppliedDate   time.Time `json:"applied_date"`
	Notes         string    `json:"notes"`
	AutoFilled    bool      `json:"auto_filled"`
	FieldsFilled  int       `json:"fields_filled"`
	ScreenshotKey string    `json:"screenshot_key,omitempty"`
	RunID         string    `json:"run_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ApplyDefaults fills the fields a log event may leave blank.
func (a *Application) ApplyDefaults(now time.Time) {
	if strings.TrimSpace(a.Company) == "" {
		a.Company = "Unknown"
	}
	if strings.TrimSpace(a.Position) == "" {
		a.Position = "Unknown Position"
	}
	if a.Platform == "" {
		a.Platform = "Other"
	}
	if a.Status == "" {
		a.Status = StatusApplied
	}
	if a.AppliedDate.IsZero() {
		a.AppliedDate = now
	}
}

var textPolicy = bluemonday.StrictPolicy()

// Sanitize strips markup from the free-text fields. Company and position
// are often scraped from the page itself.
func (a *Application) Sanitize() {
	a.Company = clean(a.Company)
	a.Position = clean(a.Position)
	a.Notes = clean(a.Notes)
	a.Platform = clean(a.Platform)
	a.JobURL = strings.TrimSpace(a.JobURL)
}

func clean(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

type ApplicationFilter struct {
	Status   string
	Platform string
	Limit    int
	Skip     int
}

type ApplicationStats struct {
	Total             int            `json:"total"`
	StatusBreakdown   map[string]int `json:"status_breakdown"`
	PlatformBreakdown map[string]int `json:"platform_breakdown"`
	WeeklyApps        int            `json:"weekly_applications"`
	TodayApps         int            `json:"today_applications"`
	SuccessRate       float64        `json:"success_rate"`
}

// ExportRow is the flat shape spreadsheet tools expect.
type ExportRow struct {
	Company      string `json:"Company"`
	Position     string `json:"Position"`
	Platform     string `json:"Platform"`
	Status       string `json:"Status"`
	AppliedDate  string `json:"Applied Date"`
	JobURL       string `json:"Job URL"`
	AutoFilled   string `json:"Auto-Filled"`
	FieldsFilled int    `json:"Fields Filled"`
	Notes        string `json:"Notes"`
}

type ApplicationModel struct {
	DB *sql.DB
}

func NewApplicationModel(db *sql.DB) *ApplicationModel {
	return &ApplicationModel{DB: db}
}

const applicationColumns = `id, company, position, COALESCE(job_url, ''), platform, status, applied_date,
		COALESCE(notes, ''), auto_filled, fields_filled, COALESCE(screenshot_key, ''), COALESCE(run_id, ''),
		created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*Application, error) {
	app := &Application{}
	err := row.Scan(
		&app.ID, &app.Company, &app.Position, &app.JobURL, &app.Platform, &app.Status, &app.AppliedDate,
		&app.Notes, &app.AutoFilled, &app.FieldsFilled, &app.ScreenshotKey, &app.RunID,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (m *ApplicationModel) Create(ctx context.Context, app *Application) error {
	now := time.Now().UTC()
	app.Sanitize()
	app.ApplyDefaults(now)
	query := `
		INSERT INTO applications (company, position, job_url, platform, status, applied_date, notes,
			auto_filled, fields_filled, screenshot_key, run_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING id, created_at, updated_at
	`
	err := m.DB.QueryRowContext(ctx, query,
		app.Company, app.Position, app.JobURL, app.Platform, app.Status, app.AppliedDate, app.Notes,
		app.AutoFilled, app.FieldsFilled, app.ScreenshotKey, app.RunID, now,
	).Scan(&app.ID, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

// LogApplication records a fill pass reported by the engine.
func (m *ApplicationModel) LogApplication(ctx context.Context, app *Application) error {
	return m.Create(ctx, app)
}

func (m *ApplicationModel) GetByID(ctx context.Context, id int) (*Application, error) {
	row := m.DB.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load application %d: %w", id, err)
	}
	return app, nil
}

// List returns one page of applications, newest first, plus the total
// number matching the filter.
func (m *ApplicationModel) List(ctx context.Context, filter ApplicationFilter) ([]Application, int, error) {
	where, args := filter.where()

	var total int
	if err := m.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM applications%s ORDER BY applied_date DESC LIMIT $%d OFFSET $%d`,
		applicationColumns, where, len(args)+1, len(args)+2)
	rows, err := m.DB.QueryContext(ctx, query, append(args, limit, skip)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, *app)
	}
	return apps, total, rows.Err()
}

func (f ApplicationFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Platform != "" {
		args = append(args, f.Platform)
		clauses = append(clauses, fmt.Sprintf("platform = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Update replaces the editable fields of an application.
func (m *ApplicationModel) Update(ctx context.Context, id int, app *Application) error {
	now := time.Now().UTC()
	app.Sanitize()
	app.ApplyDefaults(now)
	query := `
		UPDATE applications SET company = $1, position = $2, job_url = $3, platform = $4, status = $5,
			applied_date = $6, notes = $7, auto_filled = $8, fields_filled = $9, updated_at = $10
		WHERE id = $11
	`
	res, err := m.DB.ExecContext(ctx, query,
		app.Company, app.Position, app.JobURL, app.Platform, app.Status,
		app.AppliedDate, app.Notes, app.AutoFilled, app.FieldsFilled, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update application %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	app.ID = id
	app.UpdatedAt = now
	return nil
}

// SetScreenshot records where the post-fill screenshot was stored.
func (m *ApplicationModel) SetScreenshot(ctx context.Context, id int, key string) error {
	res, err := m.DB.ExecContext(ctx,
		`UPDATE applications SET screenshot_key = $1, updated_at = $2 WHERE id = $3`, key, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update screenshot for application %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *ApplicationModel) Delete(ctx context.Context, id int) error {
	res, err := m.DB.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete application %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats summarises applications relative to now.
func (m *ApplicationModel) Stats(ctx context.Context, now time.Time) (*ApplicationStats, error) {
	stats := &ApplicationStats{
		StatusBreakdown:   make(map[string]int, len(Statuses)),
		PlatformBreakdown: make(map[string]int, len(StatsPlatforms)),
	}
	for _, s := range Statuses {
		stats.StatusBreakdown[s] = 0
	}
	for _, p := range StatsPlatforms {
		stats.PlatformBreakdown[p] = 0
	}

	now = now.UTC()
	weekAgo := now.AddDate(0, 0, -7)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	err := m.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE applied_date >= $1),
		       COUNT(*) FILTER (WHERE applied_date >= $2)
		FROM applications`, weekAgo, midnight).Scan(&stats.Total, &stats.WeeklyApps, &stats.TodayApps)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	if err := m.groupCounts(ctx, "status", stats.StatusBreakdown); err != nil {
		return nil, err
	}
	if err := m.groupCounts(ctx, "platform", stats.PlatformBreakdown); err != nil {
		return nil, err
	}

	stats.SuccessRate = SuccessRate(stats.StatusBreakdown[StatusInterview]+stats.StatusBreakdown[StatusOffer], stats.Total)
	return stats, nil
}

func (m *ApplicationModel) groupCounts(ctx context.Context, column string, into map[string]int) error {
	rows, err := m.DB.QueryContext(ctx, fmt.Sprintf(`SELECT %s, COUNT(*) FROM applications GROUP BY %s`, column, column))
	if err != nil {
		return fmt.Errorf("failed to group applications by %s: %w", column, err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		into[key] = count
	}
	return rows.Err()
}

// SuccessRate is the percentage of applications that reached an interview
// or offer, rounded to one decimal.
func SuccessRate(successes, total int) float64 {
	if total < 1 {
		total = 1
	}
	return math.Round(float64(successes)/float64(total)*1000) / 10
}

// Export returns every application as spreadsheet rows, newest first.
func (m *ApplicationModel) Export(ctx context.Context) ([]ExportRow, error) {
	rows, err := m.DB.QueryContext(ctx, `SELECT `+applicationColumns+` FROM applications ORDER BY applied_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to export applications: %w", err)
	}
	defer rows.Close()

	out := []ExportRow{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app.ExportRow())
	}
	return out, rows.Err()
}

func (a *Application) ExportRow() ExportRow {
	autoFilled := "No"
	if a.AutoFilled {
		autoFilled = "Yes"
	}
	return ExportRow{
		Company:      a.Company,
		Position:     a.Position,
		Platform:     a.Platform,
		Status:       a.Status,
		AppliedDate:  a.AppliedDate.Format("2006-01-02"),
		JobURL:       a.JobURL,
		AutoFilled:   autoFilled,
		FieldsFilled: a.FieldsFilled,
		Notes:        a.Notes,
	}
}
