package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const mainDocumentID = "main"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type PersonalInfo struct {
	FullName      string `json:"full_name"`
	PreferredName string `json:"preferred_name,omitempty"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Linkedin      string `json:"linkedin,omitempty"`
	Location      string `json:"location,omitempty"`
	StreetAddress string `json:"street_address,omitempty"`
	AddressLine2  string `json:"address_line2,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	StateFull     string `json:"state_full,omitempty"`
	ZipCode       string `json:"zip_code,omitempty"`
	Country       string `json:"country,omitempty"`
	CountryCode   string `json:"country_code,omitempty"`
	Website       string `json:"website,omitempty"`
	Github        string `json:"github,omitempty"`
	Portfolio     string `json:"portfolio,omitempty"`
}

type WorkExperience struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location,omitempty"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date,omitempty"`
	Current      bool     `json:"current"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

type Education struct {
	ID           string   `json:"id"`
	Degree       string   `json:"degree"`
	Field        string   `json:"field"`
	Institution  string   `json:"institution"`
	Location     string   `json:"location,omitempty"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date,omitempty"`
	GPA          string   `json:"gpa,omitempty"`
	Achievements []string `json:"achievements"`
}

type Certification struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Issuer       string `json:"issuer"`
	Date         string `json:"date,omitempty"`
	CredentialID string `json:"credential_id,omitempty"`
}

// Preferences carries answers for questions that have no natural home in a
// resume. Empty fields fall back to the engine's generic defaults.
type Preferences struct {
	YearsOfExperience string `json:"years_of_experience,omitempty"`
	SalaryExpectation string `json:"salary_expectation,omitempty"`
	NoticePeriod      string `json:"notice_period,omitempty"`
	StartDate         string `json:"start_date,omitempty"`
}

// Profile is the applicant data forms are filled from. Index 0 of
// WorkExperience and Education is the most recent entry.
type Profile struct {
	PersonalInfo   PersonalInfo     `json:"personal_info"`
	Summary        string           `json:"summary"`
	WorkExperience []WorkExperience `json:"work_experience"`
	Education      []Education      `json:"education"`
	Skills         []string         `json:"skills"`
	Certifications []Certification  `json:"certifications"`
	Languages      []string         `json:"languages"`
	Preferences    Preferences      `json:"preferences"`
	UpdatedAt      time.Time        `json:"updated_at,omitempty"`
}

// DefaultProfile is served until the user saves their own.
func DefaultProfile() *Profile {
	return &Profile{
		PersonalInfo: PersonalInfo{
			Country:     "United States",
			CountryCode: "US",
		},
		WorkExperience: []WorkExperience{},
		Education:      []Education{},
		Skills:         []string{},
		Certifications: []Certification{},
		Languages:      []string{"English"},
	}
}

// Validate checks the fields a form can't do without.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.PersonalInfo.FullName) == "" {
		return errors.New("personal_info.full_name is required")
	}
	if email := strings.TrimSpace(p.PersonalInfo.Email); email != "" && !strings.Contains(email, "@") {
		return fmt.Errorf("personal_info.email %q is not an email address", email)
	}
	return nil
}

// CurrentJob returns the most recent work experience, if any.
func (p *Profile) CurrentJob() (WorkExperience, bool) {
	if len(p.WorkExperience) == 0 {
		return WorkExperience{}, false
	}
	return p.WorkExperience[0], true
}

// LatestEducation returns the most recent education entry, if any.
func (p *Profile) LatestEducation() (Education, bool) {
	if len(p.Education) == 0 {
		return Education{}, false
	}
	return p.Education[0], true
}

type ProfileModel struct {
	DB *sql.DB
}

func NewProfileModel(db *sql.DB) *ProfileModel {
	return &ProfileModel{DB: db}
}

// Get returns the stored profile or ErrNotFound.
func (m *ProfileModel) Get(ctx context.Context) (*Profile, error) {
	var data []byte
	var updatedAt time.Time
	err := m.DB.QueryRowContext(ctx, `SELECT data, updated_at FROM profiles WHERE id = $1`, mainDocumentID).
		Scan(&data, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	profile := DefaultProfile()
	if err := json.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	profile.UpdatedAt = updatedAt
	return profile, nil
}

// GetOrDefault is Get with the default profile standing in for a missing row.
func (m *ProfileModel) GetOrDefault(ctx context.Context) (*Profile, error) {
	profile, err := m.Get(ctx)
	if errors.Is(err, ErrNotFound) {
		return DefaultProfile(), nil
	}
	return profile, err
}

// Profile serves the stored profile to the fill engine.
func (m *ProfileModel) Profile(ctx context.Context) (*Profile, error) {
	return m.GetOrDefault(ctx)
}

func (m *ProfileModel) Upsert(ctx context.Context, profile *Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	now := time.Now().UTC()
	query := `
		INSERT INTO profiles (id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`
	if _, err := m.DB.ExecContext(ctx, query, mainDocumentID, data, now); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	profile.UpdatedAt = now
	return nil
}

// Reset overwrites the stored profile with the default one.
func (m *ProfileModel) Reset(ctx context.Context) (*Profile, error) {
	profile := DefaultProfile()
	if err := m.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
