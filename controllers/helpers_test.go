package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"jobfill/models"
	"jobfill/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var errStore = errors.New("store unavailable")

type fakeProfiles struct {
	profile *models.Profile
	saved   *models.Profile
	resets  int
	err     error
}

func (f *fakeProfiles) GetOrDefault(context.Context) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.profile == nil {
		return models.DefaultProfile(), nil
	}
	return f.profile, nil
}

func (f *fakeProfiles) Upsert(_ context.Context, p *models.Profile) error {
	if f.err != nil {
		return f.err
	}
	f.saved = p
	return nil
}

func (f *fakeProfiles) Reset(context.Context) (*models.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.resets++
	return models.DefaultProfile(), nil
}

type fakeSettings struct {
	settings *models.Settings
	saved    *models.Settings
	err      error
}

func (f *fakeSettings) Get(context.Context) (models.Settings, error) {
	if f.err != nil {
		return models.Settings{}, f.err
	}
	if f.settings == nil {
		return models.DefaultSettings(), nil
	}
	return *f.settings, nil
}

func (f *fakeSettings) Upsert(_ context.Context, s models.Settings) (models.Settings, error) {
	if f.err != nil {
		return models.Settings{}, f.err
	}
	f.saved = &s
	return s, nil
}

type fakeApplications struct {
	apps     map[int]*models.Application
	nextID   int
	filter   models.ApplicationFilter
	statsNow time.Time
	err      error
}

func newFakeApplications() *fakeApplications {
	return &fakeApplications{apps: map[int]*models.Application{}, nextID: 1}
}

func (f *fakeApplications) Create(_ context.Context, app *models.Application) error {
	if f.err != nil {
		return f.err
	}
	app.ApplyDefaults(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	app.ID = f.nextID
	f.nextID++
	stored := *app
	f.apps[app.ID] = &stored
	return nil
}

func (f *fakeApplications) List(_ context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	f.filter = filter
	out := []models.Application{}
	for id := 1; id < f.nextID; id++ {
		if app, ok := f.apps[id]; ok {
			out = append(out, *app)
		}
	}
	return out, len(out), nil
}

func (f *fakeApplications) Update(_ context.Context, id int, app *models.Application) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.apps[id]; !ok {
		return models.ErrNotFound
	}
	stored := *app
	stored.ID = id
	f.apps[id] = &stored
	return nil
}

func (f *fakeApplications) Delete(_ context.Context, id int) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.apps[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.apps, id)
	return nil
}

func (f *fakeApplications) Stats(_ context.Context, now time.Time) (*models.ApplicationStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.statsNow = now
	return &models.ApplicationStats{
		Total:           len(f.apps),
		StatusBreakdown: map[string]int{models.StatusApplied: len(f.apps)},
	}, nil
}

func (f *fakeApplications) Export(context.Context) ([]models.ExportRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	rows := []models.ExportRow{}
	for _, app := range f.apps {
		rows = append(rows, app.ExportRow())
	}
	return rows, nil
}

type fakeFiller struct {
	req  services.FillRequest
	resp *services.FillResponse
	err  error
}

func (f *fakeFiller) Fill(_ context.Context, req services.FillRequest) (*services.FillResponse, error) {
	f.req = req
	return f.resp, f.err
}

func perform(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
