package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfill/models"
)

func applicationRouter(store ApplicationStore, now time.Time) *gin.Engine {
	c := NewApplicationController(store)
	c.now = func() time.Time { return now }
	r := gin.New()
	r.GET("/applications", c.ListApplications)
	r.POST("/applications", c.CreateApplication)
	r.PUT("/applications/:id", c.UpdateApplication)
	r.DELETE("/applications/:id", c.DeleteApplication)
	r.GET("/stats", c.GetStats)
	r.GET("/export", c.ExportApplications)
	return r
}

func TestApplicationController_Create(t *testing.T) {
	store := newFakeApplications()
	router := applicationRouter(store, time.Now())

	t.Run("logs with defaults", func(t *testing.T) {
		w := perform(t, router, http.MethodPost, "/applications", map[string]any{
			"company":  "<b>Acme</b>",
			"job_url":  "https://jobs.lever.co/acme/1",
			"platform": "Lever",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		body := decode(t, w)
		assert.Equal(t, true, body["success"])
		app := body["application"].(map[string]any)
		assert.Equal(t, float64(1), app["id"])
		assert.Equal(t, "Unknown Position", app["position"])
		assert.Equal(t, models.StatusApplied, app["status"])
	})

	t.Run("unknown status", func(t *testing.T) {
		w := perform(t, router, http.MethodPost, "/applications", map[string]any{"status": "Ghosted"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("store failure hides the cause", func(t *testing.T) {
		failing := newFakeApplications()
		failing.err = errStore
		w := perform(t, applicationRouter(failing, time.Now()), http.MethodPost, "/applications", map[string]any{})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), errStore.Error())
	})
}

func TestApplicationController_List(t *testing.T) {
	store := newFakeApplications()
	router := applicationRouter(store, time.Now())
	perform(t, router, http.MethodPost, "/applications", map[string]any{"company": "Acme"})
	perform(t, router, http.MethodPost, "/applications", map[string]any{"company": "Globex"})

	t.Run("defaults", func(t *testing.T) {
		w := perform(t, router, http.MethodGet, "/applications", nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Len(t, body["applications"], 2)
		assert.Equal(t, float64(2), body["total"])
		assert.Equal(t, float64(defaultPageSize), body["limit"])
		assert.Equal(t, float64(0), body["skip"])
	})

	t.Run("filters and clamps the page size", func(t *testing.T) {
		w := perform(t, router, http.MethodGet, "/applications?status=Interview&platform=Lever&limit=1000&skip=5", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.ApplicationFilter{
			Status:   models.StatusInterview,
			Platform: "Lever",
			Limit:    maxPageSize,
			Skip:     5,
		}, store.filter)
	})

	for _, query := range []string{"limit=0", "limit=abc", "skip=-1", "status=Ghosted"} {
		t.Run("rejects "+query, func(t *testing.T) {
			w := perform(t, router, http.MethodGet, "/applications?"+query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestApplicationController_UpdateDelete(t *testing.T) {
	store := newFakeApplications()
	router := applicationRouter(store, time.Now())
	perform(t, router, http.MethodPost, "/applications", map[string]any{"company": "Acme"})

	w := perform(t, router, http.MethodPut, "/applications/1", map[string]any{
		"company": "Acme",
		"status":  models.StatusInterview,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Application updated", decode(t, w)["message"])
	assert.Equal(t, models.StatusInterview, store.apps[1].Status)

	assert.Equal(t, http.StatusNotFound, perform(t, router, http.MethodPut, "/applications/9", map[string]any{}).Code)
	assert.Equal(t, http.StatusBadRequest, perform(t, router, http.MethodPut, "/applications/abc", map[string]any{}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		perform(t, router, http.MethodPut, "/applications/1", map[string]any{"status": "Ghosted"}).Code)

	w = perform(t, router, http.MethodDelete, "/applications/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Application deleted", decode(t, w)["message"])
	assert.Empty(t, store.apps)

	assert.Equal(t, http.StatusNotFound, perform(t, router, http.MethodDelete, "/applications/1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, perform(t, router, http.MethodDelete, "/applications/0", nil).Code)
}

func TestApplicationController_StatsAndExport(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	store := newFakeApplications()
	router := applicationRouter(store, now)
	perform(t, router, http.MethodPost, "/applications", map[string]any{"company": "Acme", "auto_filled": true, "fields_filled": 7})

	w := perform(t, router, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])
	assert.Equal(t, now, store.statsNow)

	w = perform(t, router, http.MethodGet, "/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])
	rows := body["data"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "Acme", row["Company"])
	assert.Equal(t, float64(7), row["Fields Filled"])
}
