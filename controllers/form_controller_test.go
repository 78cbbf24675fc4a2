package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfill/autofill"
	"jobfill/models"
)

func formRouter(profiles ProfileStore) *gin.Engine {
	c := NewFormController(autofill.NewAnalyzer(nil), profiles)
	r := gin.New()
	r.POST("/forms/analyze", c.AnalyzeForm)
	return r
}

func janeProfiles() *fakeProfiles {
	p := models.DefaultProfile()
	p.PersonalInfo.FullName = "Jane Q Doe"
	p.PersonalInfo.Email = "jane@example.com"
	return &fakeProfiles{profile: p}
}

func TestFormController_AnalyzeFields(t *testing.T) {
	w := perform(t, formRouter(janeProfiles()), http.MethodPost, "/forms/analyze", map[string]any{
		"url": "https://boards.greenhouse.io/acme/jobs/1",
		"fields": []map[string]any{
			{"field_name": "email_address", "field_type": "email", "label": "Email"},
			{"field_name": "q1", "field_type": "text", "label": "Favorite color"},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["fallback_used"])
	assert.Equal(t, "Greenhouse", body["platform"])
	mappings := body["field_mappings"].([]any)
	require.Len(t, mappings, 2)
	assert.Equal(t, "jane@example.com", mappings[0].(map[string]any)["suggested_value"])
	assert.Equal(t, "", mappings[1].(map[string]any)["suggested_value"])
}

func TestFormController_AnalyzeHTML(t *testing.T) {
	w := perform(t, formRouter(janeProfiles()), http.MethodPost, "/forms/analyze", map[string]any{
		"url":  "https://jobs.lever.co/acme/1",
		"html": `<html><body><label for="fn">First name</label><input id="fn" name="first_name"></body></html>`,
	})

	require.Equal(t, http.StatusOK, w.Code)
	mappings := decode(t, w)["field_mappings"].([]any)
	require.Len(t, mappings, 1)
	m := mappings[0].(map[string]any)
	assert.Equal(t, "first_name", m["field_name"])
	assert.Equal(t, "Jane", m["suggested_value"])
}

func TestFormController_Errors(t *testing.T) {
	t.Run("nothing to analyze", func(t *testing.T) {
		w := perform(t, formRouter(janeProfiles()), http.MethodPost, "/forms/analyze", map[string]any{"url": "https://x.test"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("profile unavailable", func(t *testing.T) {
		w := perform(t, formRouter(&fakeProfiles{err: errStore}), http.MethodPost, "/forms/analyze", map[string]any{
			"fields": []map[string]any{{"field_name": "email", "field_type": "email"}},
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
