package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfill/models"
)

func profileRouter(store ProfileStore) *gin.Engine {
	c := NewProfileController(store)
	r := gin.New()
	r.GET("/profile", c.GetProfile)
	r.PUT("/profile", c.UpdateProfile)
	r.POST("/profile/reset", c.ResetProfile)
	return r
}

func TestProfileController_GetProfile(t *testing.T) {
	t.Run("default before first save", func(t *testing.T) {
		w := perform(t, profileRouter(&fakeProfiles{}), http.MethodGet, "/profile", nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		info := body["personal_info"].(map[string]any)
		assert.Equal(t, "United States", info["country"])
		assert.Equal(t, []any{"English"}, body["languages"])
	})

	t.Run("store failure", func(t *testing.T) {
		w := perform(t, profileRouter(&fakeProfiles{err: errStore}), http.MethodGet, "/profile", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to load profile", decode(t, w)["error"])
	})
}

func TestProfileController_UpdateProfile(t *testing.T) {
	t.Run("saves a valid profile", func(t *testing.T) {
		store := &fakeProfiles{}
		w := perform(t, profileRouter(store), http.MethodPut, "/profile", map[string]any{
			"personal_info": map[string]any{"full_name": "Jane Doe", "email": "jane@example.com"},
			"skills":        []string{"Go"},
		})

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Profile updated successfully", body["message"])
		require.NotNil(t, store.saved)
		assert.Equal(t, "Jane Doe", store.saved.PersonalInfo.FullName)
		assert.Equal(t, []string{"Go"}, store.saved.Skills)
	})

	t.Run("missing name is rejected", func(t *testing.T) {
		store := &fakeProfiles{}
		w := perform(t, profileRouter(store), http.MethodPut, "/profile", map[string]any{
			"personal_info": map[string]any{"email": "jane@example.com"},
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Nil(t, store.saved)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := perform(t, profileRouter(&fakeProfiles{}), http.MethodPut, "/profile", `{"personal_info":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProfileController_ResetProfile(t *testing.T) {
	store := &fakeProfiles{profile: &models.Profile{PersonalInfo: models.PersonalInfo{FullName: "Jane"}}}
	w := perform(t, profileRouter(store), http.MethodPost, "/profile/reset", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Profile reset to default", decode(t, w)["message"])
	assert.Equal(t, 1, store.resets)
}
