package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobfill/models"
	"jobfill/utils"
)

type SettingsController struct {
	Settings SettingsStore
}

func NewSettingsController(settings SettingsStore) *SettingsController {
	return &SettingsController{Settings: settings}
}

func (c *SettingsController) GetSettings(ctx *gin.Context) {
	settings, err := c.Settings.Get(ctx.Request.Context())
	if err != nil {
		utils.InternalServerError(ctx, "Failed to load settings", err)
		return
	}
	ctx.JSON(http.StatusOK, settings)
}

// UpdateSettings merges the body over the defaults, so a partial document
// leaves the other settings at their default values.
func (c *SettingsController) UpdateSettings(ctx *gin.Context) {
	settings := models.DefaultSettings()
	if err := ctx.ShouldBindJSON(&settings); err != nil {
		utils.BadRequestError(ctx, "Invalid request body", err)
		return
	}
	if err := settings.Validate(); err != nil {
		utils.ValidationError(ctx, err)
		return
	}

	if _, err := c.Settings.Upsert(ctx.Request.Context(), settings); err != nil {
		utils.InternalServerError(ctx, "Failed to save settings", err)
		return
	}
	utils.OK(ctx, "Settings updated successfully")
}
