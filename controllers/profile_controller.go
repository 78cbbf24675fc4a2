package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobfill/models"
	"jobfill/utils"
)

type ProfileController struct {
	Profiles ProfileStore
}

func NewProfileController(profiles ProfileStore) *ProfileController {
	return &ProfileController{Profiles: profiles}
}

// GetProfile returns the saved profile, or the default one before the
// first save.
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	profile, err := c.Profiles.GetOrDefault(ctx.Request.Context())
	if err != nil {
		utils.InternalServerError(ctx, "Failed to load profile", err)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}

func (c *ProfileController) UpdateProfile(ctx *gin.Context) {
	profile := models.DefaultProfile()
	if err := ctx.ShouldBindJSON(profile); err != nil {
		utils.BadRequestError(ctx, "Invalid request body", err)
		return
	}
	if err := profile.Validate(); err != nil {
		utils.ValidationError(ctx, err)
		return
	}

	if err := c.Profiles.Upsert(ctx.Request.Context(), profile); err != nil {
		utils.InternalServerError(ctx, "Failed to save profile", err)
		return
	}
	utils.OK(ctx, "Profile updated successfully")
}

func (c *ProfileController) ResetProfile(ctx *gin.Context) {
	if _, err := c.Profiles.Reset(ctx.Request.Context()); err != nil {
		utils.InternalServerError(ctx, "Failed to reset profile", err)
		return
	}
	utils.OK(ctx, "Profile reset to default")
}
