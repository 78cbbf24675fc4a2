package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobfill/models"
	"jobfill/utils"
)

const screenshotURLTTL = time.Hour

// ScreenshotStore is the bucket holding post-fill screenshots.
type ScreenshotStore interface {
	GeneratePresignedURL(key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// ScreenshotRecords finds and updates the application a screenshot
// belongs to.
type ScreenshotRecords interface {
	GetByID(ctx context.Context, id int) (*models.Application, error)
	SetScreenshot(ctx context.Context, id int, key string) error
}

var _ ScreenshotRecords = (*models.ApplicationModel)(nil)

type ScreenshotController struct {
	Store        ScreenshotStore
	Applications ScreenshotRecords
}

func NewScreenshotController(store ScreenshotStore, applications ScreenshotRecords) *ScreenshotController {
	return &ScreenshotController{Store: store, Applications: applications}
}

// GetScreenshotURL returns a short-lived download link for the screenshot
// taken after an application was filled. ?redirect=true answers with a
// redirect instead of JSON.
func (c *ScreenshotController) GetScreenshotURL(ctx *gin.Context) {
	app, ok := c.screenshotOf(ctx)
	if !ok {
		return
	}

	url, err := c.Store.GeneratePresignedURL(app.ScreenshotKey, screenshotURLTTL)
	if err != nil {
		utils.InternalServerError(ctx, "Failed to generate screenshot URL", err)
		return
	}
	if ctx.Query("redirect") == "true" {
		ctx.Redirect(http.StatusTemporaryRedirect, url)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"url":        url,
		"key":        app.ScreenshotKey,
		"expires_in": int(screenshotURLTTL.Seconds()),
	})
}

// DeleteScreenshot removes the object and clears the application's
// reference to it.
func (c *ScreenshotController) DeleteScreenshot(ctx *gin.Context) {
	app, ok := c.screenshotOf(ctx)
	if !ok {
		return
	}

	if err := c.Store.Delete(ctx.Request.Context(), app.ScreenshotKey); err != nil {
		utils.InternalServerError(ctx, "Failed to delete screenshot", err)
		return
	}
	if err := c.Applications.SetScreenshot(ctx.Request.Context(), app.ID, ""); err != nil {
		utils.InternalServerError(ctx, "Failed to update application", err)
		return
	}
	utils.OK(ctx, "Screenshot deleted")
}

func (c *ScreenshotController) screenshotOf(ctx *gin.Context) (*models.Application, bool) {
	if c.Store == nil {
		utils.ServiceUnavailableError(ctx, "Screenshot storage is not configured")
		return nil, false
	}
	id, ok := pathID(ctx)
	if !ok {
		return nil, false
	}

	app, err := c.Applications.GetByID(ctx.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		utils.NotFoundError(ctx, "Application not found")
		return nil, false
	}
	if err != nil {
		utils.InternalServerError(ctx, "Failed to load application", err)
		return nil, false
	}
	if app.ScreenshotKey == "" {
		utils.LogDebug("no screenshot recorded", zap.Int("application_id", id))
		utils.NotFoundError(ctx, "No screenshot for this application")
		return nil, false
	}
	return app, true
}
