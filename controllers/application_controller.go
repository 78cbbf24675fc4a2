package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"jobfill/models"
	"jobfill/utils"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type ApplicationController struct {
	Applications ApplicationStore
	now          func() time.Time
}

func NewApplicationController(applications ApplicationStore) *ApplicationController {
	return &ApplicationController{Applications: applications, now: time.Now}
}

// ListApplications pages through applications, newest first, optionally
// filtered by status and platform.
func (c *ApplicationController) ListApplications(ctx *gin.Context) {
	limit, err := queryInt(ctx, "limit", defaultPageSize)
	if err != nil || limit < 1 {
		utils.BadRequestError(ctx, "Invalid limit", err)
		return
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	skip, err := queryInt(ctx, "skip", 0)
	if err != nil || skip < 0 {
		utils.BadRequestError(ctx, "Invalid skip", err)
		return
	}

	filter := models.ApplicationFilter{
		Status:   ctx.Query("status"),
		Platform: ctx.Query("platform"),
		Limit:    limit,
		Skip:     skip,
	}
	if filter.Status != "" && !models.ValidStatus(filter.Status) {
		utils.BadRequestError(ctx, "Invalid status", fmt.Errorf("unknown status %q", filter.Status))
		return
	}

	apps, total, err := c.Applications.List(ctx.Request.Context(), filter)
	if err != nil {
		utils.InternalServerError(ctx, "Failed to list applications", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"applications": apps,
		"total":        total,
		"limit":        limit,
		"skip":         skip,
	})
}

func (c *ApplicationController) CreateApplication(ctx *gin.Context) {
	var app models.Application
	if err := ctx.ShouldBindJSON(&app); err != nil {
		utils.BadRequestError(ctx, "Invalid request body", err)
		return
	}
	if app.Status != "" && !models.ValidStatus(app.Status) {
		utils.ValidationError(ctx, fmt.Errorf("unknown status %q", app.Status))
		return
	}

	if err := c.Applications.Create(ctx.Request.Context(), &app); err != nil {
		utils.InternalServerError(ctx, "Failed to log application", err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"success": true, "application": app})
}

func (c *ApplicationController) UpdateApplication(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	var app models.Application
	if err := ctx.ShouldBindJSON(&app); err != nil {
		utils.BadRequestError(ctx, "Invalid request body", err)
		return
	}
	if app.Status != "" && !models.ValidStatus(app.Status) {
		utils.ValidationError(ctx, fmt.Errorf("unknown status %q", app.Status))
		return
	}

	err := c.Applications.Update(ctx.Request.Context(), id, &app)
	if errors.Is(err, models.ErrNotFound) {
		utils.NotFoundError(ctx, "Application not found")
		return
	}
	if err != nil {
		utils.InternalServerError(ctx, "Failed to update application", err)
		return
	}
	utils.OK(ctx, "Application updated")
}

func (c *ApplicationController) DeleteApplication(ctx *gin.Context) {
	id, ok := pathID(ctx)
	if !ok {
		return
	}
	err := c.Applications.Delete(ctx.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		utils.NotFoundError(ctx, "Application not found")
		return
	}
	if err != nil {
		utils.InternalServerError(ctx, "Failed to delete application", err)
		return
	}
	utils.OK(ctx, "Application deleted")
}

func (c *ApplicationController) GetStats(ctx *gin.Context) {
	stats, err := c.Applications.Stats(ctx.Request.Context(), c.now())
	if err != nil {
		utils.InternalServerError(ctx, "Failed to compute statistics", err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// ExportApplications returns flat rows for spreadsheet tools.
func (c *ApplicationController) ExportApplications(ctx *gin.Context) {
	rows, err := c.Applications.Export(ctx.Request.Context())
	if err != nil {
		utils.InternalServerError(ctx, "Failed to export applications", err)
		return
	}
	if rows == nil {
		rows = []models.ExportRow{}
	}
	ctx.JSON(http.StatusOK, gin.H{"data": rows, "count": len(rows)})
}

func queryInt(ctx *gin.Context, key string, def int) (int, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func pathID(ctx *gin.Context) (int, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id < 1 {
		utils.BadRequestError(ctx, "Invalid application id", err)
		return 0, false
	}
	return id, true
}
