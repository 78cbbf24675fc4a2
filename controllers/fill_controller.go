package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobfill/services"
	"jobfill/utils"
)

type FillController struct {
	Filler Filler
}

func NewFillController(filler Filler) *FillController {
	return &FillController{Filler: filler}
}

// Fill opens the job page server-side and runs one fill pass.
func (c *FillController) Fill(ctx *gin.Context) {
	if c.Filler == nil {
		utils.ServiceUnavailableError(ctx, "Browser automation is not enabled on this server")
		return
	}

	var req services.FillRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestError(ctx, "Invalid request body", err)
		return
	}

	resp, err := c.Filler.Fill(ctx.Request.Context(), req)
	if errors.Is(err, services.ErrInvalidURL) {
		utils.LogWarn("fill rejected", zap.String("url", req.URL), zap.Error(err))
		utils.BadRequestError(ctx, "Invalid url", err)
		return
	}
	if err != nil {
		utils.ErrorResponseWithCode(ctx, http.StatusBadGateway, "Failed to open job page", err)
		return
	}
	utils.LogInfo("fill completed",
		zap.String("run_id", resp.RunID),
		zap.String("url", req.URL),
		zap.String("platform", resp.Platform),
		zap.Int("filled", resp.Filled),
	)
	ctx.JSON(http.StatusOK, resp)
}

type HealthController struct {
	Version string
}

func (c *HealthController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "jobfill",
		"version": c.Version,
	})
}
