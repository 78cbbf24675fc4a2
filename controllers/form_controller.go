package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobfill/autofill"
	"jobfill/dom"
	"jobfill/utils"
)

type AnalyzeFormRequest struct {
	HTML   string               `json:"html"`
	URL    string               `json:"url"`
	Fields []autofill.FormField `json:"fields"`
}

// FormController answers "what would be filled here" without touching a
// live page: the rule-based field analysis over a page snapshot or a list
// of scraped fields.
type FormController struct {
	Analyzer *autofill.Analyzer
	Profiles ProfileStore
}

func NewFormController(analyzer *autofill.Analyzer, profiles ProfileStore) *FormController {
	return &FormController{Analyzer: analyzer, Profiles: profiles}
}

func (c *FormController) AnalyzeForm(ctx *gin.Context) {
	var req AnalyzeFormRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.BadRequestError(ctx, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.HTML) == "" && len(req.Fields) == 0 {
		utils.BadRequestError(ctx, "Either html or fields is required", errors.New("nothing to analyze"))
		return
	}

	profile, err := c.Profiles.GetOrDefault(ctx.Request.Context())
	if err != nil {
		utils.InternalServerError(ctx, "Failed to load profile", err)
		return
	}

	var mappings []autofill.FieldMapping
	if strings.TrimSpace(req.HTML) != "" {
		doc, err := dom.ParseString(req.HTML, req.URL)
		if err != nil {
			utils.BadRequestError(ctx, "Could not parse html", err)
			return
		}
		mappings = c.Analyzer.AnalyzeDocument(doc, profile)
	} else {
		mappings = c.Analyzer.AnalyzeFields(req.Fields, profile)
	}
	if mappings == nil {
		mappings = []autofill.FieldMapping{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"field_mappings": mappings,
		"fallback_used":  true,
		"platform":       autofill.DetectPlatform(req.URL),
	})
}
