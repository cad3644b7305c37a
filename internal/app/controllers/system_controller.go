package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/majlis/internal/app/models/dto"
	"github.com/yigit/majlis/internal/i18n"
	"github.com/yigit/majlis/internal/middleware"
	"github.com/yigit/majlis/internal/pkg/apperrors"
)

// SessionCounter reports the number of open sessions
type SessionCounter interface {
	ClientCount() int
}

// SystemController serves health and translation tables
type SystemController struct {
	sessions   SessionCounter
	translator *i18n.Translator
}

// NewSystemController creates a new SystemController
func NewSystemController(sessions SessionCounter, translator *i18n.Translator) *SystemController {
	return &SystemController{sessions: sessions, translator: translator}
}

// Health reports liveness
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (c *SystemController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Sessions: c.sessions.ClientCount()})
}

// Languages lists the supported languages
// @Summary Supported languages
// @Tags i18n
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.LanguageInfo}
// @Router /i18n [get]
func (c *SystemController) Languages(ctx *gin.Context) {
	langs := c.translator.Languages()
	out := make([]dto.LanguageInfo, 0, len(langs))
	for _, lang := range langs {
		out = append(out, dto.LanguageInfo{Code: string(lang), Direction: string(i18n.DirectionOf(lang))})
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: out})
}

// Translations returns the UI table for one language
// @Summary Translation table
// @Tags i18n
// @Produce json
// @Param lang path string true "Language code"
// @Success 200 {object} dto.APIResponse{data=dto.TranslationsResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /i18n/{lang} [get]
func (c *SystemController) Translations(ctx *gin.Context) {
	lang := i18n.Language(ctx.Param("lang"))
	if !c.translator.Supports(lang) {
		middleware.HandleAPIError(ctx, apperrors.NewResourceNotFoundError("language not supported"))
		return
	}
	ctx.JSON(http.StatusOK, dto.APIResponse{Data: dto.TranslationsResponse{
		Language:  string(lang),
		Direction: string(i18n.DirectionOf(lang)),
		Strings:   c.translator.Table(lang),
	}})
}
