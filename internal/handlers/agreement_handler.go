package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vendorcover_backend/internal/middleware"
	"vendorcover_backend/internal/services"
)

type AgreementHandler struct {
	*BaseHandler
	agreementService services.AgreementService
}

func NewAgreementHandler(base *BaseHandler, agreementService services.AgreementService) *AgreementHandler {
	return &AgreementHandler{
		BaseHandler:      base,
		agreementService: agreementService,
	}
}

func (h *AgreementHandler) RegisterRoutes(r *gin.RouterGroup) {
	agreements := r.Group("/agreements")
	agreements.Use(middleware.AuthMiddleware())
	{
		agreements.GET("/:agreementId", h.Get)
		agreements.POST("/:agreementId/confirm", h.Confirm)
	}

	jobs := r.Group("/jobs")
	jobs.Use(middleware.AuthMiddleware())
	{
		jobs.GET("/:jobId/agreement", h.GetByJob)
	}
}

func (h *AgreementHandler) Get(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	agreement, err := h.agreementService.GetByID(c.Request.Context(), userID, c.Param("agreementId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, agreement)
}

func (h *AgreementHandler) GetByJob(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	agreement, err := h.agreementService.GetActiveByJob(c.Request.Context(), userID, c.Param("jobId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, agreement)
}

func (h *AgreementHandler) Confirm(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	agreement, err := h.agreementService.Confirm(c.Request.Context(), userID, c.Param("agreementId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, agreement)
}
