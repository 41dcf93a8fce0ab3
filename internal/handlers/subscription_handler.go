package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vendorcover_backend/internal/middleware"
	"vendorcover_backend/internal/models"
	"vendorcover_backend/internal/services"
	"vendorcover_backend/internal/services/dto"
)

type SubscriptionHandler struct {
	*BaseHandler
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandler(base *BaseHandler, subscriptionService services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler:         base,
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup) {
	subs := r.Group("/subscription")
	subs.Use(middleware.AuthMiddleware())
	{
		subs.GET("/status", h.Status)
	}

	admin := r.Group("/admin/subscription")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleOwner))
	{
		admin.POST("/grant", h.Grant)
		admin.POST("/revoke", h.Revoke)
	}
}

func (h *SubscriptionHandler) Status(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	status, err := h.subscriptionService.Status(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *SubscriptionHandler) Grant(c *gin.Context) {
	var req dto.GrantSubscriptionRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	err := h.subscriptionService.Grant(c.Request.Context(), middleware.GetUserRole(c), req.UserID, req.Days)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "granted"})
}

func (h *SubscriptionHandler) Revoke(c *gin.Context) {
	var req dto.RevokeSubscriptionRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	err := h.subscriptionService.Revoke(c.Request.Context(), middleware.GetUserRole(c), req.UserID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}
