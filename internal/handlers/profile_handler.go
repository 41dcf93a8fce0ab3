package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vendorcover_backend/internal/middleware"
	"vendorcover_backend/internal/models"
	"vendorcover_backend/internal/services"
	"vendorcover_backend/internal/services/dto"
)

type ProfileHandler struct {
	*BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(base *BaseHandler, profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    base,
		profileService: profileService,
	}
}

func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	profiles := r.Group("/profiles")
	profiles.Use(middleware.AuthMiddleware())
	{
		profiles.POST("/me", h.Submit)
		profiles.GET("/me", h.GetMine)
	}

	admin := r.Group("/admin/profiles")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleOwner))
	{
		admin.GET("/pending", h.ListPending)
		admin.POST("/:userId/review", h.Review)
		admin.POST("/:userId/suspend", h.Suspend)
		admin.POST("/:userId/unsuspend", h.Unsuspend)
	}
}

func (h *ProfileHandler) Submit(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitProfileRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	profile, err := h.profileService.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

func (h *ProfileHandler) GetMine(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) ListPending(c *gin.Context) {
	page, limit := ParsePagination(c)

	profiles, total, err := h.profileService.ListPending(c.Request.Context(), middleware.GetUserRole(c), limit, (page-1)*limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles, "total": total})
}

func (h *ProfileHandler) Review(c *gin.Context) {
	var req dto.ReviewProfileRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	err := h.profileService.Review(c.Request.Context(), middleware.GetUserRole(c), c.Param("userId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reviewed"})
}

func (h *ProfileHandler) Suspend(c *gin.Context) {
	h.setSuspended(c, true)
}

func (h *ProfileHandler) Unsuspend(c *gin.Context) {
	h.setSuspended(c, false)
}

func (h *ProfileHandler) setSuspended(c *gin.Context, suspended bool) {
	err := h.profileService.SetSuspended(c.Request.Context(), middleware.GetUserRole(c), c.Param("userId"), suspended)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suspended": suspended})
}
