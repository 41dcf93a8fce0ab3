package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vendorcover_backend/internal/middleware"
	"vendorcover_backend/internal/models"
	"vendorcover_backend/internal/services"
	"vendorcover_backend/internal/services/dto"
)

type SupportHandler struct {
	*BaseHandler
	supportService services.SupportService
}

func NewSupportHandler(base *BaseHandler, supportService services.SupportService) *SupportHandler {
	return &SupportHandler{
		BaseHandler:    base,
		supportService: supportService,
	}
}

func (h *SupportHandler) RegisterRoutes(r *gin.RouterGroup) {
	support := r.Group("/support")
	support.Use(middleware.AuthMiddleware())
	{
		support.POST("/tickets", h.CreateTicket)
		support.GET("/tickets", h.ListMyTickets)
		support.GET("/live-chat/access", h.LiveChatAccess)
	}

	admin := r.Group("/admin/support")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.UserRoleAdmin, models.UserRoleOwner))
	{
		admin.POST("/tickets/:ticketId/close", h.CloseTicket)
	}
}

func (h *SupportHandler) CreateTicket(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTicketRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	ticket, err := h.supportService.CreateTicket(c.Request.Context(), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *SupportHandler) ListMyTickets(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	tickets, err := h.supportService.ListMyTickets(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

func (h *SupportHandler) LiveChatAccess(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	allowed, err := h.supportService.CanUseLiveChat(c.Request.Context(), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"allowed": allowed})
}

func (h *SupportHandler) CloseTicket(c *gin.Context) {
	err := h.supportService.CloseTicket(c.Request.Context(), middleware.GetUserRole(c), c.Param("ticketId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}
