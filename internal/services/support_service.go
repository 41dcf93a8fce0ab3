package services

import (
	"context"

	"vendorcover_backend/internal/models"
	"vendorcover_backend/internal/repositories"
	"vendorcover_backend/internal/services/dto"
	"vendorcover_backend/pkg/apperrors"
)

// SupportService - обращения в поддержку. Тикеты доступны всем,
// live-чат поддержки только действующим подписчикам.
type SupportService interface {
	CreateTicket(ctx context.Context, userID string, req *dto.CreateTicketRequest) (*models.SupportTicket, error)
	ListMyTickets(ctx context.Context, userID string) ([]models.SupportTicket, error)
	CloseTicket(ctx context.Context, actorRole models.UserRole, ticketID string) error
	// CanUseLiveChat - доступ к live-каналу поддержки
	CanUseLiveChat(ctx context.Context, userID string) (bool, error)
}

type supportService struct {
	supportRepo     repositories.SupportRepository
	subscriptionSvc SubscriptionService
}

func NewSupportService(
	supportRepo repositories.SupportRepository,
	subscriptionSvc SubscriptionService,
) SupportService {
	return &supportService{supportRepo: supportRepo, subscriptionSvc: subscriptionSvc}
}

func (s *supportService) CreateTicket(ctx context.Context, userID string, req *dto.CreateTicketRequest) (*models.SupportTicket, error) {
	ticket := &models.SupportTicket{
		UserID:  userID,
		Subject: req.Subject,
		Message: req.Message,
		Status:  models.TicketStatusOpen,
	}
	if err := s.supportRepo.Create(ticket); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return ticket, nil
}

func (s *supportService) ListMyTickets(ctx context.Context, userID string) ([]models.SupportTicket, error) {
	return s.supportRepo.ListByUser(userID)
}

func (s *supportService) CloseTicket(ctx context.Context, actorRole models.UserRole, ticketID string) error {
	if actorRole != models.UserRoleAdmin && actorRole != models.UserRoleOwner {
		return apperrors.ErrInsufficientPermissions
	}
	return s.supportRepo.UpdateStatus(ticketID, models.TicketStatusClosed)
}

func (s *supportService) CanUseLiveChat(ctx context.Context, userID string) (bool, error) {
	return s.subscriptionSvc.HasActiveAccess(ctx, userID)
}
