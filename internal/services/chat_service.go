package services

import (
	"context"

	"vendorcover_backend/internal/models"
	"vendorcover_backend/internal/repositories"
	"vendorcover_backend/internal/services/dto"
	"vendorcover_backend/pkg/apperrors"
)

// ChatService - переписка между сторонами заявки
type ChatService interface {
	SendMessage(ctx context.Context, senderID, helpRequestID string, req *dto.SendMessageRequest) (*models.ChatMessage, error)
	ListMessages(ctx context.Context, userID, helpRequestID string, limit, offset int) ([]models.ChatMessage, error)
}

type chatService struct {
	chatRepo repositories.ChatRepository
	jobRepo  repositories.HelpRequestRepository
	appRepo  repositories.ApplicationRepository
}

func NewChatService(
	chatRepo repositories.ChatRepository,
	jobRepo repositories.HelpRequestRepository,
	appRepo repositories.ApplicationRepository,
) ChatService {
	return &chatService{chatRepo: chatRepo, jobRepo: jobRepo, appRepo: appRepo}
}

func (s *chatService) SendMessage(ctx context.Context, senderID, helpRequestID string, req *dto.SendMessageRequest) (*models.ChatMessage, error) {
	if err := s.requireParty(helpRequestID, senderID); err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		HelpRequestID: helpRequestID,
		SenderID:      senderID,
		RecipientID:   req.RecipientID,
		Content:       req.Content,
	}
	if err := s.chatRepo.Create(msg); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return msg, nil
}

func (s *chatService) ListMessages(ctx context.Context, userID, helpRequestID string, limit, offset int) ([]models.ChatMessage, error) {
	if err := s.requireParty(helpRequestID, userID); err != nil {
		return nil, err
	}
	messages, err := s.chatRepo.ListByJob(helpRequestID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	// Прочитанность отмечается при просмотре
	_ = s.chatRepo.MarkReadByRecipient(helpRequestID, userID)
	return messages, nil
}

// requireParty - участником переписки является заказчик или откликнувшийся вендор
func (s *chatService) requireParty(helpRequestID, userID string) error {
	job, err := s.jobRepo.FindByID(helpRequestID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	if job.RequesterID == userID {
		return nil
	}
	if job.AcceptedVendorID != nil && *job.AcceptedVendorID == userID {
		return nil
	}
	if _, err := s.appRepo.FindByJobAndApplicant(helpRequestID, userID); err == nil {
		return nil
	}
	return apperrors.NewForbiddenError("not a party to this job")
}
