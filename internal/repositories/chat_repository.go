package repositories

import (
	"vendorcover_backend/internal/models"

	"gorm.io/gorm"
)

type ChatRepository interface {
	Create(message *models.ChatMessage) error
	ListByJob(helpRequestID string, limit, offset int) ([]models.ChatMessage, error)
	MarkReadByRecipient(helpRequestID, recipientID string) error
}

type ChatRepositoryImpl struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &ChatRepositoryImpl{db: db}
}

func (r *ChatRepositoryImpl) Create(message *models.ChatMessage) error {
	return r.db.Create(message).Error
}

func (r *ChatRepositoryImpl) ListByJob(helpRequestID string, limit, offset int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.Where("help_request_id = ?", helpRequestID).
		Order("created_at ASC").Limit(limit).Offset(offset).Find(&messages).Error
	return messages, err
}

func (r *ChatRepositoryImpl) MarkReadByRecipient(helpRequestID, recipientID string) error {
	return r.db.Model(&models.ChatMessage{}).
		Where("help_request_id = ? AND recipient_id = ? AND is_read = ?", helpRequestID, recipientID, false).
		Update("is_read", true).Error
}
