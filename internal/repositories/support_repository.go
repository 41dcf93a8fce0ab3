package repositories

import (
	"vendorcover_backend/internal/models"

	"gorm.io/gorm"
)

type SupportRepository interface {
	Create(ticket *models.SupportTicket) error
	ListByUser(userID string) ([]models.SupportTicket, error)
	UpdateStatus(ticketID string, status models.TicketStatus) error
}

type SupportRepositoryImpl struct {
	db *gorm.DB
}

func NewSupportRepository(db *gorm.DB) SupportRepository {
	return &SupportRepositoryImpl{db: db}
}

func (r *SupportRepositoryImpl) Create(ticket *models.SupportTicket) error {
	return r.db.Create(ticket).Error
}

func (r *SupportRepositoryImpl) ListByUser(userID string) ([]models.SupportTicket, error) {
	var tickets []models.SupportTicket
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&tickets).Error
	return tickets, err
}

func (r *SupportRepositoryImpl) UpdateStatus(ticketID string, status models.TicketStatus) error {
	return r.db.Model(&models.SupportTicket{}).Where("id = ?", ticketID).Update("status", status).Error
}
