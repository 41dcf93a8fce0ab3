package repositories

import (
	"errors"

	"vendorcover_backend/internal/models"

	"gorm.io/gorm"
)

var ErrAgreementNotFound = errors.New("subcontract agreement not found")

type AgreementRepository interface {
	Create(agreement *models.SubcontractAgreement) error
	FindByID(id string) (*models.SubcontractAgreement, error)
	// FindActiveByHelpRequest возвращает действующее (не voided) соглашение заявки
	FindActiveByHelpRequest(helpRequestID string) (*models.SubcontractAgreement, error)
	UpdateFields(agreementID string, fields map[string]interface{}) error
}

type AgreementRepositoryImpl struct {
	db *gorm.DB
}

func NewAgreementRepository(db *gorm.DB) AgreementRepository {
	return &AgreementRepositoryImpl{db: db}
}

func (r *AgreementRepositoryImpl) Create(agreement *models.SubcontractAgreement) error {
	return r.db.Create(agreement).Error
}

func (r *AgreementRepositoryImpl) FindByID(id string) (*models.SubcontractAgreement, error) {
	var agreement models.SubcontractAgreement
	err := r.db.First(&agreement, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgreementNotFound
		}
		return nil, err
	}
	return &agreement, nil
}

func (r *AgreementRepositoryImpl) FindActiveByHelpRequest(helpRequestID string) (*models.SubcontractAgreement, error) {
	var agreement models.SubcontractAgreement
	err := r.db.
		Where("help_request_id = ? AND status = ?", helpRequestID, models.AgreementStatusActive).
		Order("created_at DESC").
		First(&agreement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgreementNotFound
		}
		return nil, err
	}
	return &agreement, nil
}

func (r *AgreementRepositoryImpl) UpdateFields(agreementID string, fields map[string]interface{}) error {
	result := r.db.Model(&models.SubcontractAgreement{}).Where("id = ?", agreementID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAgreementNotFound
	}
	return nil
}
