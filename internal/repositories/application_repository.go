package repositories

import (
	"errors"
	"strings"

	"vendorcover_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = errors.New("job application not found")
	ErrApplicationExists   = errors.New("application already exists for this job and applicant")
)

type ApplicationRepository interface {
	Create(app *models.JobApplication) error
	FindByID(id string) (*models.JobApplication, error)
	FindByJobAndApplicant(helpRequestID, applicantID string) (*models.JobApplication, error)
	ListByJob(helpRequestID string) ([]models.JobApplication, error)
	ListByApplicant(applicantID string) ([]models.JobApplication, error)
	// ListSiblings возвращает все отклики заявки, кроме указанного
	ListSiblings(helpRequestID, excludeID string) ([]models.JobApplication, error)
	UpdateFields(appID string, fields map[string]interface{}) error
	UpdateWithVersion(appID string, expectedVersion int, fields map[string]interface{}) error
	Delete(appID string) error
}

type ApplicationRepositoryImpl struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &ApplicationRepositoryImpl{db: db}
}

func (r *ApplicationRepositoryImpl) Create(app *models.JobApplication) error {
	err := r.db.Create(app).Error
	if err != nil {
		// Композитный уникальный индекс (help_request_id, applicant_id)
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return ErrApplicationExists
		}
		return err
	}
	return nil
}

func (r *ApplicationRepositoryImpl) FindByID(id string) (*models.JobApplication, error) {
	var app models.JobApplication
	err := r.db.First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) FindByJobAndApplicant(helpRequestID, applicantID string) (*models.JobApplication, error) {
	var app models.JobApplication
	err := r.db.First(&app, "help_request_id = ? AND applicant_id = ?", helpRequestID, applicantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) ListByJob(helpRequestID string) ([]models.JobApplication, error) {
	var apps []models.JobApplication
	err := r.db.Where("help_request_id = ?", helpRequestID).Order("created_at ASC").Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepositoryImpl) ListByApplicant(applicantID string) ([]models.JobApplication, error) {
	var apps []models.JobApplication
	err := r.db.Where("applicant_id = ?", applicantID).Order("created_at DESC").Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepositoryImpl) ListSiblings(helpRequestID, excludeID string) ([]models.JobApplication, error) {
	var apps []models.JobApplication
	err := r.db.Where("help_request_id = ? AND id <> ?", helpRequestID, excludeID).Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepositoryImpl) UpdateFields(appID string, fields map[string]interface{}) error {
	result := r.db.Model(&models.JobApplication{}).Where("id = ?", appID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepositoryImpl) UpdateWithVersion(appID string, expectedVersion int, fields map[string]interface{}) error {
	fields["version"] = expectedVersion + 1

	result := r.db.Model(&models.JobApplication{}).
		Where("id = ? AND version = ?", appID, expectedVersion).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *ApplicationRepositoryImpl) Delete(appID string) error {
	result := r.db.Delete(&models.JobApplication{}, "id = ?", appID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}
