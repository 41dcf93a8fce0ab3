package repositories

import (
	"errors"
	"time"

	"vendorcover_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrJobNotFound = errors.New("help request not found")

	// ErrVersionConflict - условное обновление не прошло: запись изменена
	// другой сессией (или ожидаемая версия устарела)
	ErrVersionConflict = errors.New("version conflict")
)

type HelpRequestRepository interface {
	Create(job *models.HelpRequest) error
	FindByID(id string) (*models.HelpRequest, error)
	ListOpen(limit, offset int) ([]models.HelpRequest, int64, error)
	ListByRequester(requesterID string) ([]models.HelpRequest, error)
	ListByAcceptedVendor(vendorID string) ([]models.HelpRequest, error)
	UpdateFields(jobID string, fields map[string]interface{}) error
	// UpdateWithVersion выполняет условную запись: WHERE id = ? AND version = ?.
	// Инкремент версии выполняется здесь же; ноль затронутых строк - конфликт.
	UpdateWithVersion(jobID string, expectedVersion int, fields map[string]interface{}) error
	CancelExpiredOpen(cutoff time.Time) (int64, error)
}

type HelpRequestRepositoryImpl struct {
	db *gorm.DB
}

func NewHelpRequestRepository(db *gorm.DB) HelpRequestRepository {
	return &HelpRequestRepositoryImpl{db: db}
}

func (r *HelpRequestRepositoryImpl) Create(job *models.HelpRequest) error {
	return r.db.Create(job).Error
}

func (r *HelpRequestRepositoryImpl) FindByID(id string) (*models.HelpRequest, error) {
	var job models.HelpRequest
	err := r.db.First(&job, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (r *HelpRequestRepositoryImpl) ListOpen(limit, offset int) ([]models.HelpRequest, int64, error) {
	var jobs []models.HelpRequest
	var total int64

	query := r.db.Model(&models.HelpRequest{}).
		Where("status = ? AND paused = ?", models.JobStatusOpen, false)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("event_date ASC NULLS LAST").Limit(limit).Offset(offset).Find(&jobs).Error
	return jobs, total, err
}

func (r *HelpRequestRepositoryImpl) ListByRequester(requesterID string) ([]models.HelpRequest, error) {
	var jobs []models.HelpRequest
	err := r.db.Where("requester_id = ?", requesterID).Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

func (r *HelpRequestRepositoryImpl) ListByAcceptedVendor(vendorID string) ([]models.HelpRequest, error) {
	var jobs []models.HelpRequest
	err := r.db.Where("accepted_vendor_id = ?", vendorID).Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

func (r *HelpRequestRepositoryImpl) UpdateFields(jobID string, fields map[string]interface{}) error {
	result := r.db.Model(&models.HelpRequest{}).Where("id = ?", jobID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *HelpRequestRepositoryImpl) UpdateWithVersion(jobID string, expectedVersion int, fields map[string]interface{}) error {
	fields["version"] = expectedVersion + 1

	result := r.db.Model(&models.HelpRequest{}).
		Where("id = ? AND version = ?", jobID, expectedVersion).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *HelpRequestRepositoryImpl) CancelExpiredOpen(cutoff time.Time) (int64, error) {
	result := r.db.Exec(`
		UPDATE help_requests
		SET status = 'cancelled', updated_at = NOW(), version = version + 1
		WHERE status = 'open'
		AND event_date IS NOT NULL
		AND event_date < ?
	`, cutoff)
	return result.RowsAffected, result.Error
}
