package repositories

import (
	"errors"

	"vendorcover_backend/internal/models"

	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("vendor profile not found")

type VendorProfileRepository interface {
	Create(profile *models.VendorProfile) error
	FindByUserID(userID string) (*models.VendorProfile, error)
	Update(profile *models.VendorProfile) error
	UpdateFields(profileID string, fields map[string]interface{}) error
	ListByApprovalStatus(status models.ApprovalStatus, limit, offset int) ([]models.VendorProfile, int64, error)
}

type VendorProfileRepositoryImpl struct {
	db *gorm.DB
}

func NewVendorProfileRepository(db *gorm.DB) VendorProfileRepository {
	return &VendorProfileRepositoryImpl{db: db}
}

func (r *VendorProfileRepositoryImpl) Create(profile *models.VendorProfile) error {
	return r.db.Create(profile).Error
}

func (r *VendorProfileRepositoryImpl) FindByUserID(userID string) (*models.VendorProfile, error) {
	var profile models.VendorProfile
	err := r.db.First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *VendorProfileRepositoryImpl) Update(profile *models.VendorProfile) error {
	return r.db.Save(profile).Error
}

func (r *VendorProfileRepositoryImpl) UpdateFields(profileID string, fields map[string]interface{}) error {
	result := r.db.Model(&models.VendorProfile{}).Where("id = ?", profileID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *VendorProfileRepositoryImpl) ListByApprovalStatus(status models.ApprovalStatus, limit, offset int) ([]models.VendorProfile, int64, error) {
	var profiles []models.VendorProfile
	var total int64

	query := r.db.Model(&models.VendorProfile{}).Where("approval_status = ?", status)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at ASC").Limit(limit).Offset(offset).Find(&profiles).Error
	return profiles, total, err
}
