package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"

	"vendorcover_backend/internal/ai"
	"vendorcover_backend/internal/auth"
	"vendorcover_backend/internal/logger"
	"vendorcover_backend/internal/models"
	"vendorcover_backend/internal/repositories"
	"vendorcover_backend/internal/services/dto"
	"vendorcover_backend/pkg/apperrors"
)

// ProfileService - жизненный цикл профиля вендора: подача, модерация, suspend.
type ProfileService interface {
	Submit(ctx context.Context, userID string, req *dto.SubmitProfileRequest) (*models.VendorProfile, error)
	GetByUserID(ctx context.Context, userID string) (*models.VendorProfile, error)
	ListPending(ctx context.Context, moderatorRole models.UserRole, limit, offset int) ([]models.VendorProfile, int64, error)
	Review(ctx context.Context, moderatorRole models.UserRole, profileUserID string, req *dto.ReviewProfileRequest) error
	SetSuspended(ctx context.Context, moderatorRole models.UserRole, profileUserID string, suspended bool) error
}

type profileService struct {
	profileRepo     repositories.VendorProfileRepository
	userRepo        repositories.UserRepository
	riskAssessor    ai.RiskAssessor
	notificationSvc NotificationService
}

func NewProfileService(
	profileRepo repositories.VendorProfileRepository,
	userRepo repositories.UserRepository,
	riskAssessor ai.RiskAssessor,
	notificationSvc NotificationService,
) ProfileService {
	return &profileService{
		profileRepo:     profileRepo,
		userRepo:        userRepo,
		riskAssessor:    riskAssessor,
		notificationSvc: notificationSvc,
	}
}

func (s *profileService) Submit(ctx context.Context, userID string, req *dto.SubmitProfileRequest) (*models.VendorProfile, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, apperrors.ErrNotFound(err)
	}

	serviceTypes, err := json.Marshal(req.ServiceTypes)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	existing, err := s.profileRepo.FindByUserID(userID)
	if err != nil && !errors.Is(err, repositories.ErrProfileNotFound) {
		return nil, apperrors.InternalError(err)
	}

	if existing != nil {
		// Повторная подача: сбрасываем модерацию и результат AI-оценки
		existing.CompanyName = req.CompanyName
		existing.ServiceTypes = datatypes.JSON(serviceTypes)
		existing.City = req.City
		existing.State = req.State
		existing.Bio = req.Bio
		existing.ApprovalStatus = models.ApprovalStatusPending
		existing.RejectionReason = ""
		existing.RiskScore = nil
		existing.RiskSummary = ""
		if err := s.profileRepo.Update(existing); err != nil {
			return nil, apperrors.InternalError(err)
		}
		s.assessRisk(existing)
		return existing, nil
	}

	profile := &models.VendorProfile{
		UserID:         userID,
		CompanyName:    req.CompanyName,
		ServiceTypes:   datatypes.JSON(serviceTypes),
		City:           req.City,
		State:          req.State,
		Bio:            req.Bio,
		ApprovalStatus: models.ApprovalStatusPending,
	}
	if err := s.profileRepo.Create(profile); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.assessRisk(profile)
	return profile, nil
}

// assessRisk запускает AI-оценку в фоне. Best effort: сбой ассессора
// не влияет ни на подачу, ни на модерацию.
func (s *profileService) assessRisk(profile *models.VendorProfile) {
	if s.riskAssessor == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		assessment, err := s.riskAssessor.Assess(ctx, profile)
		if err != nil {
			logger.WithError(err).Warn("risk assessment failed", "profile_id", profile.ID)
			return
		}
		err = s.profileRepo.UpdateFields(profile.ID, map[string]interface{}{
			"risk_score":   assessment.Score,
			"risk_summary": assessment.Summary,
		})
		if err != nil {
			logger.WithError(err).Warn("failed to store risk assessment", "profile_id", profile.ID)
		}
	}()
}

func (s *profileService) GetByUserID(ctx context.Context, userID string) (*models.VendorProfile, error) {
	profile, err := s.profileRepo.FindByUserID(userID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	return profile, nil
}

func (s *profileService) ListPending(ctx context.Context, moderatorRole models.UserRole, limit, offset int) ([]models.VendorProfile, int64, error) {
	if !auth.CanModerateProfiles(moderatorRole) {
		return nil, 0, apperrors.ErrInsufficientPermissions
	}
	return s.profileRepo.ListByApprovalStatus(models.ApprovalStatusPending, limit, offset)
}

func (s *profileService) Review(ctx context.Context, moderatorRole models.UserRole, profileUserID string, req *dto.ReviewProfileRequest) error {
	if !auth.CanModerateProfiles(moderatorRole) {
		return apperrors.ErrInsufficientPermissions
	}
	profile, err := s.profileRepo.FindByUserID(profileUserID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	if profile.ApprovalStatus != models.ApprovalStatusPending {
		return apperrors.ErrInvalidStatus("profile", "profile is not pending review")
	}

	fields := map[string]interface{}{}
	if req.Approve {
		fields["approval_status"] = models.ApprovalStatusApproved
		fields["rejection_reason"] = ""
	} else {
		fields["approval_status"] = models.ApprovalStatusRejected
		fields["rejection_reason"] = req.RejectionReason
	}
	if err := s.profileRepo.UpdateFields(profile.ID, fields); err != nil {
		return apperrors.InternalError(err)
	}

	logger.TransitionLog("vendor_profile", profile.ID,
		string(models.ApprovalStatusPending), string(fields["approval_status"].(models.ApprovalStatus)), profileUserID)

	_ = s.notificationSvc.NotifyProfileReviewed(ctx, profileUserID, req.Approve, req.RejectionReason)
	return nil
}

func (s *profileService) SetSuspended(ctx context.Context, moderatorRole models.UserRole, profileUserID string, suspended bool) error {
	if !auth.CanModerateProfiles(moderatorRole) {
		return apperrors.ErrInsufficientPermissions
	}
	profile, err := s.profileRepo.FindByUserID(profileUserID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	return s.profileRepo.UpdateFields(profile.ID, map[string]interface{}{
		"suspended": suspended,
	})
}
