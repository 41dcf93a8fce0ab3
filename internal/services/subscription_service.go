package services

import (
	"context"
	"time"

	"vendorcover_backend/internal/auth"
	"vendorcover_backend/internal/logger"
	"vendorcover_backend/internal/models"
	"vendorcover_backend/internal/repositories"
	"vendorcover_backend/internal/services/dto"
	"vendorcover_backend/pkg/apperrors"
)

// SubscriptionService - гейт доступа по подписке.
// Источником истины по Stripe-статусам является внешний биллинг-вебхук,
// здесь только чтение этих полей плюс ручные admin-гранты.
type SubscriptionService interface {
	// HasActiveAccess проверяет доступ пользователя на текущий момент
	HasActiveAccess(ctx context.Context, userID string) (bool, error)
	// RequireActiveAccess возвращает доменную ошибку, если доступа нет
	RequireActiveAccess(ctx context.Context, userID string) error
	// Status - полный статус для клиента, включая признак Stripe-подписки
	Status(ctx context.Context, userID string) (*dto.SubscriptionStatusResponse, error)
	Grant(ctx context.Context, adminRole models.UserRole, userID string, days int) error
	Revoke(ctx context.Context, adminRole models.UserRole, userID string) error
}

type subscriptionService struct {
	userRepo repositories.UserRepository
	now      func() time.Time
}

func NewSubscriptionService(userRepo repositories.UserRepository) SubscriptionService {
	return &subscriptionService{
		userRepo: userRepo,
		now:      time.Now,
	}
}

// HasActiveAccessAt - чистое правило доступа, время передается явно.
// Порядок проверок: привилегированная роль -> admin-грант -> Stripe-статусы.
func HasActiveAccessAt(user *models.User, now time.Time) bool {
	if user == nil {
		return false
	}
	if user.IsPrivileged() {
		return true
	}

	if user.SubscriptionGrantedByAdmin {
		// Грант без даты окончания бессрочный
		if user.SubscriptionEndDate == nil {
			return true
		}
		return user.SubscriptionEndDate.After(now)
	}

	switch user.SubscriptionStatus {
	case models.SubscriptionStatusActive, models.SubscriptionStatusTrialing:
		return true
	}

	// Fallback: биллинг мог еще не доставить статус, но подписка уже создана
	return user.StripeSubscriptionID != ""
}

// IsStripeSubscription - подписка управляется Stripe, а не админом
func IsStripeSubscription(user *models.User) bool {
	return user.StripeCustomerID != "" && !user.SubscriptionGrantedByAdmin
}

func (s *subscriptionService) HasActiveAccess(ctx context.Context, userID string) (bool, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return false, apperrors.ErrNotFound(err)
	}
	return HasActiveAccessAt(user, s.now()), nil
}

func (s *subscriptionService) Status(ctx context.Context, userID string) (*dto.SubscriptionStatusResponse, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	return &dto.SubscriptionStatusResponse{
		Active:               HasActiveAccessAt(user, s.now()),
		IsStripeSubscription: IsStripeSubscription(user),
		SubscriptionStatus:   user.SubscriptionStatus,
		GrantedByAdmin:       user.SubscriptionGrantedByAdmin,
		EndDate:              user.SubscriptionEndDate,
	}, nil
}

func (s *subscriptionService) RequireActiveAccess(ctx context.Context, userID string) error {
	ok, err := s.HasActiveAccess(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrSubscriptionRequired
	}
	return nil
}

func (s *subscriptionService) Grant(ctx context.Context, adminRole models.UserRole, userID string, days int) error {
	if !auth.IsPrivilegedRole(adminRole) {
		return apperrors.ErrInsufficientPermissions
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return apperrors.ErrNotFound(err)
	}

	endDate := s.now().AddDate(0, 0, days)
	err := s.userRepo.UpdateFields(userID, map[string]interface{}{
		"subscription_granted_by_admin": true,
		"subscription_status":           models.SubscriptionStatusActive,
		"subscription_end_date":         endDate,
	})
	if err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "subscription granted", "user_id", userID, "days", days)
	return nil
}

func (s *subscriptionService) Revoke(ctx context.Context, adminRole models.UserRole, userID string) error {
	if !auth.IsPrivilegedRole(adminRole) {
		return apperrors.ErrInsufficientPermissions
	}
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	if !user.SubscriptionGrantedByAdmin {
		return apperrors.ErrInvalidOperation("subscription", "subscription is not admin-granted")
	}

	err = s.userRepo.UpdateFields(userID, map[string]interface{}{
		"subscription_granted_by_admin": false,
		"subscription_status":           models.SubscriptionStatusNone,
		"subscription_end_date":         nil,
	})
	if err != nil {
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "subscription revoked", "user_id", userID)
	return nil
}
