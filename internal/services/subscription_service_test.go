package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorcover_backend/internal/models"
	"vendorcover_backend/pkg/apperrors"
)

var accessNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestHasActiveAccessAt(t *testing.T) {
	t.Parallel()

	future := accessNow.Add(24 * time.Hour)
	past := accessNow.Add(-time.Minute)

	tests := []struct {
		name string
		user *models.User
		want bool
	}{
		{name: "nil user", user: nil, want: false},
		{
			name: "admin всегда с доступом",
			user: &models.User{Role: models.UserRoleAdmin},
			want: true,
		},
		{
			name: "owner всегда с доступом",
			user: &models.User{Role: models.UserRoleOwner},
			want: true,
		},
		{
			name: "бессрочный admin-грант",
			user: &models.User{SubscriptionGrantedByAdmin: true},
			want: true,
		},
		{
			name: "admin-грант до будущей даты",
			user: &models.User{SubscriptionGrantedByAdmin: true, SubscriptionEndDate: &future},
			want: true,
		},
		{
			name: "истекший admin-грант",
			user: &models.User{SubscriptionGrantedByAdmin: true, SubscriptionEndDate: &past},
			want: false,
		},
		{
			// Граница: дата окончания ровно сейчас - доступа уже нет
			name: "admin-грант истекает ровно сейчас",
			user: &models.User{SubscriptionGrantedByAdmin: true, SubscriptionEndDate: &accessNow},
			want: false,
		},
		{
			name: "активная Stripe-подписка",
			user: &models.User{SubscriptionStatus: models.SubscriptionStatusActive},
			want: true,
		},
		{
			name: "триальный период",
			user: &models.User{SubscriptionStatus: models.SubscriptionStatusTrialing},
			want: true,
		},
		{
			name: "истекшая подписка",
			user: &models.User{SubscriptionStatus: models.SubscriptionStatusExpired},
			want: false,
		},
		{
			// Вебхук мог не успеть: подписка создана, статус еще не доставлен
			name: "fallback по stripe_subscription_id",
			user: &models.User{StripeSubscriptionID: "sub_123"},
			want: true,
		},
		{
			name: "без подписки",
			user: &models.User{},
			want: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, HasActiveAccessAt(tt.user, accessNow))
		})
	}
}

func TestIsStripeSubscription(t *testing.T) {
	t.Parallel()

	assert.True(t, IsStripeSubscription(&models.User{StripeCustomerID: "cus_1"}))
	assert.False(t, IsStripeSubscription(&models.User{}))
	// Admin-грант перекрывает Stripe-управление
	assert.False(t, IsStripeSubscription(&models.User{
		StripeCustomerID:           "cus_1",
		SubscriptionGrantedByAdmin: true,
	}))
}

func TestSubscriptionService_GrantAndRevoke(t *testing.T) {
	t.Parallel()

	userRepo := newFakeUserRepo()
	require.NoError(t, userRepo.Create(&models.User{
		BaseModel: models.BaseModel{ID: "user-1"},
		Email:     "user-1@test.com",
	}))
	svc := NewSubscriptionService(userRepo)

	// Обычная роль не может выдавать гранты
	err := svc.Grant(context.Background(), models.UserRoleUser, "user-1", 30)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	require.NoError(t, svc.Grant(context.Background(), models.UserRoleAdmin, "user-1", 30))

	user, err := userRepo.FindByID("user-1")
	require.NoError(t, err)
	assert.True(t, user.SubscriptionGrantedByAdmin)
	assert.Equal(t, models.SubscriptionStatusActive, user.SubscriptionStatus)
	require.NotNil(t, user.SubscriptionEndDate)
	assert.True(t, user.SubscriptionEndDate.After(time.Now()))

	ok, err := svc.HasActiveAccess(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Revoke(context.Background(), models.UserRoleOwner, "user-1"))

	user, err = userRepo.FindByID("user-1")
	require.NoError(t, err)
	assert.False(t, user.SubscriptionGrantedByAdmin)
	assert.Nil(t, user.SubscriptionEndDate)

	assert.ErrorIs(t, svc.RequireActiveAccess(context.Background(), "user-1"), apperrors.ErrSubscriptionRequired)
}

// TestSubscriptionService_Status - статус различает Stripe-подписку
// и ручной admin-грант
func TestSubscriptionService_Status(t *testing.T) {
	t.Parallel()

	userRepo := newFakeUserRepo()
	require.NoError(t, userRepo.Create(&models.User{
		BaseModel:            models.BaseModel{ID: "stripe-user"},
		SubscriptionStatus:   models.SubscriptionStatusActive,
		StripeCustomerID:     "cus_1",
		StripeSubscriptionID: "sub_1",
	}))
	require.NoError(t, userRepo.Create(&models.User{
		BaseModel:                  models.BaseModel{ID: "granted-user"},
		SubscriptionStatus:         models.SubscriptionStatusActive,
		SubscriptionGrantedByAdmin: true,
	}))
	svc := NewSubscriptionService(userRepo)

	status, err := svc.Status(context.Background(), "stripe-user")
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.True(t, status.IsStripeSubscription)
	assert.Equal(t, models.SubscriptionStatusActive, status.SubscriptionStatus)
	assert.False(t, status.GrantedByAdmin)

	status, err = svc.Status(context.Background(), "granted-user")
	require.NoError(t, err)
	assert.True(t, status.Active)
	assert.False(t, status.IsStripeSubscription, "ручной грант не ведет в биллинг-портал")
	assert.True(t, status.GrantedByAdmin)
}

func TestSubscriptionService_RevokeNotAdminGranted(t *testing.T) {
	t.Parallel()

	userRepo := newFakeUserRepo()
	require.NoError(t, userRepo.Create(&models.User{
		BaseModel:          models.BaseModel{ID: "stripe-user"},
		SubscriptionStatus: models.SubscriptionStatusActive,
		StripeCustomerID:   "cus_1",
	}))
	svc := NewSubscriptionService(userRepo)

	// Stripe-подписку отозвать вручную нельзя
	err := svc.Revoke(context.Background(), models.UserRoleAdmin, "stripe-user")
	assert.Error(t, err)
}
