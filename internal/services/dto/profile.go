package dto

import "time"

// SubmitProfileRequest - подача профиля вендора на модерацию
type SubmitProfileRequest struct {
	CompanyName  string   `json:"company_name" binding:"required"`
	ServiceTypes []string `json:"service_types" binding:"required,min=1"`
	City         string   `json:"city" binding:"required"`
	State        string   `json:"state"`
	Bio          string   `json:"bio"`
}

// ReviewProfileRequest - решение модератора по профилю
type ReviewProfileRequest struct {
	Approve         bool   `json:"approve"`
	RejectionReason string `json:"rejection_reason"`
}

// GrantSubscriptionRequest - админ выдает подписку вручную
type GrantSubscriptionRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Days   int    `json:"days" binding:"required,gt=0"`
}

// RevokeSubscriptionRequest - админ отзывает выданную вручную подписку
type RevokeSubscriptionRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// SubscriptionStatusResponse - статус доступа текущего пользователя.
// IsStripeSubscription определяет, показывать ли клиенту биллинг-портал.
type SubscriptionStatusResponse struct {
	Active               bool       `json:"active"`
	IsStripeSubscription bool       `json:"is_stripe_subscription"`
	SubscriptionStatus   string     `json:"subscription_status"`
	GrantedByAdmin       bool       `json:"granted_by_admin"`
	EndDate              *time.Time `json:"end_date,omitempty"`
}
