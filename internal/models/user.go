package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
	UserRoleOwner UserRole = "owner"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

// SubscriptionStatus значения, которые выставляет биллинг (Stripe-webhook вне этого сервиса)
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusExpired  = "expired"
	SubscriptionStatusNone     = ""
)

type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Name         string     `json:"name"`
	Role         UserRole   `gorm:"type:varchar(20);default:'user'" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);default:'active'" json:"status"`

	// Подписка: либо Stripe, либо admin-granted, либо trial
	SubscriptionStatus         string     `gorm:"type:varchar(20)" json:"subscription_status"`
	SubscriptionGrantedByAdmin bool       `gorm:"default:false" json:"subscription_granted_by_admin"`
	SubscriptionEndDate        *time.Time `json:"subscription_end_date"`
	StripeSubscriptionID       string     `json:"stripe_subscription_id"`
	StripeCustomerID           string     `json:"stripe_customer_id"`

	// Relations
	VendorProfile *VendorProfile `gorm:"foreignKey:UserID" json:"vendor_profile,omitempty"`
}

// IsPrivileged - admin и owner обходят ограничения подписки
func (u *User) IsPrivileged() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleOwner
}
