package models

import (
	"time"

	"gorm.io/datatypes"
)

// Типы уведомлений
const (
	NotificationTypeNewApplication       = "new_application"
	NotificationTypeCounterOffer         = "counter_offer"
	NotificationTypeCounterOfferAccepted = "counter_offer_accepted"
	NotificationTypeHired                = "hired"
	NotificationTypeNotSelected          = "not_selected"
	NotificationTypeDeclined             = "application_declined"
	NotificationTypeJobCancelled         = "job_cancelled"
	NotificationTypeAgreementSigned      = "agreement_signed"
	NotificationTypePaymentConfirmed     = "payment_confirmed"
	NotificationTypeProfileReviewed      = "profile_reviewed"
)

type Notification struct {
	BaseModel
	UserID      string         `gorm:"not null;index" json:"user_id"`
	Type        string         `gorm:"not null" json:"type"`
	Title       string         `gorm:"not null" json:"title"`
	Message     string         `json:"message"`
	ReferenceID string         `gorm:"index" json:"reference_id"` // id заявки/отклика/соглашения
	Data        datatypes.JSON `gorm:"type:jsonb" json:"data"`
	IsRead      bool           `gorm:"default:false" json:"is_read"`
	ReadAt      *time.Time     `json:"read_at"`
}
