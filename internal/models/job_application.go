package models

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending              ApplicationStatus = "pending"
	ApplicationStatusCounterOfferSent     ApplicationStatus = "counter_offer_sent"
	ApplicationStatusCounterOfferAccepted ApplicationStatus = "counter_offer_accepted"
	ApplicationStatusAccepted             ApplicationStatus = "accepted"
	ApplicationStatusDeclined             ApplicationStatus = "declined"
)

// CounterOffer - последнее контрпредложение любой из сторон.
// Nil означает, что контрпредложения нет ("none" в терминах offer-union).
type CounterOffer struct {
	PayAmount        float64   `json:"pay_amount"`
	PaymentTerms     string    `json:"payment_terms"`
	UpfrontAmount    float64   `json:"upfront_amount"`
	CompletionAmount float64   `json:"completion_amount"`
	Notes            string    `json:"notes"`
	SentAt           time.Time `json:"sent_at"`
	FromPoster       bool      `json:"from_poster"`
}

// JobApplication - отклик вендора на заявку.
// Композитный уникальный индекс: один отклик на пару (заявка, вендор).
type JobApplication struct {
	BaseModel
	HelpRequestID string `gorm:"not null;uniqueIndex:idx_application_job_applicant" json:"help_request_id"`
	ApplicantID   string `gorm:"not null;uniqueIndex:idx_application_job_applicant;index" json:"applicant_id"`
	ApplicantName string `json:"applicant_name"`

	Status  ApplicationStatus `gorm:"type:varchar(30);default:'pending'" json:"status"`
	Message string            `json:"message"`

	CounterOffer *CounterOffer `gorm:"embedded;embeddedPrefix:counter_" json:"counter_offer,omitempty"`

	FinalAgreedAmount     *float64 `json:"final_agreed_amount"`
	FinalPaymentTerms     string   `json:"final_payment_terms"`
	FinalUpfrontAmount    float64  `json:"final_upfront_amount"`
	FinalCompletionAmount float64  `json:"final_completion_amount"`

	Version int `gorm:"default:1" json:"version"`
}

// IsTerminal - accepted и declined являются конечными состояниями
func (a *JobApplication) IsTerminal() bool {
	return a.Status == ApplicationStatusAccepted || a.Status == ApplicationStatusDeclined
}

// HasCounterAmount - есть контрпредложение с числовой суммой
func (a *JobApplication) HasCounterAmount() bool {
	return a.CounterOffer != nil && a.CounterOffer.PayAmount > 0
}
