package models

import "time"

type AgreementStatus string

const (
	AgreementStatusActive AgreementStatus = "active"
	AgreementStatusVoided AgreementStatus = "voided"
)

// SubcontractAgreement - двустороннее подтверждение, создаваемое при найме.
// Хранит снапшот условий на момент финализации.
type SubcontractAgreement struct {
	BaseModel
	HelpRequestID string `gorm:"not null;index" json:"help_request_id"`
	RequesterID   string `gorm:"not null" json:"requester_id"`
	VendorID      string `gorm:"not null" json:"vendor_id"`
	VendorName    string `json:"vendor_name"`

	// Снапшот условий
	JobTitle         string     `json:"job_title"`
	ServiceType      string     `json:"service_type"`
	EventDate        *time.Time `json:"event_date"`
	City             string     `json:"city"`
	State            string     `json:"state"`
	PayAmount        float64    `json:"pay_amount"`
	PaymentTerms     string     `json:"payment_terms"`
	UpfrontAmount    float64    `json:"upfront_amount"`
	CompletionAmount float64    `json:"completion_amount"`
	PaymentMethod    string     `json:"payment_method"`

	// Флаги подтверждения one-way: false -> true, обратного перехода нет
	RequesterConfirmed bool `gorm:"default:false" json:"requester_confirmed"`
	VendorConfirmed    bool `gorm:"default:false" json:"vendor_confirmed"`

	Status AgreementStatus `gorm:"type:varchar(20);default:'active'" json:"agreement_status"`
}

// BothConfirmed - производное значение, не хранится
func (a *SubcontractAgreement) BothConfirmed() bool {
	return a.RequesterConfirmed && a.VendorConfirmed
}
