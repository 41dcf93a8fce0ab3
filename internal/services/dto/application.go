package dto

import "vendorcover_backend/internal/models"

// ApplyRequest - отклик вендора на открытую заявку
type ApplyRequest struct {
	Message string `json:"message"`
}

// CounterOfferRequest - контрпредложение любой из сторон.
// Сумма обязательна и строго положительна, payment_terms из списка поддерживаемых.
type CounterOfferRequest struct {
	PayAmount    float64 `json:"pay_amount" binding:"required,gt=0"`
	PaymentTerms string  `json:"payment_terms" binding:"required,payment_terms"`
	Notes        string  `json:"notes"`
}

// ApplicationResponse - отклик с именем вендора
type ApplicationResponse struct {
	models.JobApplication
	JobTitle string `json:"job_title,omitempty"`
}

// HireResult - итог операции найма: принятый отклик и затронутые соседи
type HireResult struct {
	Application      *models.JobApplication       `json:"application"`
	Agreement        *models.SubcontractAgreement `json:"agreement"`
	DeclinedSiblings int                          `json:"declined_siblings"`
}
