package dto

import (
	"time"

	"vendorcover_backend/internal/algorithms"
	"vendorcover_backend/internal/models"
)

// CreateJobRequest - создание заявки на работу
type CreateJobRequest struct {
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description"`
	ServiceType   string     `json:"service_type" binding:"required"`
	HelpType      string     `json:"help_type"`
	EventDate     *time.Time `json:"event_date"`
	City          string     `json:"city" binding:"required"`
	State         string     `json:"state"`
	PayAmount     float64    `json:"pay_amount" binding:"required,gt=0"`
	PaymentType   string     `json:"payment_type" binding:"omitempty,oneof=hourly flat"`
	PaymentMethod string     `json:"payment_method"`
}

// UpdateJobRequest - частичное обновление open-заявки владельцем
type UpdateJobRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	EventDate     *time.Time `json:"event_date"`
	City          *string    `json:"city"`
	State         *string    `json:"state"`
	PayAmount     *float64   `json:"pay_amount" binding:"omitempty,gt=0"`
	PaymentMethod *string    `json:"payment_method"`
}

// UpdateOperationalStatusRequest - смена рабочего под-статуса нанятым вендором
type UpdateOperationalStatusRequest struct {
	JobStatus models.OperationalStatus `json:"job_status" binding:"required,oneof=pending in_route in_progress done"`
}

// AddSharedDocumentRequest - добавление документа в shared_documents
type AddSharedDocumentRequest struct {
	URL  string `json:"url" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// JobResponse - заявка с вычисленным отображаемым статусом для текущего пользователя
type JobResponse struct {
	models.HelpRequest
	DisplayStatus  algorithms.StatusInfo `json:"display_status"`
	ActionRequired bool                  `json:"action_required"`
	IsUrgent       bool                  `json:"is_urgent"`
}

// JobListResponse - страница заявок
type JobListResponse struct {
	Jobs  []JobResponse `json:"jobs"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
