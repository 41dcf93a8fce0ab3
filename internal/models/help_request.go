package models

import (
	"time"

	"gorm.io/datatypes"
)

type JobStatus string

const (
	JobStatusOpen      JobStatus = "open"
	JobStatusFilled    JobStatus = "filled"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"
)

// OperationalStatus - рабочий под-статус нанятого вендора
type OperationalStatus string

const (
	OperationalPending    OperationalStatus = "pending"
	OperationalInRoute    OperationalStatus = "in_route"
	OperationalInProgress OperationalStatus = "in_progress"
	OperationalDone       OperationalStatus = "done"
)

const (
	PaymentTypeHourly = "hourly"
	PaymentTypeFlat   = "flat"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// SharedDocument - элемент списка shared_documents (append-only)
type SharedDocument struct {
	URL        string    `json:"url"`
	Name       string    `json:"name"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// HelpRequest - опубликованная заявка на работу (Job)
type HelpRequest struct {
	BaseModel
	RequesterID string `gorm:"not null;index" json:"requester_id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	ServiceType string `json:"service_type"`
	HelpType    string `json:"help_type"`

	EventDate *time.Time `json:"event_date"`
	City      string     `json:"city"`
	State     string     `json:"state"`

	PayAmount     float64 `json:"pay_amount"`
	PaymentType   string  `gorm:"type:varchar(10);default:'flat'" json:"payment_type"`
	PaymentMethod string  `json:"payment_method"`

	Status JobStatus `gorm:"type:varchar(20);default:'open';index" json:"status"`
	Paused bool      `gorm:"default:false" json:"paused"`

	AcceptedVendorID   *string `json:"accepted_vendor_id"`
	AcceptedVendorName string  `json:"accepted_vendor_name"`

	JobStatus     OperationalStatus `gorm:"type:varchar(20);default:'pending'" json:"job_status"`
	PaymentStatus string            `gorm:"type:varchar(10);default:'pending'" json:"payment_status"`

	SharedDocuments datatypes.JSON `gorm:"type:jsonb" json:"shared_documents"`

	// Optimistic lock: каждая мутация выполняется условно по версии
	Version int `gorm:"default:1" json:"version"`
}

func (HelpRequest) TableName() string {
	return "help_requests"
}
