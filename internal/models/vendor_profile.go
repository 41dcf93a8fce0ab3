package models

import "gorm.io/datatypes"

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

type VendorProfile struct {
	BaseModel
	UserID       string         `gorm:"not null;uniqueIndex" json:"user_id"`
	CompanyName  string         `json:"company_name"`
	ServiceTypes datatypes.JSON `gorm:"type:jsonb" json:"service_types"` // ["catering", "security", ...]
	City         string         `json:"city"`
	State        string         `json:"state"`
	Bio          string         `json:"bio"`

	ApprovalStatus  ApprovalStatus `gorm:"type:varchar(20);default:'pending'" json:"approval_status"`
	RejectionReason string         `json:"rejection_reason"`
	Suspended       bool           `gorm:"default:false" json:"suspended"`

	// Результат AI-оценки при подаче профиля (best effort, не блокирует модерацию)
	RiskScore   *float64 `json:"risk_score"`
	RiskSummary string   `json:"risk_summary"`
}

// CanWorkJobs - профиль допущен к откликам на заявки
func (p *VendorProfile) CanWorkJobs() bool {
	return p.ApprovalStatus == ApprovalStatusApproved && !p.Suspended
}
