package models

// Review - отзыв одной стороны о другой по завершенной заявке
type Review struct {
	BaseModel
	HelpRequestID string `gorm:"not null;uniqueIndex:idx_review_job_reviewer" json:"help_request_id"`
	ReviewerID    string `gorm:"not null;uniqueIndex:idx_review_job_reviewer" json:"reviewer_id"`
	RevieweeID    string `gorm:"not null;index" json:"reviewee_id"`
	Rating        int    `gorm:"not null" json:"rating"` // 1..5
	Comment       string `json:"comment"`
}
