package models

// ChatMessage - сообщение между сторонами заявки
type ChatMessage struct {
	BaseModel
	HelpRequestID string `gorm:"not null;index" json:"help_request_id"`
	SenderID      string `gorm:"not null" json:"sender_id"`
	RecipientID   string `gorm:"not null;index" json:"recipient_id"`
	Content       string `gorm:"not null" json:"content"`
	IsRead        bool   `gorm:"default:false" json:"is_read"`
}
