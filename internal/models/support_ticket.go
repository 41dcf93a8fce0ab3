package models

type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

type SupportTicket struct {
	BaseModel
	UserID  string       `gorm:"not null;index" json:"user_id"`
	Subject string       `gorm:"not null" json:"subject"`
	Message string       `json:"message"`
	Status  TicketStatus `gorm:"type:varchar(20);default:'open'" json:"status"`
}
