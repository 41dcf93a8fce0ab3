package dto

// SendMessageRequest - сообщение в чате по заявке
type SendMessageRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Content     string `json:"content" binding:"required,max=4000"`
}

// CreateReviewRequest - отзыв по завершенной заявке
type CreateReviewRequest struct {
	RevieweeID string `json:"reviewee_id" binding:"required"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Comment    string `json:"comment" binding:"max=2000"`
}

// CreateTicketRequest - обращение в поддержку
type CreateTicketRequest struct {
	Subject string `json:"subject" binding:"required,max=200"`
	Message string `json:"message" binding:"required"`
}

// PaginationQuery - общие query-параметры списков
type PaginationQuery struct {
	Page  int `form:"page,default=1" binding:"omitempty,min=1"`
	Limit int `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}
