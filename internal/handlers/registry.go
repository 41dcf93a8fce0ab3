package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	ProfileHandler      *ProfileHandler
	JobHandler          *JobHandler
	ApplicationHandler  *ApplicationHandler
	AgreementHandler    *AgreementHandler
	SubscriptionHandler *SubscriptionHandler
	NotificationHandler *NotificationHandler
	ChatHandler         *ChatHandler
	ReviewHandler       *ReviewHandler
	SupportHandler      *SupportHandler
}
