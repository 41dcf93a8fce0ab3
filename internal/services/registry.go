package services

import (
	"vendorcover_backend/internal/email"
	"vendorcover_backend/internal/storage"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         AuthService
	ProfileService      ProfileService
	JobService          JobService
	ApplicationService  ApplicationService
	AgreementService    AgreementService
	SubscriptionService SubscriptionService
	NotificationService NotificationService
	ChatService         ChatService
	ReviewService       ReviewService
	SupportService      SupportService
	EmailService        email.Provider
	Storage             storage.Storage
}
