package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"vendorcover_backend/internal/email"
	"vendorcover_backend/internal/logger"
	"vendorcover_backend/internal/models"
	"vendorcover_backend/internal/repositories"
)

// NotificationService - in-app уведомления с зеркалированием в email.
// Все методы best effort: ошибка логируется и не прерывает вызвавшую операцию.
type NotificationService interface {
	NotifyNewApplication(ctx context.Context, requesterID string, job *models.HelpRequest, applicantName string) error
	NotifyCounterOffer(ctx context.Context, recipientID string, job *models.HelpRequest, amount float64) error
	NotifyCounterOfferAccepted(ctx context.Context, recipientID string, job *models.HelpRequest) error
	NotifyHired(ctx context.Context, vendorID string, job *models.HelpRequest, amount float64) error
	NotifyNotSelected(ctx context.Context, vendorID string, job *models.HelpRequest) error
	NotifyDeclined(ctx context.Context, vendorID string, job *models.HelpRequest) error
	NotifyJobCancelled(ctx context.Context, vendorID string, job *models.HelpRequest) error
	NotifyAgreementSigned(ctx context.Context, recipientID string, agreement *models.SubcontractAgreement) error
	NotifyPaymentConfirmed(ctx context.Context, vendorID string, job *models.HelpRequest) error
	NotifyProfileReviewed(ctx context.Context, userID string, approved bool, reason string) error

	List(ctx context.Context, userID string, limit, offset int) ([]models.Notification, int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) error
	MarkAllAsRead(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	emailProvider    email.Provider
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	emailProvider email.Provider,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		emailProvider:    emailProvider,
	}
}

func (s *notificationService) NotifyNewApplication(ctx context.Context, requesterID string, job *models.HelpRequest, applicantName string) error {
	return s.create(ctx, &models.Notification{
		UserID:      requesterID,
		Type:        models.NotificationTypeNewApplication,
		Title:       "New Application",
		Message:     fmt.Sprintf("%s applied to \"%s\"", applicantName, job.Title),
		ReferenceID: job.ID,
	}, nil)
}

func (s *notificationService) NotifyCounterOffer(ctx context.Context, recipientID string, job *models.HelpRequest, amount float64) error {
	return s.create(ctx, &models.Notification{
		UserID:      recipientID,
		Type:        models.NotificationTypeCounterOffer,
		Title:       "Counter Offer",
		Message:     fmt.Sprintf("You received a counter offer of $%.2f on \"%s\"", amount, job.Title),
		ReferenceID: job.ID,
		Data:        mustJSON(map[string]interface{}{"pay_amount": amount}),
	}, func(to string) *email.Email {
		return email.CounterOfferEmail(to, job.Title, amount)
	})
}

func (s *notificationService) NotifyCounterOfferAccepted(ctx context.Context, recipientID string, job *models.HelpRequest) error {
	return s.create(ctx, &models.Notification{
		UserID:      recipientID,
		Type:        models.NotificationTypeCounterOfferAccepted,
		Title:       "Counter Offer Accepted",
		Message:     fmt.Sprintf("Your counter offer on \"%s\" was accepted", job.Title),
		ReferenceID: job.ID,
	}, nil)
}

func (s *notificationService) NotifyHired(ctx context.Context, vendorID string, job *models.HelpRequest, amount float64) error {
	return s.create(ctx, &models.Notification{
		UserID:      vendorID,
		Type:        models.NotificationTypeHired,
		Title:       "You're Hired!",
		Message:     fmt.Sprintf("You were hired for \"%s\" at $%.2f", job.Title, amount),
		ReferenceID: job.ID,
		Data:        mustJSON(map[string]interface{}{"pay_amount": amount}),
	}, func(to string) *email.Email {
		return email.HiredEmail(to, job.AcceptedVendorName, job.Title, amount)
	})
}

func (s *notificationService) NotifyNotSelected(ctx context.Context, vendorID string, job *models.HelpRequest) error {
	return s.create(ctx, &models.Notification{
		UserID:      vendorID,
		Type:        models.NotificationTypeNotSelected,
		Title:       "Position Filled",
		Message:     fmt.Sprintf("\"%s\" has been filled by another vendor", job.Title),
		ReferenceID: job.ID,
	}, func(to string) *email.Email {
		return email.NotSelectedEmail(to, job.Title)
	})
}

func (s *notificationService) NotifyDeclined(ctx context.Context, vendorID string, job *models.HelpRequest) error {
	return s.create(ctx, &models.Notification{
		UserID:      vendorID,
		Type:        models.NotificationTypeDeclined,
		Title:       "Application Declined",
		Message:     fmt.Sprintf("Your application to \"%s\" was declined", job.Title),
		ReferenceID: job.ID,
	}, nil)
}

func (s *notificationService) NotifyJobCancelled(ctx context.Context, vendorID string, job *models.HelpRequest) error {
	return s.create(ctx, &models.Notification{
		UserID:      vendorID,
		Type:        models.NotificationTypeJobCancelled,
		Title:       "Job Cancelled",
		Message:     fmt.Sprintf("\"%s\" was cancelled by the poster", job.Title),
		ReferenceID: job.ID,
	}, nil)
}

func (s *notificationService) NotifyAgreementSigned(ctx context.Context, recipientID string, agreement *models.SubcontractAgreement) error {
	return s.create(ctx, &models.Notification{
		UserID:      recipientID,
		Type:        models.NotificationTypeAgreementSigned,
		Title:       "Agreement Signed",
		Message:     fmt.Sprintf("The other party signed the agreement for \"%s\"", agreement.JobTitle),
		ReferenceID: agreement.ID,
	}, nil)
}

func (s *notificationService) NotifyPaymentConfirmed(ctx context.Context, vendorID string, job *models.HelpRequest) error {
	return s.create(ctx, &models.Notification{
		UserID:      vendorID,
		Type:        models.NotificationTypePaymentConfirmed,
		Title:       "Payment Confirmed",
		Message:     fmt.Sprintf("Payment for \"%s\" was confirmed", job.Title),
		ReferenceID: job.ID,
	}, nil)
}

func (s *notificationService) NotifyProfileReviewed(ctx context.Context, userID string, approved bool, reason string) error {
	title := "Profile Approved"
	message := "Your vendor profile was approved. You can now apply to jobs."
	if !approved {
		title = "Profile Rejected"
		message = "Your vendor profile was rejected."
		if reason != "" {
			message += " Reason: " + reason
		}
	}
	return s.create(ctx, &models.Notification{
		UserID:  userID,
		Type:    models.NotificationTypeProfileReviewed,
		Title:   title,
		Message: message,
	}, nil)
}

// create сохраняет уведомление и best effort отправляет email-зеркало.
func (s *notificationService) create(ctx context.Context, n *models.Notification, buildEmail func(to string) *email.Email) error {
	if err := s.notificationRepo.Create(n); err != nil {
		logger.CtxWithError(ctx, "failed to create notification", err,
			"user_id", n.UserID, "type", n.Type)
		return err
	}

	if buildEmail != nil {
		go s.mirrorEmail(n.UserID, buildEmail)
	}
	return nil
}

func (s *notificationService) mirrorEmail(userID string, buildEmail func(to string) *email.Email) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		logger.WithError(err).Warn("email mirror: user lookup failed", "user_id", userID)
		return
	}
	if err := s.emailProvider.Send(buildEmail(user.Email)); err != nil {
		logger.WithError(err).Warn("email mirror: send failed", "user_id", userID)
	}
}

func (s *notificationService) List(ctx context.Context, userID string, limit, offset int) ([]models.Notification, int64, error) {
	return s.notificationRepo.ListByUser(userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	n, err := s.notificationRepo.FindByID(notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return repositories.ErrNotificationNotFound
	}
	return s.notificationRepo.MarkAsRead(notificationID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.notificationRepo.MarkAllAsRead(userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.notificationRepo.UnreadCount(userID)
}

func mustJSON(v map[string]interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
