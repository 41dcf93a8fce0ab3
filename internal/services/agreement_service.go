package services

import (
	"context"
	"time"

	"vendorcover_backend/internal/logger"
	"vendorcover_backend/internal/models"
	"vendorcover_backend/internal/repositories"
	"vendorcover_backend/pkg/apperrors"
)

// AgreementService - субподрядное соглашение, создаваемое при найме.
type AgreementService interface {
	// Finalize создает соглашение-снапшот условий найма.
	// Сторона заказчика считается подтвердившей сразу: сам акт найма и есть ее подпись.
	Finalize(ctx context.Context, job *models.HelpRequest, app *models.JobApplication) (*models.SubcontractAgreement, error)
	GetByID(ctx context.Context, actorID, agreementID string) (*models.SubcontractAgreement, error)
	GetActiveByJob(ctx context.Context, actorID, helpRequestID string) (*models.SubcontractAgreement, error)
	// Confirm - one-way подтверждение стороной; повторный вызов идемпотентен
	Confirm(ctx context.Context, actorID, agreementID string) (*models.SubcontractAgreement, error)
	// Void аннулирует соглашение при отмене найма
	Void(ctx context.Context, agreementID string) error
}

type agreementService struct {
	agreementRepo   repositories.AgreementRepository
	notificationSvc NotificationService
}

func NewAgreementService(
	agreementRepo repositories.AgreementRepository,
	notificationSvc NotificationService,
) AgreementService {
	return &agreementService{
		agreementRepo:   agreementRepo,
		notificationSvc: notificationSvc,
	}
}

func (s *agreementService) Finalize(ctx context.Context, job *models.HelpRequest, app *models.JobApplication) (*models.SubcontractAgreement, error) {
	amount := job.PayAmount
	paymentTerms := app.FinalPaymentTerms
	upfront := app.FinalUpfrontAmount
	completion := app.FinalCompletionAmount
	if app.FinalAgreedAmount != nil {
		amount = *app.FinalAgreedAmount
	}

	agreement := &models.SubcontractAgreement{
		HelpRequestID: job.ID,
		RequesterID:   job.RequesterID,
		VendorID:      app.ApplicantID,
		VendorName:    app.ApplicantName,

		JobTitle:         job.Title,
		ServiceType:      job.ServiceType,
		EventDate:        job.EventDate,
		City:             job.City,
		State:            job.State,
		PayAmount:        amount,
		PaymentTerms:     paymentTerms,
		UpfrontAmount:    upfront,
		CompletionAmount: completion,
		PaymentMethod:    job.PaymentMethod,

		RequesterConfirmed: true,
		Status:             models.AgreementStatusActive,
	}

	if err := s.agreementRepo.Create(agreement); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "agreement finalized",
		"agreement_id", agreement.ID,
		"help_request_id", job.ID,
		"vendor_id", app.ApplicantID,
		"pay_amount", amount)

	return agreement, nil
}

func (s *agreementService) GetByID(ctx context.Context, actorID, agreementID string) (*models.SubcontractAgreement, error) {
	agreement, err := s.agreementRepo.FindByID(agreementID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if agreement.RequesterID != actorID && agreement.VendorID != actorID {
		return nil, apperrors.ErrNotAgreementParty
	}
	return agreement, nil
}

func (s *agreementService) GetActiveByJob(ctx context.Context, actorID, helpRequestID string) (*models.SubcontractAgreement, error) {
	agreement, err := s.agreementRepo.FindActiveByHelpRequest(helpRequestID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if agreement.RequesterID != actorID && agreement.VendorID != actorID {
		return nil, apperrors.ErrNotAgreementParty
	}
	return agreement, nil
}

func (s *agreementService) Confirm(ctx context.Context, actorID, agreementID string) (*models.SubcontractAgreement, error) {
	agreement, err := s.agreementRepo.FindByID(agreementID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if agreement.Status == models.AgreementStatusVoided {
		return nil, apperrors.ErrAgreementVoided
	}

	var field string
	var otherParty string
	switch actorID {
	case agreement.RequesterID:
		if agreement.RequesterConfirmed {
			return agreement, nil
		}
		field = "requester_confirmed"
		otherParty = agreement.VendorID
		agreement.RequesterConfirmed = true
	case agreement.VendorID:
		if agreement.VendorConfirmed {
			return agreement, nil
		}
		field = "vendor_confirmed"
		otherParty = agreement.RequesterID
		agreement.VendorConfirmed = true
	default:
		return nil, apperrors.ErrNotAgreementParty
	}

	err = s.agreementRepo.UpdateFields(agreementID, map[string]interface{}{
		field: true,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "agreement confirmed",
		"agreement_id", agreementID, "actor_id", actorID, "both_confirmed", agreement.BothConfirmed())

	_ = s.notificationSvc.NotifyAgreementSigned(ctx, otherParty, agreement)
	return agreement, nil
}

func (s *agreementService) Void(ctx context.Context, agreementID string) error {
	err := s.agreementRepo.UpdateFields(agreementID, map[string]interface{}{
		"status":     models.AgreementStatusVoided,
		"updated_at": time.Now(),
	})
	if err != nil {
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "agreement voided", "agreement_id", agreementID)
	return nil
}
