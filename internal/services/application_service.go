package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"vendorcover_backend/internal/algorithms"
	"vendorcover_backend/internal/idempotency"
	"vendorcover_backend/internal/logger"
	"vendorcover_backend/internal/models"
	"vendorcover_backend/internal/repositories"
	"vendorcover_backend/internal/services/dto"
	"vendorcover_backend/pkg/apperrors"
)

// hireLockTTL ограничивает время удержания ключа найма: процесс,
// упавший посреди операции, не блокирует заявку навсегда.
const hireLockTTL = 30 * time.Second

// ApplicationService - переговорный цикл отклика: подача, контрпредложения,
// найм, отклонение, отзыв. Все переходы пишутся условно по версии записи.
type ApplicationService interface {
	Apply(ctx context.Context, applicantID, helpRequestID string, req *dto.ApplyRequest) (*models.JobApplication, error)
	GetByID(ctx context.Context, actorID, appID string) (*models.JobApplication, error)
	ListByJob(ctx context.Context, requesterID, helpRequestID string) ([]models.JobApplication, error)
	ListMine(ctx context.Context, applicantID string) ([]models.JobApplication, error)

	// SendCounterOffer - контрпредложение от любой из сторон переговоров
	SendCounterOffer(ctx context.Context, actorID, appID string, req *dto.CounterOfferRequest) (*models.JobApplication, error)
	// AcceptCounterOffer - принятие последнего контрпредложения противоположной
	// стороной. Отклик переходит в counter_offer_accepted, сумма заявки
	// обновляется до согласованной; сам наём - отдельный шаг заказчика.
	AcceptCounterOffer(ctx context.Context, actorID, appID string) (*dto.HireResult, error)
	// AcceptAtOriginalTerms - найм заказчиком: pending-отклик нанимается на
	// исходных условиях заявки с полной предоплатой, counter_offer_accepted -
	// на согласованных условиях.
	AcceptAtOriginalTerms(ctx context.Context, requesterID, appID string) (*dto.HireResult, error)
	Decline(ctx context.Context, requesterID, appID string) error
	Withdraw(ctx context.Context, applicantID, appID string) error
}

type applicationService struct {
	appRepo         repositories.ApplicationRepository
	jobRepo         repositories.HelpRequestRepository
	userRepo        repositories.UserRepository
	profileRepo     repositories.VendorProfileRepository
	subscriptionSvc SubscriptionService
	agreementSvc    AgreementService
	notificationSvc NotificationService
	idempotency     idempotency.Store
}

func NewApplicationService(
	appRepo repositories.ApplicationRepository,
	jobRepo repositories.HelpRequestRepository,
	userRepo repositories.UserRepository,
	profileRepo repositories.VendorProfileRepository,
	subscriptionSvc SubscriptionService,
	agreementSvc AgreementService,
	notificationSvc NotificationService,
	idempotencyStore idempotency.Store,
) ApplicationService {
	return &applicationService{
		appRepo:         appRepo,
		jobRepo:         jobRepo,
		userRepo:        userRepo,
		profileRepo:     profileRepo,
		subscriptionSvc: subscriptionSvc,
		agreementSvc:    agreementSvc,
		notificationSvc: notificationSvc,
		idempotency:     idempotencyStore,
	}
}

func (s *applicationService) Apply(ctx context.Context, applicantID, helpRequestID string, req *dto.ApplyRequest) (*models.JobApplication, error) {
	user, err := s.userRepo.FindByID(applicantID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if user.Status == models.UserStatusSuspended {
		return nil, apperrors.ErrUserSuspended
	}

	profile, err := s.profileRepo.FindByUserID(applicantID)
	if err != nil || !profile.CanWorkJobs() {
		return nil, apperrors.ErrProfileNotApproved
	}

	if err := s.subscriptionSvc.RequireActiveAccess(ctx, applicantID); err != nil {
		return nil, err
	}

	job, err := s.jobRepo.FindByID(helpRequestID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if job.Status != models.JobStatusOpen || job.Paused {
		return nil, apperrors.ErrJobNotOpen
	}
	if job.RequesterID == applicantID {
		return nil, apperrors.ErrInvalidOperation("application", "cannot apply to your own job")
	}

	app := &models.JobApplication{
		HelpRequestID: helpRequestID,
		ApplicantID:   applicantID,
		ApplicantName: user.Name,
		Status:        models.ApplicationStatusPending,
		Message:       req.Message,
	}
	if err := s.appRepo.Create(app); err != nil {
		if errors.Is(err, repositories.ErrApplicationExists) {
			return nil, apperrors.ErrAlreadyApplied
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "application created",
		"application_id", app.ID, "help_request_id", helpRequestID, "applicant_id", applicantID)

	_ = s.notificationSvc.NotifyNewApplication(ctx, job.RequesterID, job, user.Name)
	return app, nil
}

func (s *applicationService) GetByID(ctx context.Context, actorID, appID string) (*models.JobApplication, error) {
	app, job, err := s.loadPair(appID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != actorID && job.RequesterID != actorID {
		return nil, apperrors.NewForbiddenError("not a party to this application")
	}
	return app, nil
}

func (s *applicationService) ListByJob(ctx context.Context, requesterID, helpRequestID string) ([]models.JobApplication, error) {
	job, err := s.jobRepo.FindByID(helpRequestID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if job.RequesterID != requesterID {
		return nil, apperrors.NewForbiddenError("only the poster can list applications")
	}
	return s.appRepo.ListByJob(helpRequestID)
}

func (s *applicationService) ListMine(ctx context.Context, applicantID string) ([]models.JobApplication, error) {
	return s.appRepo.ListByApplicant(applicantID)
}

func (s *applicationService) SendCounterOffer(ctx context.Context, actorID, appID string, req *dto.CounterOfferRequest) (*models.JobApplication, error) {
	app, job, err := s.loadPair(appID)
	if err != nil {
		return nil, err
	}

	fromPoster := actorID == job.RequesterID
	if !fromPoster && actorID != app.ApplicantID {
		return nil, apperrors.NewForbiddenError("not a party to this application")
	}
	if app.IsTerminal() || app.Status == models.ApplicationStatusCounterOfferAccepted {
		return nil, apperrors.ErrInvalidStatus("application",
			fmt.Sprintf("cannot counter in status %q", app.Status))
	}
	if job.Status != models.JobStatusOpen {
		return nil, apperrors.ErrJobNotOpen
	}
	if err := validOfferAmount(req.PayAmount); err != nil {
		return nil, err
	}

	schedule := algorithms.SplitSchedule(req.PayAmount, req.PaymentTerms)
	offer := &models.CounterOffer{
		PayAmount:        req.PayAmount,
		PaymentTerms:     req.PaymentTerms,
		UpfrontAmount:    schedule.UpfrontAmount,
		CompletionAmount: schedule.CompletionAmount,
		Notes:            req.Notes,
		SentAt:           time.Now(),
		FromPoster:       fromPoster,
	}

	err = s.appRepo.UpdateWithVersion(app.ID, app.Version, map[string]interface{}{
		"status":                    models.ApplicationStatusCounterOfferSent,
		"counter_pay_amount":        offer.PayAmount,
		"counter_payment_terms":     offer.PaymentTerms,
		"counter_upfront_amount":    offer.UpfrontAmount,
		"counter_completion_amount": offer.CompletionAmount,
		"counter_notes":             offer.Notes,
		"counter_sent_at":           offer.SentAt,
		"counter_from_poster":       offer.FromPoster,
	})
	if err != nil {
		return nil, mapVersionErr(err)
	}

	logger.TransitionLog("job_application", app.ID,
		string(app.Status), string(models.ApplicationStatusCounterOfferSent), actorID)

	recipient := app.ApplicantID
	if !fromPoster {
		recipient = job.RequesterID
	}
	_ = s.notificationSvc.NotifyCounterOffer(ctx, recipient, job, req.PayAmount)

	app.Status = models.ApplicationStatusCounterOfferSent
	app.CounterOffer = offer
	app.Version++
	return app, nil
}

func (s *applicationService) AcceptCounterOffer(ctx context.Context, actorID, appID string) (*dto.HireResult, error) {
	app, job, err := s.loadPair(appID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationStatusCounterOfferSent || app.CounterOffer == nil {
		return nil, apperrors.ErrInvalidStatus("application", "no counter offer to accept")
	}

	// Принять может только противоположная сторона
	offer := app.CounterOffer
	var otherParty string
	switch actorID {
	case job.RequesterID:
		if offer.FromPoster {
			return nil, apperrors.ErrInvalidOperation("application", "cannot accept your own counter offer")
		}
		otherParty = app.ApplicantID
	case app.ApplicantID:
		if !offer.FromPoster {
			return nil, apperrors.ErrInvalidOperation("application", "cannot accept your own counter offer")
		}
		otherParty = job.RequesterID
	default:
		return nil, apperrors.NewForbiddenError("not a party to this application")
	}

	// Условия зафиксированы, но наём - отдельный шаг заказчика
	err = s.appRepo.UpdateWithVersion(app.ID, app.Version, map[string]interface{}{
		"status":                  models.ApplicationStatusCounterOfferAccepted,
		"final_agreed_amount":     offer.PayAmount,
		"final_payment_terms":     offer.PaymentTerms,
		"final_upfront_amount":    offer.UpfrontAmount,
		"final_completion_amount": offer.CompletionAmount,
	})
	if err != nil {
		return nil, mapVersionErr(err)
	}

	// Сумма заявки следует за согласованной суммой
	if job.PayAmount != offer.PayAmount {
		err = s.jobRepo.UpdateWithVersion(job.ID, job.Version, map[string]interface{}{
			"pay_amount": offer.PayAmount,
		})
		if err != nil {
			return nil, mapVersionErr(err)
		}
	}

	logger.TransitionLog("job_application", app.ID,
		string(models.ApplicationStatusCounterOfferSent),
		string(models.ApplicationStatusCounterOfferAccepted), actorID)

	_ = s.notificationSvc.NotifyCounterOfferAccepted(ctx, otherParty, job)

	app.Status = models.ApplicationStatusCounterOfferAccepted
	amount := offer.PayAmount
	app.FinalAgreedAmount = &amount
	app.FinalPaymentTerms = offer.PaymentTerms
	app.FinalUpfrontAmount = offer.UpfrontAmount
	app.FinalCompletionAmount = offer.CompletionAmount
	app.Version++
	return &dto.HireResult{Application: app}, nil
}

func (s *applicationService) AcceptAtOriginalTerms(ctx context.Context, requesterID, appID string) (*dto.HireResult, error) {
	app, job, err := s.loadPair(appID)
	if err != nil {
		return nil, err
	}
	if job.RequesterID != requesterID {
		return nil, apperrors.NewForbiddenError("only the poster can hire")
	}

	switch app.Status {
	case models.ApplicationStatusPending:
		// Наём без переговоров: исходная сумма заявки, вся оплата вперед
		schedule := algorithms.SplitSchedule(job.PayAmount, algorithms.PaymentTermsFullUpfront)
		return s.hire(ctx, job, app, job.PayAmount, algorithms.PaymentTermsFullUpfront,
			schedule.UpfrontAmount, schedule.CompletionAmount)

	case models.ApplicationStatusCounterOfferAccepted:
		if app.FinalAgreedAmount == nil {
			return nil, apperrors.ErrInvalidStatus("application", "accepted terms are missing")
		}
		return s.hire(ctx, job, app, *app.FinalAgreedAmount, app.FinalPaymentTerms,
			app.FinalUpfrontAmount, app.FinalCompletionAmount)

	default:
		return nil, apperrors.ErrInvalidStatus("application",
			fmt.Sprintf("cannot hire application in status %q", app.Status))
	}
}

// hire выполняет весь конвейер найма под идемпотентным ключом заявки.
// Порядок фиксирован: принять отклик -> отклонить соседей -> перевести
// заявку в filled -> уведомить нанятого -> финализировать соглашение.
func (s *applicationService) hire(
	ctx context.Context,
	job *models.HelpRequest,
	app *models.JobApplication,
	amount float64,
	paymentTerms string,
	upfront, completion float64,
) (*dto.HireResult, error) {
	if err := validOfferAmount(amount); err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusOpen {
		return nil, apperrors.ErrJobNotOpen
	}

	lockKey := "hire:" + job.ID
	acquired, err := s.idempotency.Acquire(ctx, lockKey, hireLockTTL)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if !acquired {
		return nil, apperrors.ErrHireInProgress
	}
	defer func() {
		if releaseErr := s.idempotency.Release(context.WithoutCancel(ctx), lockKey); releaseErr != nil {
			logger.WithError(releaseErr).Warn("failed to release hire lock", "key", lockKey)
		}
	}()

	// 1. Принимаем отклик с финальными условиями
	err = s.appRepo.UpdateWithVersion(app.ID, app.Version, map[string]interface{}{
		"status":                  models.ApplicationStatusAccepted,
		"final_agreed_amount":     amount,
		"final_payment_terms":     paymentTerms,
		"final_upfront_amount":    upfront,
		"final_completion_amount": completion,
	})
	if err != nil {
		return nil, mapVersionErr(err)
	}
	logger.TransitionLog("job_application", app.ID,
		string(app.Status), string(models.ApplicationStatusAccepted), job.RequesterID)

	app.Status = models.ApplicationStatusAccepted
	app.FinalAgreedAmount = &amount
	app.FinalPaymentTerms = paymentTerms
	app.FinalUpfrontAmount = upfront
	app.FinalCompletionAmount = completion
	app.Version++

	// 2. Отклоняем остальные отклики; сбой по одному не останавливает остальных
	var failed []string
	siblings, err := s.appRepo.ListSiblings(job.ID, app.ID)
	if err != nil {
		failed = append(failed, "list:"+err.Error())
	}
	declined := 0
	for i := range siblings {
		sib := &siblings[i]
		if sib.IsTerminal() {
			continue
		}
		updErr := s.appRepo.UpdateFields(sib.ID, map[string]interface{}{
			"status": models.ApplicationStatusDeclined,
		})
		if updErr != nil {
			logger.WithError(updErr).Error("failed to decline sibling application",
				"application_id", sib.ID)
			failed = append(failed, sib.ID)
			continue
		}
		declined++
		_ = s.notificationSvc.NotifyNotSelected(ctx, sib.ApplicantID, job)
	}

	// 3. Заявка переходит в filled с данными нанятого вендора
	err = s.jobRepo.UpdateWithVersion(job.ID, job.Version, map[string]interface{}{
		"status":               models.JobStatusFilled,
		"accepted_vendor_id":   app.ApplicantID,
		"accepted_vendor_name": app.ApplicantName,
		"pay_amount":           amount,
		"job_status":           models.OperationalPending,
	})
	if err != nil {
		return nil, mapVersionErr(err)
	}
	logger.TransitionLog("help_request", job.ID,
		string(models.JobStatusOpen), string(models.JobStatusFilled), job.RequesterID)

	job.Status = models.JobStatusFilled
	job.AcceptedVendorID = &app.ApplicantID
	job.AcceptedVendorName = app.ApplicantName
	job.PayAmount = amount
	job.JobStatus = models.OperationalPending
	job.Version++

	// 4. Уведомляем нанятого вендора
	_ = s.notificationSvc.NotifyHired(ctx, app.ApplicantID, job, amount)

	// 5. Финализируем соглашение со снапшотом условий
	agreement, err := s.agreementSvc.Finalize(ctx, job, app)
	if err != nil {
		return nil, err
	}

	result := &dto.HireResult{
		Application:      app,
		Agreement:        agreement,
		DeclinedSiblings: declined,
	}
	if len(failed) > 0 {
		return result, apperrors.ErrPartialFailure(nil, "application",
			fmt.Sprintf("hire committed but %d sibling application(s) were not declined", len(failed)))
	}
	return result, nil
}

func (s *applicationService) Decline(ctx context.Context, requesterID, appID string) error {
	app, job, err := s.loadPair(appID)
	if err != nil {
		return err
	}
	if job.RequesterID != requesterID {
		return apperrors.NewForbiddenError("only the poster can decline applications")
	}
	if app.IsTerminal() {
		return apperrors.ErrInvalidStatus("application", "application is already finalized")
	}

	err = s.appRepo.UpdateWithVersion(app.ID, app.Version, map[string]interface{}{
		"status": models.ApplicationStatusDeclined,
	})
	if err != nil {
		return mapVersionErr(err)
	}
	logger.TransitionLog("job_application", app.ID,
		string(app.Status), string(models.ApplicationStatusDeclined), requesterID)

	_ = s.notificationSvc.NotifyDeclined(ctx, app.ApplicantID, job)
	return nil
}

func (s *applicationService) Withdraw(ctx context.Context, applicantID, appID string) error {
	app, _, err := s.loadPair(appID)
	if err != nil {
		return err
	}
	if app.ApplicantID != applicantID {
		return apperrors.NewForbiddenError("only the applicant can withdraw")
	}
	if app.Status != models.ApplicationStatusPending {
		return apperrors.ErrCannotWithdraw
	}

	if err := s.appRepo.Delete(app.ID); err != nil {
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "application withdrawn", "application_id", app.ID, "applicant_id", applicantID)
	return nil
}

// loadPair загружает отклик вместе с его заявкой
func (s *applicationService) loadPair(appID string) (*models.JobApplication, *models.HelpRequest, error) {
	app, err := s.appRepo.FindByID(appID)
	if err != nil {
		return nil, nil, apperrors.ErrNotFound(err)
	}
	job, err := s.jobRepo.FindByID(app.HelpRequestID)
	if err != nil {
		return nil, nil, apperrors.ErrNotFound(err)
	}
	return app, job, nil
}

// validOfferAmount - сумма предложения конечна и строго положительна
func validOfferAmount(amount float64) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return apperrors.ErrInvalidOfferAmount
	}
	return nil
}

func mapVersionErr(err error) error {
	if errors.Is(err, repositories.ErrVersionConflict) {
		return apperrors.ErrVersionConflict
	}
	return apperrors.InternalError(err)
}
