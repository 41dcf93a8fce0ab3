package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorcover_backend/internal/algorithms"
	"vendorcover_backend/internal/models"
	"vendorcover_backend/internal/services/dto"
	"vendorcover_backend/pkg/apperrors"
)

// negotiationFixture - полный стенд переговорного цикла на фейковых репозиториях
type negotiationFixture struct {
	userRepo         *fakeUserRepo
	profileRepo      *fakeProfileRepo
	jobRepo          *fakeJobRepo
	appRepo          *fakeAppRepo
	agreementRepo    *fakeAgreementRepo
	notificationRepo *fakeNotificationRepo
	idempotency      *fakeIdempotencyStore

	svc          ApplicationService
	agreementSvc AgreementService
}

func newNegotiationFixture(t *testing.T) *negotiationFixture {
	t.Helper()

	f := &negotiationFixture{
		userRepo:         newFakeUserRepo(),
		profileRepo:      newFakeProfileRepo(),
		jobRepo:          newFakeJobRepo(),
		appRepo:          newFakeAppRepo(),
		agreementRepo:    newFakeAgreementRepo(),
		notificationRepo: newFakeNotificationRepo(),
		idempotency:      newFakeIdempotencyStore(),
	}

	notificationSvc := newTestNotificationService(f.notificationRepo, f.userRepo)
	subscriptionSvc := NewSubscriptionService(f.userRepo)
	f.agreementSvc = NewAgreementService(f.agreementRepo, notificationSvc)
	f.svc = NewApplicationService(
		f.appRepo, f.jobRepo, f.userRepo, f.profileRepo,
		subscriptionSvc, f.agreementSvc, notificationSvc, f.idempotency,
	)
	return f
}

// addVendor создает вендора с одобренным профилем и активной подпиской
func (f *negotiationFixture) addVendor(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, f.userRepo.Create(&models.User{
		BaseModel:                  models.BaseModel{ID: id},
		Email:                      id + "@test.com",
		Name:                       name,
		Role:                       models.UserRoleUser,
		Status:                     models.UserStatusActive,
		SubscriptionGrantedByAdmin: true,
	}))
	require.NoError(t, f.profileRepo.Create(&models.VendorProfile{
		UserID:         id,
		CompanyName:    name + " LLC",
		ApprovalStatus: models.ApprovalStatusApproved,
	}))
}

func (f *negotiationFixture) addPoster(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.userRepo.Create(&models.User{
		BaseModel:                  models.BaseModel{ID: id},
		Email:                      id + "@test.com",
		Name:                       "Poster " + id,
		Role:                       models.UserRoleUser,
		Status:                     models.UserStatusActive,
		SubscriptionGrantedByAdmin: true,
	}))
}

func (f *negotiationFixture) addOpenJob(t *testing.T, id, posterID string, amount float64) {
	t.Helper()
	require.NoError(t, f.jobRepo.Create(&models.HelpRequest{
		BaseModel:   models.BaseModel{ID: id},
		RequesterID: posterID,
		Title:       "Catering for corporate event",
		PayAmount:   amount,
		Status:      models.JobStatusOpen,
	}))
}

func TestApply_CreatesPendingApplication(t *testing.T) {
	t.Parallel()

	f := newNegotiationFixture(t)
	f.addPoster(t, "poster")
	f.addVendor(t, "vendor", "Ace Catering")
	f.addOpenJob(t, "job-1", "poster", 500)

	app, err := f.svc.Apply(context.Background(), "vendor", "job-1", &dto.ApplyRequest{Message: "Available that day"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)
	assert.Equal(t, "Ace Catering", app.ApplicantName)
	assert.Nil(t, app.CounterOffer)

	// Заказчик получил уведомление о новом отклике
	notifications := f.notificationRepo.byType(models.NotificationTypeNewApplication)
	require.Len(t, notifications, 1)
	assert.Equal(t, "poster", notifications[0].UserID)
}

// TestApply_DuplicateRejected - один отклик на пару (заявка, вендор)
func TestApply_DuplicateRejected(t *testing.T) {
	t.Parallel()

	f := newNegotiationFixture(t)
	f.addPoster(t, "poster")
	f.addVendor(t, "vendor", "Ace Catering")
	f.addOpenJob(t, "job-1", "poster", 500)

	_, err := f.svc.Apply(context.Background(), "vendor", "job-1", &dto.ApplyRequest{})
	require.NoError(t, err)

	_, err = f.svc.Apply(context.Background(), "vendor", "job-1", &dto.ApplyRequest{})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyApplied)
}

func TestApply_Gates(t *testing.T) {
	t.Parallel()

	f := newNegotiationFixture(t)
	f.addPoster(t, "poster")
	f.addOpenJob(t, "job-1", "poster", 500)

	// Профиль не одобрен
	require.NoError(t, f.userRepo.Create(&models.User{
		BaseModel:                  models.BaseModel{ID: "no-profile"},
		Status:                     models.UserStatusActive,
		SubscriptionGrantedByAdmin: true,
	}))
	_, err := f.svc.Apply(context.Background(), "no-profile", "job-1", &dto.ApplyRequest{})
	assert.ErrorIs(t, err, apperrors.ErrProfileNotApproved)

	// Нет подписки
	require.NoError(t, f.userRepo.Create(&models.User{
		BaseModel: models.BaseModel{ID: "no-sub"},
		Status:    models.UserStatusActive,
	}))
	require.NoError(t, f.profileRepo.Create(&models.VendorProfile{
		UserID:         "no-sub",
		ApprovalStatus: models.ApprovalStatusApproved,
	}))
	_, err = f.svc.Apply(context.Background(), "no-sub", "job-1", &dto.ApplyRequest{})
	assert.ErrorIs(t, err, apperrors.ErrSubscriptionRequired)

	// Заблокированный пользователь
	require.NoError(t, f.userRepo.Create(&models.User{
		BaseModel: models.BaseModel{ID: "banned"},
		Status:    models.UserStatusSuspended,
	}))
	_, err = f.svc.Apply(context.Background(), "banned", "job-1", &dto.ApplyRequest{})
	assert.ErrorIs(t, err, apperrors.ErrUserSuspended)

	// Свой же job
	f.addVendor(t, "self-poster", "Self")
	f.addOpenJob(t, "job-own", "self-poster", 100)
	_, err = f.svc.Apply(context.Background(), "self-poster", "job-own", &dto.ApplyRequest{})
	assert.Error(t, err)

	// Закрытая заявка
	f.addVendor(t, "vendor", "Ace")
	require.NoError(t, f.jobRepo.Create(&models.HelpRequest{
		BaseModel:   models.BaseModel{ID: "job-closed"},
		RequesterID: "poster",
		Status:      models.JobStatusCancelled,
	}))
	_, err = f.svc.Apply(context.Background(), "vendor", "job-closed", &dto.ApplyRequest{})
	assert.ErrorIs(t, err, apperrors.ErrJobNotOpen)
}

func TestSendCounterOffer_VendorSide(t *testing.T) {
	t.Parallel()

	f := newNegotiationFixture(t)
	f.addPoster(t, "poster")
	f.addVendor(t, "vendor", "Ace Catering")
	f.addOpenJob(t, "job-1", "poster", 500)

	app, err := f.svc.Apply(context.Background(), "vendor", "job-1", &dto.ApplyRequest{})
	require.NoError(t, err)

	updated, err := f.svc.SendCounterOffer(context.Background(), "vendor", app.ID, &dto.CounterOfferRequest{
		PayAmount:    800,
		PaymentTerms: algorithms.PaymentTerms3070,
		Notes:        "Premium menu included",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ApplicationStatusCounterOfferSent, updated.Status)
	require.NotNil(t, updated.CounterOffer)
	assert.False(t, updated.CounterOffer.FromPoster)
	assert.InDelta(t, 240.0, updated.CounterOffer.UpfrontAmount, 1e-9)
	assert.InDelta(t, 560.0, updated.CounterOffer.CompletionAmount, 1e-9)

	// Уведомление ушло заказчику
	notifications := f.notificationRepo.byType(models.NotificationTypeCounterOffer)
	require.Len(t, notifications, 1)
	assert.Equal(t, "poster", notifications[0].UserID)
}

func TestSendCounterOffer_InvalidAmount(t *testing.T) {
	t.Parallel()

	f := newNegotiationFixture(t)
	f.addPoster(t, "poster")
	f.addVendor(t, "vendor", "Ace")
	f.addOpenJob(t, "job-1", "poster", 500)

	app, err := f.svc.Apply(context.Background(), "vendor", "job-1", &dto.ApplyRequest{})
	require.NoError(t, err)

	for _, amount := range []float64{0, -50} {
		_, err = f.svc.SendCounterOffer(context.Background(), "vendor", app.ID, &dto.CounterOfferRequest{
			PayAmount:    amount,
			PaymentTerms: algorithms.PaymentTerms5050,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidOfferAmount, "amount=%f", amount)
	}
}

// TestAcceptCounterOffer_RequesterLocksTermsBeforeHire - заказчик принимает
// контрпредложение вендора: условия и сумма заявки фиксируются, а наём
// остается отдельным шагом
func TestAcceptCounterOffer_RequesterLocksTermsBeforeHire(t *testing.T) {
	t.Parallel()

	f := newNegotiationFixture(t)
	f.addPoster(t, "poster")
	f.addVendor(t, "vendor-a", "Ace Catering")
	f.addVendor(t, "vendor-b", "Budget Eats")
	f.addOpenJob(t, "job-1", "poster", 500)

	appA, err := f.svc.Apply(context.Background(), "vendor-a", "job-1", &dto.ApplyRequest{})
	require.NoError(t, err)
	_, err = f.svc.Apply(context.Background(), "vendor-b", "job-1", &dto.ApplyRequest{})
	require.NoError(t, err)

	_, err = f.svc.SendCounterOffer(context.Background(), "vendor-a", appA.ID, &dto.CounterOfferRequest{
		PayAmount:    800,
		PaymentTerms: algorithms.PaymentTerms5050,
	})
	require.NoError(t, err)

	result, err := f.svc.AcceptCounterOffer(context.Background(), "poster", appA.ID)
	require.NoError(t, err)

	// Условия зафиксированы, но отклик еще не нанят
	assert.Equal(t, models.ApplicationStatusCounterOfferAccepted, result.Application.Status)
	require.NotNil(t, result.Application.FinalAgreedAmount)
	assert.Equal(t, 800.0, *result.Application.FinalAgreedAmount)
	assert.Equal(t, algorithms.PaymentTerms5050, result.Application.FinalPaymentTerms)
	assert.Nil(t, result.Agreement)

	// Сумма заявки следует за согласованной, статус остается open
	job, err := f.jobRepo.FindByID("job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusOpen, job.Status)
	assert.Nil(t, job.AcceptedVendorID)
	assert.Equal(t, 800.0, job.PayAmount)

	// Вендор уведомлен о принятии его условий
	accepted := f.notificationRepo.byType(models.NotificationTypeCounterOfferAccepted)
	require.Len(t, accepted, 1)
	assert.Equal(t, "vendor-a", accepted[0].UserID)

	// Сосед пока активен, уведомлений об отказе нет
	assert.Empty(t, f.notificationRepo.byType(models.NotificationTypeNotSelected))

	// Наём завершается отдельным шагом на зафиксированных условиях
	hireResult, err := f.svc.AcceptAtOriginalTerms(context.Background(), "poster", appA.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, hireResult.Application.Status)
	assert.Equal(t, 800.0, *hireResult.Application.FinalAgreedAmount)

	// Теперь сосед отклонен и уведомлен
	assert.Equal(t, 1, hireResult.DeclinedSiblings)
	notSelected := f.notificationRepo.byType(models.NotificationTypeNotSelected)
	require.Len(t, notSelected, 1)
	assert.Equal(t, "vendor-b", notSelected[0].UserID)

	// Заявка переведена в filled с данными нанятого
	job, err = f.jobRepo.FindByID("job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFilled, job.Status)
	require.NotNil(t, job.AcceptedVendorID)
	assert.Equal(t, "vendor-a", *job.AcceptedVendorID)
	assert.Equal(t, 800.0, job.PayAmount)

	// Нанятый уведомлен
	hired := f.notificationRepo.byType(models.NotificationTypeHired)
	require.Len(t, hired, 1)
	assert.Equal(t, "vendor-a", hired[0].UserID)

	// Соглашение создано: сторона заказчика уже подтверждена, вендора - нет
	require.NotNil(t, hireResult.Agreement)
	assert.True(t, hireResult.Agreement.RequesterConfirmed)
	assert.False(t, hireResult.Agreement.VendorConfirmed)
	assert.Equal(t, 800.0, hireResult.Agreement.PayAmount)
	assert.Equal(t, models.AgreementStatusActive, hireResult.Agreement.Status)

	// Ключ найма захватывался и был освобожден
	assert.Contains(t, f.idempotency.acquired, "hire:job-1")
	assert.False(t, f.idempotency.held["hire:job-1"])
}

// TestAcceptCounterOffer_VendorAcceptsPosterTerms - вендор принимает условия
// заказчика: отклик фиксируется как counter_offer_accepted до найма
func TestAcceptCounterOffer_VendorAcceptsPosterTerms(t *testing.T) {
	t.Parallel()

	f := newNegotiationFixture(t)
	f.addPoster(t, "poster")
	f.addVendor(t, "vendor", "Ace")
	f.addOpenJob(t, "job-1", "poster", 500)

	app, err := f.svc.Apply(context.Background(), "vendor", "job-1", &dto.ApplyRequest{})
	require.NoError(t, err)

	_, err = f.svc.SendCounterOffer(context.Background(), "poster", app.ID, &dto.CounterOfferRequest{
		PayAmount:    450,
		PaymentTerms: algorithms.PaymentTermsOnCompletion,
	})
	require.NoError(t, err)

	result, err := f.svc.AcceptCounterOffer(context.Background(), "vendor", app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusCounterOfferAccepted, result.Application.Status)
	assert.Nil(t, result.Agreement, "наём еще не состоялся")

	// Заявка осталась открытой, ее сумма следует за согласованной
	job, err := f.jobRepo.FindByID("job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusOpen, job.Status)
	assert.Equal(t, 450.0, job.PayAmount)

	// Заказчик уведомлен о согласии вендора
	accepted := f.notificationRepo.byType(models.NotificationTypeCounterOfferAccepted)
	require.Len(t, accepted, 1)
	assert.Equal(t, "poster", accepted[0].UserID)

	// Заказчик завершает наём на согласованных условиях
	hireResult, err := f.svc.AcceptAtOriginalTerms(context.Background(), "poster", app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAccepted, hireResult.Application.Status)
	assert.Equal(t, 450.0, *hireResult.Application.FinalAgreedAmount)
	assert.Equal(t, algorithms.PaymentTermsOnCompletion, hireResult.Application.FinalPaymentTerms)
	assert.Equal(t, 0.0, hireResult.Application.FinalUpfrontAmount)
	assert.Equal(t, 450.0, hireResult.Application.FinalCompletionAmount)
}

func TestAcceptCounterOffer_OwnCounterRejected(t *testing.T) {
	t.Parallel()

	f := newNegotiationFixture(t)
	f.addPoster(t, "poster")
	f.addVendor(t, "vendor", "Ace")
	f.addOpenJob(t, "job-1", "poster", 500)

	app, err := f.svc.Apply(context.Background(), "vendor", "job-1", &dto.ApplyRequest{})
	require.NoError(t, err)

	_, err = f.svc.SendCounterOffer(context.Background(), "vendor", app.ID, &dto.CounterOfferRequest{
		PayAmount:    700,
		PaymentTerms: algorithms.PaymentTerms5050,
	})
	require.NoError(t, err)

	// Вендор не может принять собственное контрпредложение
	_, err = f.svc.AcceptCounterOffer(context.Background(), "vendor", app.ID)
	assert.Error(t, err)
}

// TestAcceptAtOriginalTerms_PendingFullUpfront - наём без переговоров идет
// на исходной сумме заявки с полной предоплатой
func TestAcceptAtOriginalTerms_PendingFullUpfront(t *testing.T) {
	t.Parallel()

	f := newNegotiationFixture(t)
	f.addPoster(t, "poster")
	f.addVendor(t, "vendor", "Ace")
	f.addOpenJob(t, "job-1", "poster", 500)

	app, err := f.svc.Apply(context.Background(), "vendor", "job-1", &dto.ApplyRequest{})
	require.NoError(t, err)

	result, err := f.svc.AcceptAtOriginalTerms(context.Background(), "poster", app.ID)
	require.NoError(t, err)

	assert.Equal(t, 500.0, *result.Application.FinalAgreedAmount)
	assert.Equal(t, algorithms.PaymentTermsFullUpfront, result.Application.FinalPaymentTerms)
	assert.Equal(t, 500.0, result.Application.FinalUpfrontAmount)
	assert.Equal(t, 0.0, result.Application.FinalCompletionAmount)
	assert.Equal(t, 500.0, result.Agreement.UpfrontAmount)
}

// TestHire_Exclusivity - нанять можно ровно одного вендора
func TestHire_Exclusivity(t *testing.T) {
	t.Parallel()

	f := newNegotiationFixture(t)
	f.addPoster(t, "poster")
	f.addVendor(t, "vendor-a", "Ace")
	f.addVendor(t, "vendor-b", "Budget")
	f.addOpenJob(t, "job-1", "poster", 500)

	appA, err := f.svc.Apply(context.Background(), "vendor-a", "job-1", &dto.ApplyRequest{})
	require.NoError(t, err)
	appB, err := f.svc.Apply(context.Background(), "vendor-b", "job-1", &dto.ApplyRequest{})
	require.NoError(t, err)

	_, err = f.svc.AcceptAtOriginalTerms(context.Background(), "poster", appA.ID)
	require.NoError(t, err)

	// Второй наём невозможен: заявка уже filled, а отклик B отклонен
	_, err = f.svc.AcceptAtOriginalTerms(context.Background(), "poster", appB.ID)
	assert.Error(t, err)
}

// TestHire_LockContention - конкурирующий наём по той же заявке отклоняется
func TestHire_LockContention(t *testing.T) {
	t.Parallel()

	f := newNegotiationFixture(t)
	f.addPoster(t, "poster")
	f.addVendor(t, "vendor", "Ace")
	f.addOpenJob(t, "job-1", "poster", 500)

	app, err := f.svc.Apply(context.Background(), "vendor", "job-1", &dto.ApplyRequest{})
	require.NoError(t, err)

	// Кто-то уже держит ключ найма
	acquired, err := f.idempotency.Acquire(context.Background(), "hire:job-1", hireLockTTL)
	require.NoError(t, err)
	require.True(t, acquired)

	_, err = f.svc.AcceptAtOriginalTerms(context.Background(), "poster", app.ID)
	assert.ErrorIs(t, err, apperrors.ErrHireInProgress)
}

func TestDecline_TerminalAndNotified(t *testing.T) {
	t.Parallel()

	f := newNegotiationFixture(t)
	f.addPoster(t, "poster")
	f.addVendor(t, "vendor", "Ace")
	f.addOpenJob(t, "job-1", "poster", 500)

	app, err := f.svc.Apply(context.Background(), "vendor", "job-1", &dto.ApplyRequest{})
	require.NoError(t, err)

	require.NoError(t, f.svc.Decline(context.Background(), "poster", app.ID))

	stored, err := f.appRepo.FindByID(app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusDeclined, stored.Status)

	declined := f.notificationRepo.byType(models.NotificationTypeDeclined)
	require.Len(t, declined, 1)
	assert.Equal(t, "vendor", declined[0].UserID)

	// Повторное отклонение терминального отклика невозможно
	err = f.svc.Decline(context.Background(), "poster", app.ID)
	assert.Error(t, err)
}

// TestWithdraw_PendingOnly - отозвать можно только необработанный отклик
func TestWithdraw_PendingOnly(t *testing.T) {
	t.Parallel()

	f := newNegotiationFixture(t)
	f.addPoster(t, "poster")
	f.addVendor(t, "vendor", "Ace")
	f.addOpenJob(t, "job-1", "poster", 500)

	app, err := f.svc.Apply(context.Background(), "vendor", "job-1", &dto.ApplyRequest{})
	require.NoError(t, err)

	// Чужой отклик отозвать нельзя
	err = f.svc.Withdraw(context.Background(), "poster", app.ID)
	assert.Error(t, err)

	require.NoError(t, f.svc.Withdraw(context.Background(), "vendor", app.ID))
	_, err = f.appRepo.FindByID(app.ID)
	assert.Error(t, err, "отклик удален")

	// После контрпредложения отзыв запрещен
	app2, err := f.svc.Apply(context.Background(), "vendor", "job-1", &dto.ApplyRequest{})
	require.NoError(t, err)
	_, err = f.svc.SendCounterOffer(context.Background(), "vendor", app2.ID, &dto.CounterOfferRequest{
		PayAmount:    600,
		PaymentTerms: algorithms.PaymentTerms5050,
	})
	require.NoError(t, err)

	err = f.svc.Withdraw(context.Background(), "vendor", app2.ID)
	assert.ErrorIs(t, err, apperrors.ErrCannotWithdraw)
}

// TestSendCounterOffer_StaleVersionConflict - условная запись по устаревшей
// версии отклоняется
func TestSendCounterOffer_StaleVersionConflict(t *testing.T) {
	t.Parallel()

	f := newNegotiationFixture(t)
	f.addPoster(t, "poster")
	f.addVendor(t, "vendor", "Ace")
	f.addOpenJob(t, "job-1", "poster", 500)

	app, err := f.svc.Apply(context.Background(), "vendor", "job-1", &dto.ApplyRequest{})
	require.NoError(t, err)

	// Конкурирующая запись успела инкрементировать версию
	require.NoError(t, f.appRepo.UpdateWithVersion(app.ID, app.Version, map[string]interface{}{
		"status": models.ApplicationStatusPending,
	}))

	err = f.appRepo.UpdateWithVersion(app.ID, app.Version, map[string]interface{}{
		"status": models.ApplicationStatusDeclined,
	})
	assert.Error(t, err)
}
