package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendorcover_backend/internal/algorithms"
	"vendorcover_backend/internal/models"
	"vendorcover_backend/pkg/apperrors"
)

type agreementFixture struct {
	agreementRepo    *fakeAgreementRepo
	notificationRepo *fakeNotificationRepo
	svc              AgreementService
}

func newAgreementFixture(t *testing.T) *agreementFixture {
	t.Helper()
	agreementRepo := newFakeAgreementRepo()
	notificationRepo := newFakeNotificationRepo()
	userRepo := newFakeUserRepo()
	return &agreementFixture{
		agreementRepo:    agreementRepo,
		notificationRepo: notificationRepo,
		svc:              NewAgreementService(agreementRepo, newTestNotificationService(notificationRepo, userRepo)),
	}
}

func (f *agreementFixture) finalized(t *testing.T) *models.SubcontractAgreement {
	t.Helper()
	eventDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	amount := 800.0
	job := &models.HelpRequest{
		BaseModel:     models.BaseModel{ID: "job-1"},
		RequesterID:   "poster",
		Title:         "Wedding photography",
		ServiceType:   "photography",
		EventDate:     &eventDate,
		City:          "Austin",
		State:         "TX",
		PayAmount:     500,
		PaymentMethod: "card",
	}
	app := &models.JobApplication{
		BaseModel:             models.BaseModel{ID: "app-1"},
		HelpRequestID:         "job-1",
		ApplicantID:           "vendor",
		ApplicantName:         "Ace Photo",
		FinalAgreedAmount:     &amount,
		FinalPaymentTerms:     algorithms.PaymentTerms5050,
		FinalUpfrontAmount:    400,
		FinalCompletionAmount: 400,
	}
	agreement, err := f.svc.Finalize(context.Background(), job, app)
	require.NoError(t, err)
	return agreement
}

// TestFinalize_SnapshotsTerms - соглашение фиксирует согласованные условия,
// а не исходные данные заявки
func TestFinalize_SnapshotsTerms(t *testing.T) {
	t.Parallel()

	f := newAgreementFixture(t)
	agreement := f.finalized(t)

	assert.Equal(t, "job-1", agreement.HelpRequestID)
	assert.Equal(t, "poster", agreement.RequesterID)
	assert.Equal(t, "vendor", agreement.VendorID)
	assert.Equal(t, "Ace Photo", agreement.VendorName)
	assert.Equal(t, "Wedding photography", agreement.JobTitle)
	assert.Equal(t, 800.0, agreement.PayAmount, "финальная сумма, не исходная")
	assert.Equal(t, algorithms.PaymentTerms5050, agreement.PaymentTerms)
	assert.Equal(t, 400.0, agreement.UpfrontAmount)
	assert.Equal(t, 400.0, agreement.CompletionAmount)
	assert.Equal(t, models.AgreementStatusActive, agreement.Status)

	// Наём и есть подпись заказчика
	assert.True(t, agreement.RequesterConfirmed)
	assert.False(t, agreement.VendorConfirmed)
	assert.False(t, agreement.BothConfirmed())
}

func TestConfirm_VendorSignsOnce(t *testing.T) {
	t.Parallel()

	f := newAgreementFixture(t)
	agreement := f.finalized(t)

	confirmed, err := f.svc.Confirm(context.Background(), "vendor", agreement.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.VendorConfirmed)
	assert.True(t, confirmed.BothConfirmed())

	// Другая сторона уведомлена о подписи
	signed := f.notificationRepo.byType(models.NotificationTypeAgreementSigned)
	require.Len(t, signed, 1)
	assert.Equal(t, "poster", signed[0].UserID)

	// Повторное подтверждение идемпотентно: без новой записи и уведомления
	again, err := f.svc.Confirm(context.Background(), "vendor", agreement.ID)
	require.NoError(t, err)
	assert.True(t, again.VendorConfirmed)
	assert.Len(t, f.notificationRepo.byType(models.NotificationTypeAgreementSigned), 1)
}

func TestConfirm_NonPartyRejected(t *testing.T) {
	t.Parallel()

	f := newAgreementFixture(t)
	agreement := f.finalized(t)

	_, err := f.svc.Confirm(context.Background(), "stranger", agreement.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotAgreementParty)

	_, err = f.svc.GetByID(context.Background(), "stranger", agreement.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotAgreementParty)
}

// TestConfirm_VoidedRejected - аннулированное соглашение подписать нельзя
func TestConfirm_VoidedRejected(t *testing.T) {
	t.Parallel()

	f := newAgreementFixture(t)
	agreement := f.finalized(t)

	require.NoError(t, f.svc.Void(context.Background(), agreement.ID))

	_, err := f.svc.Confirm(context.Background(), "vendor", agreement.ID)
	assert.ErrorIs(t, err, apperrors.ErrAgreementVoided)

	// Аннулирование не удаляет запись: история сохраняется
	stored, err := f.agreementRepo.FindByID(agreement.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AgreementStatusVoided, stored.Status)
}

func TestGetActiveByJob(t *testing.T) {
	t.Parallel()

	f := newAgreementFixture(t)
	agreement := f.finalized(t)

	found, err := f.svc.GetActiveByJob(context.Background(), "poster", "job-1")
	require.NoError(t, err)
	assert.Equal(t, agreement.ID, found.ID)

	// После аннулирования активного соглашения по заявке нет
	require.NoError(t, f.svc.Void(context.Background(), agreement.ID))
	_, err = f.svc.GetActiveByJob(context.Background(), "poster", "job-1")
	assert.Error(t, err)
}
