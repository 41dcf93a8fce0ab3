package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"

	"vendorcover_backend/internal/algorithms"
	"vendorcover_backend/internal/logger"
	"vendorcover_backend/internal/models"
	"vendorcover_backend/internal/repositories"
	"vendorcover_backend/internal/services/dto"
	"vendorcover_backend/pkg/apperrors"
)

// JobService - жизненный цикл заявки на работу со стороны заказчика
// и рабочие операции нанятого вендора.
type JobService interface {
	Create(ctx context.Context, requesterID string, req *dto.CreateJobRequest) (*models.HelpRequest, error)
	Get(ctx context.Context, userID, jobID string) (*dto.JobResponse, error)
	ListOpen(ctx context.Context, userID string, page, limit int) (*dto.JobListResponse, error)
	ListMine(ctx context.Context, userID string) ([]dto.JobResponse, error)
	Update(ctx context.Context, requesterID, jobID string, req *dto.UpdateJobRequest) (*models.HelpRequest, error)
	SetPaused(ctx context.Context, requesterID, jobID string, paused bool) error

	UpdateOperationalStatus(ctx context.Context, vendorID, jobID string, status models.OperationalStatus) error
	CompleteJob(ctx context.Context, requesterID, jobID string) error
	ConfirmPayment(ctx context.Context, requesterID, jobID string) error
	AddSharedDocument(ctx context.Context, actorID, jobID string, doc *dto.AddSharedDocumentRequest) error

	// CancelJobPosting отменяет открытую заявку; все активные отклики
	// уведомляются до перевода заявки в cancelled.
	CancelJobPosting(ctx context.Context, requesterID, jobID string) error
	// CancelHireAndReopen отменяет наём: заявка возвращается в open,
	// данные вендора очищаются, действующее соглашение аннулируется.
	CancelHireAndReopen(ctx context.Context, requesterID, jobID string) error
}

type jobService struct {
	jobRepo         repositories.HelpRequestRepository
	appRepo         repositories.ApplicationRepository
	agreementRepo   repositories.AgreementRepository
	subscriptionSvc SubscriptionService
	agreementSvc    AgreementService
	notificationSvc NotificationService
	now             func() time.Time
}

func NewJobService(
	jobRepo repositories.HelpRequestRepository,
	appRepo repositories.ApplicationRepository,
	agreementRepo repositories.AgreementRepository,
	subscriptionSvc SubscriptionService,
	agreementSvc AgreementService,
	notificationSvc NotificationService,
) JobService {
	return &jobService{
		jobRepo:         jobRepo,
		appRepo:         appRepo,
		agreementRepo:   agreementRepo,
		subscriptionSvc: subscriptionSvc,
		agreementSvc:    agreementSvc,
		notificationSvc: notificationSvc,
		now:             time.Now,
	}
}

func (s *jobService) Create(ctx context.Context, requesterID string, req *dto.CreateJobRequest) (*models.HelpRequest, error) {
	if err := s.subscriptionSvc.RequireActiveAccess(ctx, requesterID); err != nil {
		return nil, err
	}

	paymentType := req.PaymentType
	if paymentType == "" {
		paymentType = models.PaymentTypeFlat
	}

	job := &models.HelpRequest{
		RequesterID:   requesterID,
		Title:         req.Title,
		Description:   req.Description,
		ServiceType:   req.ServiceType,
		HelpType:      req.HelpType,
		EventDate:     req.EventDate,
		City:          req.City,
		State:         req.State,
		PayAmount:     req.PayAmount,
		PaymentType:   paymentType,
		PaymentMethod: req.PaymentMethod,
		Status:        models.JobStatusOpen,
	}
	if err := s.jobRepo.Create(job); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "help request created",
		"help_request_id", job.ID, "requester_id", requesterID, "pay_amount", job.PayAmount)
	return job, nil
}

func (s *jobService) Get(ctx context.Context, userID, jobID string) (*dto.JobResponse, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	return s.toResponse(job, userID), nil
}

func (s *jobService) ListOpen(ctx context.Context, userID string, page, limit int) (*dto.JobListResponse, error) {
	offset := (page - 1) * limit
	jobs, total, err := s.jobRepo.ListOpen(limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	algorithms.SortByUrgency(jobs, s.now())

	resp := &dto.JobListResponse{
		Jobs:  make([]dto.JobResponse, 0, len(jobs)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i := range jobs {
		resp.Jobs = append(resp.Jobs, *s.toResponse(&jobs[i], userID))
	}
	return resp, nil
}

func (s *jobService) ListMine(ctx context.Context, userID string) ([]dto.JobResponse, error) {
	posted, err := s.jobRepo.ListByRequester(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	working, err := s.jobRepo.ListByAcceptedVendor(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	all := append(posted, working...)
	algorithms.SortByUrgency(all, s.now())

	result := make([]dto.JobResponse, 0, len(all))
	for i := range all {
		result = append(result, *s.toResponse(&all[i], userID))
	}
	return result, nil
}

// toResponse собирает полный контекст заявки и вычисляет отображаемый статус
func (s *jobService) toResponse(job *models.HelpRequest, userID string) *dto.JobResponse {
	var agreement *models.SubcontractAgreement
	if job.Status == models.JobStatusFilled || job.Status == models.JobStatusCompleted {
		if a, err := s.agreementRepo.FindActiveByHelpRequest(job.ID); err == nil {
			agreement = a
		}
	}

	var applications []models.JobApplication
	if job.Status == models.JobStatusOpen {
		if apps, err := s.appRepo.ListByJob(job.ID); err == nil {
			applications = apps
		}
	}

	now := s.now()
	info, ok := algorithms.ResolveJobStatus(job, userID, agreement, applications, now)
	if !ok {
		info = algorithms.StatusInfo{Label: string(job.Status), Severity: algorithms.SeverityInfo}
	}

	return &dto.JobResponse{
		HelpRequest:    *job,
		DisplayStatus:  info,
		ActionRequired: info.Severity == algorithms.SeverityAction,
		IsUrgent:       algorithms.IsUrgent(job.EventDate, now),
	}
}

func (s *jobService) Update(ctx context.Context, requesterID, jobID string, req *dto.UpdateJobRequest) (*models.HelpRequest, error) {
	job, err := s.ownedJob(requesterID, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusOpen {
		return nil, apperrors.ErrJobNotOpen
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.EventDate != nil {
		fields["event_date"] = *req.EventDate
	}
	if req.City != nil {
		fields["city"] = *req.City
	}
	if req.State != nil {
		fields["state"] = *req.State
	}
	if req.PayAmount != nil {
		fields["pay_amount"] = *req.PayAmount
	}
	if req.PaymentMethod != nil {
		fields["payment_method"] = *req.PaymentMethod
	}
	if len(fields) == 0 {
		return job, nil
	}

	if err := s.jobRepo.UpdateWithVersion(jobID, job.Version, fields); err != nil {
		return nil, mapVersionErr(err)
	}
	return s.jobRepo.FindByID(jobID)
}

func (s *jobService) SetPaused(ctx context.Context, requesterID, jobID string, paused bool) error {
	job, err := s.ownedJob(requesterID, jobID)
	if err != nil {
		return err
	}
	if job.Status != models.JobStatusOpen {
		return apperrors.ErrJobNotOpen
	}
	if err := s.jobRepo.UpdateWithVersion(jobID, job.Version, map[string]interface{}{
		"paused": paused,
	}); err != nil {
		return mapVersionErr(err)
	}
	logger.CtxInfo(ctx, "help request pause toggled", "help_request_id", jobID, "paused", paused)
	return nil
}

func (s *jobService) UpdateOperationalStatus(ctx context.Context, vendorID, jobID string, status models.OperationalStatus) error {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	if job.Status != models.JobStatusFilled {
		return apperrors.ErrInvalidStatus("job", "job is not in progress")
	}
	if job.AcceptedVendorID == nil || *job.AcceptedVendorID != vendorID {
		return apperrors.NewForbiddenError("only the hired vendor can update job progress")
	}

	if err := s.jobRepo.UpdateWithVersion(jobID, job.Version, map[string]interface{}{
		"job_status": status,
	}); err != nil {
		return mapVersionErr(err)
	}
	logger.TransitionLog("help_request", jobID, string(job.JobStatus), string(status), vendorID)
	return nil
}

func (s *jobService) CompleteJob(ctx context.Context, requesterID, jobID string) error {
	job, err := s.ownedJob(requesterID, jobID)
	if err != nil {
		return err
	}
	if job.Status != models.JobStatusFilled {
		return apperrors.ErrInvalidStatus("job", "only a filled job can be completed")
	}

	if err := s.jobRepo.UpdateWithVersion(jobID, job.Version, map[string]interface{}{
		"status":     models.JobStatusCompleted,
		"job_status": models.OperationalDone,
	}); err != nil {
		return mapVersionErr(err)
	}
	logger.TransitionLog("help_request", jobID,
		string(models.JobStatusFilled), string(models.JobStatusCompleted), requesterID)
	return nil
}

func (s *jobService) ConfirmPayment(ctx context.Context, requesterID, jobID string) error {
	job, err := s.ownedJob(requesterID, jobID)
	if err != nil {
		return err
	}
	if job.Status != models.JobStatusCompleted {
		return apperrors.ErrInvalidStatus("job", "payment is confirmed after completion")
	}
	if job.PaymentStatus == models.PaymentStatusPaid {
		return nil
	}

	if err := s.jobRepo.UpdateWithVersion(jobID, job.Version, map[string]interface{}{
		"payment_status": models.PaymentStatusPaid,
	}); err != nil {
		return mapVersionErr(err)
	}

	if job.AcceptedVendorID != nil {
		_ = s.notificationSvc.NotifyPaymentConfirmed(ctx, *job.AcceptedVendorID, job)
	}
	return nil
}

func (s *jobService) AddSharedDocument(ctx context.Context, actorID, jobID string, doc *dto.AddSharedDocumentRequest) error {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return apperrors.ErrNotFound(err)
	}
	isVendor := job.AcceptedVendorID != nil && *job.AcceptedVendorID == actorID
	if job.RequesterID != actorID && !isVendor {
		return apperrors.NewForbiddenError("only job parties can share documents")
	}

	var docs []models.SharedDocument
	if len(job.SharedDocuments) > 0 {
		if err := json.Unmarshal(job.SharedDocuments, &docs); err != nil {
			return apperrors.InternalError(err)
		}
	}
	docs = append(docs, models.SharedDocument{
		URL:        doc.URL,
		Name:       doc.Name,
		UploadedBy: actorID,
		UploadedAt: s.now(),
	})

	payload, err := json.Marshal(docs)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.jobRepo.UpdateWithVersion(jobID, job.Version, map[string]interface{}{
		"shared_documents": datatypes.JSON(payload),
	}); err != nil {
		return mapVersionErr(err)
	}
	return nil
}

func (s *jobService) CancelJobPosting(ctx context.Context, requesterID, jobID string) error {
	job, err := s.ownedJob(requesterID, jobID)
	if err != nil {
		return err
	}
	if job.Status != models.JobStatusOpen {
		return apperrors.ErrInvalidStatus("job", "only an open job can be cancelled")
	}

	// Сначала уведомления активным откликам, затем сам перевод в cancelled
	apps, err := s.appRepo.ListByJob(jobID)
	if err != nil {
		logger.CtxWithError(ctx, "failed to list applications before cancel", err, "help_request_id", jobID)
	}
	for i := range apps {
		if apps[i].IsTerminal() {
			continue
		}
		_ = s.notificationSvc.NotifyJobCancelled(ctx, apps[i].ApplicantID, job)
	}

	if err := s.jobRepo.UpdateWithVersion(jobID, job.Version, map[string]interface{}{
		"status": models.JobStatusCancelled,
	}); err != nil {
		return mapVersionErr(err)
	}
	logger.TransitionLog("help_request", jobID,
		string(models.JobStatusOpen), string(models.JobStatusCancelled), requesterID)
	return nil
}

func (s *jobService) CancelHireAndReopen(ctx context.Context, requesterID, jobID string) error {
	job, err := s.ownedJob(requesterID, jobID)
	if err != nil {
		return err
	}
	if job.Status != models.JobStatusFilled {
		return apperrors.ErrInvalidStatus("job", "only a filled job can be reopened")
	}

	cancelledVendorID := ""
	if job.AcceptedVendorID != nil {
		cancelledVendorID = *job.AcceptedVendorID
	}

	if err := s.jobRepo.UpdateWithVersion(jobID, job.Version, map[string]interface{}{
		"status":               models.JobStatusOpen,
		"accepted_vendor_id":   nil,
		"accepted_vendor_name": "",
		"job_status":           models.OperationalPending,
	}); err != nil {
		return mapVersionErr(err)
	}
	logger.TransitionLog("help_request", jobID,
		string(models.JobStatusFilled), string(models.JobStatusOpen), requesterID)

	// Соглашение отмененного найма аннулируется, не удаляется
	agreement, err := s.agreementRepo.FindActiveByHelpRequest(jobID)
	if err != nil {
		if !errors.Is(err, repositories.ErrAgreementNotFound) {
			logger.CtxWithError(ctx, "failed to load agreement on cancel hire", err, "help_request_id", jobID)
		}
	} else if voidErr := s.agreementSvc.Void(ctx, agreement.ID); voidErr != nil {
		logger.CtxWithError(ctx, "failed to void agreement on cancel hire", voidErr, "agreement_id", agreement.ID)
	}

	if cancelledVendorID != "" {
		_ = s.notificationSvc.NotifyJobCancelled(ctx, cancelledVendorID, job)
	}
	return nil
}

func (s *jobService) ownedJob(requesterID, jobID string) (*models.HelpRequest, error) {
	job, err := s.jobRepo.FindByID(jobID)
	if err != nil {
		return nil, apperrors.ErrNotFound(err)
	}
	if job.RequesterID != requesterID {
		return nil, apperrors.NewForbiddenError("not the owner of this job")
	}
	return job, nil
}
