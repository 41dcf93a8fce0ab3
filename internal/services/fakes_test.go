package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vendorcover_backend/internal/email"
	"vendorcover_backend/internal/models"
	"vendorcover_backend/internal/repositories"
)

// In-memory фейки репозиториев для юнит-тестов сервисов.
// Версионные записи повторяют контракт БД: несовпадение версии - конфликт.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) FindByID(id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateFields(userID string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	for k, v := range fields {
		switch k {
		case "subscription_granted_by_admin":
			u.SubscriptionGrantedByAdmin = v.(bool)
		case "subscription_status":
			u.SubscriptionStatus = v.(string)
		case "subscription_end_date":
			if v == nil {
				u.SubscriptionEndDate = nil
			} else {
				t := v.(time.Time)
				u.SubscriptionEndDate = &t
			}
		}
	}
	return nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*models.VendorProfile // по UserID
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]*models.VendorProfile{}}
}

func (r *fakeProfileRepo) Create(profile *models.VendorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.ID == "" {
		profile.ID = fmt.Sprintf("profile-%d", len(r.profiles)+1)
	}
	cp := *profile
	r.profiles[profile.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) FindByUserID(userID string) (*models.VendorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProfileRepo) Update(profile *models.VendorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *profile
	r.profiles[profile.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) UpdateFields(profileID string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.ID != profileID {
			continue
		}
		for k, v := range fields {
			switch k {
			case "approval_status":
				p.ApprovalStatus = v.(models.ApprovalStatus)
			case "rejection_reason":
				p.RejectionReason = v.(string)
			case "suspended":
				p.Suspended = v.(bool)
			case "risk_score":
				score := v.(float64)
				p.RiskScore = &score
			case "risk_summary":
				p.RiskSummary = v.(string)
			}
		}
		return nil
	}
	return repositories.ErrProfileNotFound
}

func (r *fakeProfileRepo) ListByApprovalStatus(status models.ApprovalStatus, limit, offset int) ([]models.VendorProfile, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.VendorProfile
	for _, p := range r.profiles {
		if p.ApprovalStatus == status {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*models.HelpRequest
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[string]*models.HelpRequest{}}
}

func (r *fakeJobRepo) Create(job *models.HelpRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job.ID == "" {
		job.ID = fmt.Sprintf("job-%d", len(r.jobs)+1)
	}
	if job.Version == 0 {
		job.Version = 1
	}
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepo) FindByID(id string) (*models.HelpRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, repositories.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) ListOpen(limit, offset int) ([]models.HelpRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.HelpRequest
	for _, j := range r.jobs {
		if j.Status == models.JobStatusOpen && !j.Paused {
			out = append(out, *j)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeJobRepo) ListByRequester(requesterID string) ([]models.HelpRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.HelpRequest
	for _, j := range r.jobs {
		if j.RequesterID == requesterID {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) ListByAcceptedVendor(vendorID string) ([]models.HelpRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.HelpRequest
	for _, j := range r.jobs {
		if j.AcceptedVendorID != nil && *j.AcceptedVendorID == vendorID {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) UpdateFields(jobID string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return repositories.ErrJobNotFound
	}
	applyJobFields(j, fields)
	return nil
}

func (r *fakeJobRepo) UpdateWithVersion(jobID string, expectedVersion int, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return repositories.ErrJobNotFound
	}
	if j.Version != expectedVersion {
		return repositories.ErrVersionConflict
	}
	applyJobFields(j, fields)
	j.Version = expectedVersion + 1
	return nil
}

func (r *fakeJobRepo) CancelExpiredOpen(cutoff time.Time) (int64, error) {
	return 0, nil
}

func applyJobFields(j *models.HelpRequest, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "status":
			j.Status = v.(models.JobStatus)
		case "paused":
			j.Paused = v.(bool)
		case "accepted_vendor_id":
			if v == nil {
				j.AcceptedVendorID = nil
			} else if s, ok := v.(string); ok {
				j.AcceptedVendorID = &s
			}
		case "accepted_vendor_name":
			j.AcceptedVendorName = v.(string)
		case "pay_amount":
			j.PayAmount = v.(float64)
		case "job_status":
			j.JobStatus = v.(models.OperationalStatus)
		case "payment_status":
			j.PaymentStatus = v.(string)
		case "title":
			j.Title = v.(string)
		}
	}
}

type fakeAppRepo struct {
	mu   sync.Mutex
	apps map[string]*models.JobApplication
}

func newFakeAppRepo() *fakeAppRepo {
	return &fakeAppRepo{apps: map[string]*models.JobApplication{}}
}

func (r *fakeAppRepo) Create(app *models.JobApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.apps {
		if existing.HelpRequestID == app.HelpRequestID && existing.ApplicantID == app.ApplicantID {
			return repositories.ErrApplicationExists
		}
	}
	if app.ID == "" {
		app.ID = fmt.Sprintf("app-%d", len(r.apps)+1)
	}
	if app.Version == 0 {
		app.Version = 1
	}
	cp := *app
	r.apps[app.ID] = &cp
	return nil
}

func (r *fakeAppRepo) FindByID(id string) (*models.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[id]
	if !ok {
		return nil, repositories.ErrApplicationNotFound
	}
	cp := *a
	if a.CounterOffer != nil {
		offer := *a.CounterOffer
		cp.CounterOffer = &offer
	}
	return &cp, nil
}

func (r *fakeAppRepo) FindByJobAndApplicant(helpRequestID, applicantID string) (*models.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.apps {
		if a.HelpRequestID == helpRequestID && a.ApplicantID == applicantID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrApplicationNotFound
}

func (r *fakeAppRepo) ListByJob(helpRequestID string) ([]models.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.JobApplication
	for _, a := range r.apps {
		if a.HelpRequestID == helpRequestID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppRepo) ListByApplicant(applicantID string) ([]models.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.JobApplication
	for _, a := range r.apps {
		if a.ApplicantID == applicantID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppRepo) ListSiblings(helpRequestID, excludeID string) ([]models.JobApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.JobApplication
	for _, a := range r.apps {
		if a.HelpRequestID == helpRequestID && a.ID != excludeID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAppRepo) UpdateFields(appID string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[appID]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	applyAppFields(a, fields)
	return nil
}

func (r *fakeAppRepo) UpdateWithVersion(appID string, expectedVersion int, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.apps[appID]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	if a.Version != expectedVersion {
		return repositories.ErrVersionConflict
	}
	applyAppFields(a, fields)
	a.Version = expectedVersion + 1
	return nil
}

func (r *fakeAppRepo) Delete(appID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.apps[appID]; !ok {
		return repositories.ErrApplicationNotFound
	}
	delete(r.apps, appID)
	return nil
}

func applyAppFields(a *models.JobApplication, fields map[string]interface{}) {
	ensureOffer := func() *models.CounterOffer {
		if a.CounterOffer == nil {
			a.CounterOffer = &models.CounterOffer{}
		}
		return a.CounterOffer
	}
	for k, v := range fields {
		switch k {
		case "status":
			a.Status = v.(models.ApplicationStatus)
		case "counter_pay_amount":
			ensureOffer().PayAmount = v.(float64)
		case "counter_payment_terms":
			ensureOffer().PaymentTerms = v.(string)
		case "counter_upfront_amount":
			ensureOffer().UpfrontAmount = v.(float64)
		case "counter_completion_amount":
			ensureOffer().CompletionAmount = v.(float64)
		case "counter_notes":
			ensureOffer().Notes = v.(string)
		case "counter_sent_at":
			ensureOffer().SentAt = v.(time.Time)
		case "counter_from_poster":
			ensureOffer().FromPoster = v.(bool)
		case "final_agreed_amount":
			amount := v.(float64)
			a.FinalAgreedAmount = &amount
		case "final_payment_terms":
			a.FinalPaymentTerms = v.(string)
		case "final_upfront_amount":
			a.FinalUpfrontAmount = v.(float64)
		case "final_completion_amount":
			a.FinalCompletionAmount = v.(float64)
		}
	}
}

type fakeAgreementRepo struct {
	mu         sync.Mutex
	agreements map[string]*models.SubcontractAgreement
}

func newFakeAgreementRepo() *fakeAgreementRepo {
	return &fakeAgreementRepo{agreements: map[string]*models.SubcontractAgreement{}}
}

func (r *fakeAgreementRepo) Create(agreement *models.SubcontractAgreement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if agreement.ID == "" {
		agreement.ID = fmt.Sprintf("agreement-%d", len(r.agreements)+1)
	}
	cp := *agreement
	r.agreements[agreement.ID] = &cp
	return nil
}

func (r *fakeAgreementRepo) FindByID(id string) (*models.SubcontractAgreement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agreements[id]
	if !ok {
		return nil, repositories.ErrAgreementNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAgreementRepo) FindActiveByHelpRequest(helpRequestID string) (*models.SubcontractAgreement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.agreements {
		if a.HelpRequestID == helpRequestID && a.Status == models.AgreementStatusActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrAgreementNotFound
}

func (r *fakeAgreementRepo) UpdateFields(agreementID string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agreements[agreementID]
	if !ok {
		return repositories.ErrAgreementNotFound
	}
	for k, v := range fields {
		switch k {
		case "requester_confirmed":
			a.RequesterConfirmed = v.(bool)
		case "vendor_confirmed":
			a.VendorConfirmed = v.(bool)
		case "status":
			a.Status = v.(models.AgreementStatus)
		}
	}
	return nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = fmt.Sprintf("notification-%d", len(r.notifications)+1)
	cp := *n
	r.notifications = append(r.notifications, &cp)
	return nil
}

func (r *fakeNotificationRepo) CreateBulk(ns []*models.Notification) error {
	for _, n := range ns {
		if err := r.Create(n); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeNotificationRepo) FindByID(id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) ListByUser(userID string, limit, offset int) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) MarkAsRead(notificationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == notificationID {
			n.IsRead = true
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllAsRead(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) UnreadCount(userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) CleanOld(days int) error { return nil }

// byType возвращает уведомления данного типа
func (r *fakeNotificationRepo) byType(notificationType string) []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.notifications {
		if n.Type == notificationType {
			out = append(out, *n)
		}
	}
	return out
}

// fakeIdempotencyStore - захват ключа в памяти
type fakeIdempotencyStore struct {
	mu   sync.Mutex
	held map[string]bool
	// история всех захваченных ключей
	acquired []string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{held: map[string]bool{}}
}

func (s *fakeIdempotencyStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held[key] {
		return false, nil
	}
	s.held[key] = true
	s.acquired = append(s.acquired, key)
	return true, nil
}

func (s *fakeIdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.held, key)
	return nil
}

// newTestNotificationService - реальный сервис уведомлений поверх фейкового
// репозитория, email отключен
func newTestNotificationService(notificationRepo *fakeNotificationRepo, userRepo *fakeUserRepo) NotificationService {
	return NewNotificationService(notificationRepo, userRepo, &email.NoopProvider{})
}
