package workers

import (
	"context"
	"time"

	"vendorcover_backend/internal/logger"
	"vendorcover_backend/internal/repositories"
)

// JobWorker - фоновые задачи по заявкам
type JobWorker struct {
	jobRepo          repositories.HelpRequestRepository
	notificationRepo repositories.NotificationRepository
}

func NewJobWorker(
	jobRepo repositories.HelpRequestRepository,
	notificationRepo repositories.NotificationRepository,
) *JobWorker {
	return &JobWorker{
		jobRepo:          jobRepo,
		notificationRepo: notificationRepo,
	}
}

// Start запускает фоновые задачи для заявок
func (w *JobWorker) Start(ctx context.Context) {
	go w.cancelExpiredJobs(ctx)
	go w.cleanOldNotifications(ctx)
}

// cancelExpiredJobs отменяет открытые заявки с давно прошедшей датой события
func (w *JobWorker) cancelExpiredJobs(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("job worker stopped")
			return
		case <-ticker.C:
			cutoff := time.Now().AddDate(0, 0, -1)
			affected, err := w.jobRepo.CancelExpiredOpen(cutoff)
			logger.WorkerLog("job_worker", "cancel_expired_open", err)
			if err == nil && affected > 0 {
				logger.Info("auto-cancelled expired help requests", "count", affected)
			}
		}
	}
}

// cleanOldNotifications удаляет прочитанные уведомления старше 90 дней
func (w *JobWorker) cleanOldNotifications(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := w.notificationRepo.CleanOld(90)
			logger.WorkerLog("job_worker", "clean_old_notifications", err)
		}
	}
}
