package workers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"vendorcover_backend/internal/logger"
)

// SubscriptionWorker снимает истекшие admin-гранты подписки.
// Stripe-статусы этим воркером не трогаются: ими управляет биллинг-вебхук.
type SubscriptionWorker struct {
	db *gorm.DB
}

func NewSubscriptionWorker(db *gorm.DB) *SubscriptionWorker {
	return &SubscriptionWorker{db: db}
}

// Start запускает фоновые задачи для подписок
func (w *SubscriptionWorker) Start(ctx context.Context) {
	go w.expireAdminGrants(ctx)
}

func (w *SubscriptionWorker) expireAdminGrants(ctx context.Context) {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("subscription worker stopped")
			return
		case <-ticker.C:
			result := w.db.Exec(`
				UPDATE users
				SET subscription_granted_by_admin = false,
				    subscription_status = 'expired',
				    updated_at = NOW()
				WHERE subscription_granted_by_admin = true
				AND subscription_end_date IS NOT NULL
				AND subscription_end_date < NOW()
			`)
			logger.WorkerLog("subscription_worker", "expire_admin_grants", result.Error)
			if result.Error == nil && result.RowsAffected > 0 {
				logger.Info("expired admin-granted subscriptions", "count", result.RowsAffected)
			}
		}
	}
}
