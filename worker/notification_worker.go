package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"kanbanly/models"
)

// NotificationWorker prunes old read notifications so the table doesn't grow
// without bound.
type NotificationWorker struct {
	db     *gorm.DB
	logger *log.Logger
}

const notificationRetention = 30 * 24 * time.Hour

func NewNotificationWorker(db *gorm.DB, logger *log.Logger) *NotificationWorker {
	return &NotificationWorker{
		db:     db,
		logger: logger,
	}
}

func (nw *NotificationWorker) Start(ctx context.Context) {
	nw.logger.Println("Starting notification worker...")
	ticker := time.NewTicker(1 * time.Hour)

	for {
		select {
		case <-ticker.C:
			nw.pruneRead()
		case <-ctx.Done():
			nw.logger.Println("Stopping notification worker...")
			ticker.Stop()
			return
		}
	}
}

func (nw *NotificationWorker) pruneRead() {
	cutoff := time.Now().Add(-notificationRetention)

	result := nw.db.
		Where("read_at IS NOT NULL AND read_at < ?", cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		nw.logger.Printf("Failed to prune notifications: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		nw.logger.Printf("Pruned %d read notifications", result.RowsAffected)
	}
}
