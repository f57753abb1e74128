package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"kanbanly/models"
)

// InvitationWorker sweeps expired, unaccepted team invitations.
type InvitationWorker struct {
	db     *gorm.DB
	logger *log.Logger
}

func NewInvitationWorker(db *gorm.DB, logger *log.Logger) *InvitationWorker {
	return &InvitationWorker{
		db:     db,
		logger: logger,
	}
}

func (iw *InvitationWorker) Start(ctx context.Context) {
	iw.logger.Println("Starting invitation worker...")
	ticker := time.NewTicker(6 * time.Hour)

	for {
		select {
		case <-ticker.C:
			iw.sweepExpired()
		case <-ctx.Done():
			iw.logger.Println("Stopping invitation worker...")
			ticker.Stop()
			return
		}
	}
}

func (iw *InvitationWorker) sweepExpired() {
	result := iw.db.
		Where("accepted_at IS NULL AND expires_at < ?", time.Now()).
		Delete(&models.TeamInvitation{})
	if result.Error != nil {
		iw.logger.Printf("Failed to sweep expired invitations: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		iw.logger.Printf("Removed %d expired invitations", result.RowsAffected)
	}
}
