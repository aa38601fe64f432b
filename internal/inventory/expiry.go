package inventory

import (
	"fmt"
	"time"

	"cafestock-backend/internal/models"
	"cafestock-backend/internal/report"

	"gorm.io/gorm"
)

// ExpiringSoonDays is how many days before the expiry date a batch starts
// counting as expiring.
const ExpiringSoonDays = 2

type ExpiryStatus string

const (
	StatusFresh    ExpiryStatus = "fresh"
	StatusExpiring ExpiryStatus = "expiring"
	StatusExpired  ExpiryStatus = "expired"
)

// EffectiveExpiry resolves a batch's expiry date: the explicit one if set,
// otherwise arrival date + the position's shelf life. Nil means the batch
// never expires.
func EffectiveExpiry(batch *models.InventoryBatch, shelfLifeDays *int) *time.Time {
	if batch.ExpiryDate != nil {
		return batch.ExpiryDate
	}
	if shelfLifeDays == nil {
		return nil
	}
	d := batch.ArrivalDate.AddDate(0, 0, *shelfLifeDays)
	return &d
}

// ClassifyExpiry buckets a batch by its expiry date relative to today.
func ClassifyExpiry(expiry *time.Time, today time.Time) ExpiryStatus {
	if expiry == nil {
		return StatusFresh
	}
	if expiry.Before(today) {
		return StatusExpired
	}
	if !expiry.After(today.AddDate(0, 0, ExpiringSoonDays)) {
		return StatusExpiring
	}
	return StatusFresh
}

// ScanBatchExpiry inspects every batch and writes batch_expiring /
// batch_expired notifications to each manager, one bulk insert per
// category. Returns how many notification rows were written.
func ScanBatchExpiry(db *gorm.DB, today time.Time) (int, error) {
	// Expiry dates are midnight-valued; a wall-clock timestamp would tip a
	// batch into expired on its own expiry day.
	today = report.DateOnly(today)

	var managers []models.User
	if err := db.Where("role = ?", models.RoleManager).Find(&managers).Error; err != nil {
		return 0, fmt.Errorf("could not resolve managers: %w", err)
	}
	if len(managers) == 0 {
		return 0, nil
	}

	var batches []models.InventoryBatch
	if err := db.Preload("Position").Find(&batches).Error; err != nil {
		return 0, fmt.Errorf("could not load batches: %w", err)
	}

	expiring := make([]models.Notification, 0)
	expired := make([]models.Notification, 0)

	for _, b := range batches {
		expiry := EffectiveExpiry(&b, b.Position.ShelfLifeDays)
		switch ClassifyExpiry(expiry, today) {
		case StatusExpiring:
			msg := fmt.Sprintf("%s: batch of %g %s expires on %s",
				b.Position.Name, b.Quantity, b.Position.Unit, expiry.Format("2006-01-02"))
			for _, m := range managers {
				expiring = append(expiring, models.Notification{
					UserID:    m.ID,
					Type:      models.NotificationBatchExpiring,
					Message:   msg,
					RelatedID: b.PositionID,
				})
			}
		case StatusExpired:
			msg := fmt.Sprintf("%s: batch of %g %s expired on %s",
				b.Position.Name, b.Quantity, b.Position.Unit, expiry.Format("2006-01-02"))
			for _, m := range managers {
				expired = append(expired, models.Notification{
					UserID:    m.ID,
					Type:      models.NotificationBatchExpired,
					Message:   msg,
					RelatedID: b.PositionID,
				})
			}
		}
	}

	written := 0
	for _, batch := range [][]models.Notification{expiring, expired} {
		if len(batch) == 0 {
			continue
		}
		if err := db.Create(&batch).Error; err != nil {
			return written, fmt.Errorf("could not insert notifications: %w", err)
		}
		written += len(batch)
	}

	return written, nil
}
