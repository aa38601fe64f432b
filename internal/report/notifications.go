package report

import (
	"fmt"

	"cafestock-backend/internal/models"

	"gorm.io/gorm"
)

// HighWriteOffRatio and HighWriteOffFloor define the anomaly rule: a
// write-off is flagged when it exceeds half of the expected available stock
// AND is strictly above 2 units. The floor keeps tiny positions from
// spamming managers.
const (
	HighWriteOffRatio = 0.5
	HighWriteOffFloor = 2.0
)

// IsAnomalousWriteOff applies the high-write-off rule against a baseline.
// Without a baseline nothing is flagged — there is no expected usage to
// compare with.
func IsAnomalousWriteOff(prev *PreviousDay, writeOff float64) bool {
	if prev == nil {
		return false
	}
	expectedUsage := prev.EndingStock + prev.Arrivals
	return writeOff > expectedUsage*HighWriteOffRatio && writeOff > HighWriteOffFloor
}

// EvaluateSubmit runs the notification rules once, synchronously, right
// after a successful lock: low stock and high write-off per anomalous item,
// plus exactly one submission notice — each fanned out to every manager and
// written with one bulk insert per rule category. Resubmits after an unlock
// fire the same rules again; there is deliberately no dedup.
func EvaluateSubmit(db *gorm.DB, rep *models.DailyReport, submitterID uint, baseline *Baseline) error {
	var managers []models.User
	if err := db.Where("role = ?", models.RoleManager).Find(&managers).Error; err != nil {
		return fmt.Errorf("could not resolve managers: %w", err)
	}
	if len(managers) == 0 {
		return nil
	}

	var items []models.ReportItem
	if err := db.Preload("Position").Where("report_id = ?", rep.ID).Find(&items).Error; err != nil {
		return fmt.Errorf("could not load report items: %w", err)
	}

	var submitter models.User
	if err := db.First(&submitter, submitterID).Error; err != nil {
		return fmt.Errorf("could not load submitter: %w", err)
	}

	lowStock := make([]models.Notification, 0)
	highWriteOff := make([]models.Notification, 0)

	for _, it := range items {
		pos := it.Position

		if it.EndingStock < pos.MinStock {
			msg := fmt.Sprintf("%s: %g %s left, recommend reorder", pos.Name, it.EndingStock, pos.Unit)
			for _, m := range managers {
				lowStock = append(lowStock, models.Notification{
					UserID:    m.ID,
					Type:      models.NotificationLowStock,
					Message:   msg,
					RelatedID: pos.ID,
				})
			}
		}

		prev := baseline.PreviousFor(it.PositionID)
		if prev != nil {
			writeOff := CalculateWriteOff(prev, it.EndingStock)
			if IsAnomalousWriteOff(prev, writeOff) {
				msg := fmt.Sprintf("%s: write-off %g %s (yesterday %g + arrivals %g, counted %g)",
					pos.Name, writeOff, pos.Unit, prev.EndingStock, prev.Arrivals, it.EndingStock)
				for _, m := range managers {
					highWriteOff = append(highWriteOff, models.Notification{
						UserID:    m.ID,
						Type:      models.NotificationHighWriteOff,
						Message:   msg,
						RelatedID: pos.ID,
					})
				}
			}
		}
	}

	submitted := make([]models.Notification, 0, len(managers))
	msg := fmt.Sprintf("Daily report for %s submitted by %s", rep.ReportDate.Format("2006-01-02"), submitter.Name)
	for _, m := range managers {
		submitted = append(submitted, models.Notification{
			UserID:    m.ID,
			Type:      models.NotificationReportSubmitted,
			Message:   msg,
			RelatedID: rep.ID,
		})
	}

	for _, batch := range [][]models.Notification{lowStock, highWriteOff, submitted} {
		if len(batch) == 0 {
			continue
		}
		if err := db.Create(&batch).Error; err != nil {
			return fmt.Errorf("could not insert notifications: %w", err)
		}
	}

	return nil
}
