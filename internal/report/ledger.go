package report

import (
	"errors"
	"time"

	"cafestock-backend/internal/models"

	"gorm.io/gorm"
)

// Baseline is everything the report page needs from the ledger for one
// report date: yesterday's counted stock per position and today's arrivals.
type Baseline struct {
	// Previous holds, per position, yesterday's ending stock plus today's
	// arrivals. Positions absent from yesterday's report still get an entry
	// when something arrived today (ending stock 0).
	Previous map[uint]PreviousDay
	// YesterdayItems holds only positions actually counted on yesterday's
	// submitted report; this is the prefill source.
	YesterdayItems map[uint]float64
}

// LoadBaseline reads the previous-day baseline for a report owner and date:
// the ending stock of yesterday's locked report (0 when there is none) and
// the summed batch quantities arriving on the report date.
func LoadBaseline(db *gorm.DB, reportDate time.Time, baristaID uint) (*Baseline, error) {
	day := DateOnly(reportDate)
	yesterday := day.AddDate(0, 0, -1)

	baseline := &Baseline{
		Previous:       make(map[uint]PreviousDay),
		YesterdayItems: make(map[uint]float64),
	}

	var prevReport models.DailyReport
	err := db.
		Where("report_date = ? AND barista_id = ? AND is_locked = ?", yesterday, baristaID, true).
		First(&prevReport).Error
	if err == nil {
		var prevItems []models.ReportItem
		if err := db.Where("report_id = ?", prevReport.ID).Find(&prevItems).Error; err != nil {
			return nil, err
		}
		for _, it := range prevItems {
			baseline.YesterdayItems[it.PositionID] = it.EndingStock
			baseline.Previous[it.PositionID] = PreviousDay{EndingStock: it.EndingStock}
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var batches []models.InventoryBatch
	if err := db.
		Where("arrival_date >= ? AND arrival_date < ?", day, day.AddDate(0, 0, 1)).
		Find(&batches).Error; err != nil {
		return nil, err
	}
	for _, b := range batches {
		prev := baseline.Previous[b.PositionID]
		prev.Arrivals += b.Quantity
		baseline.Previous[b.PositionID] = prev
	}

	return baseline, nil
}

// PreviousFor returns the baseline for one position, or nil when the
// position has neither a yesterday entry nor arrivals today.
func (b *Baseline) PreviousFor(positionID uint) *PreviousDay {
	if prev, ok := b.Previous[positionID]; ok {
		return &prev
	}
	return nil
}

// DateOnly truncates a timestamp to midnight UTC, the canonical form for
// report and arrival dates.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
