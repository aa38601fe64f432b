package report

import (
	"errors"
	"time"

	"cafestock-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrForbidden     = errors.New("not allowed for this role")
	ErrReportLocked  = errors.New("report is locked")
	ErrNegativeStock = errors.New("ending stock cannot be negative")
	ErrNothingToFile = errors.New("report needs at least one position with ending stock above zero")
	ErrNotFound      = errors.New("report not found")
)

// FindReport returns the report row for a date and owner, or nil when none
// exists yet (the NO_REPORT state).
func FindReport(db *gorm.DB, reportDate time.Time, baristaID uint) (*models.DailyReport, error) {
	var rep models.DailyReport
	err := db.
		Where("report_date = ? AND barista_id = ?", DateOnly(reportDate), baristaID).
		First(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// ensureReport creates the report row lazily on the first persisted
// mutation. Every write path goes through here, so edit and submit share a
// single creation rule.
func ensureReport(db *gorm.DB, reportDate time.Time, baristaID uint) (*models.DailyReport, error) {
	rep, err := FindReport(db, reportDate, baristaID)
	if err != nil {
		return nil, err
	}
	if rep != nil {
		return rep, nil
	}

	rep = &models.DailyReport{
		ReportDate: DateOnly(reportDate),
		BaristaID:  baristaID,
		IsLocked:   false,
	}
	if err := db.Create(rep).Error; err != nil {
		return nil, err
	}
	return rep, nil
}

// checkOwnership enforces the access invariant: a barista only ever touches
// their own report, a manager may act on anyone's.
func checkOwnership(role models.UserRole, actorID, ownerID uint) error {
	if role == models.RoleManager {
		return nil
	}
	if actorID != ownerID {
		return ErrForbidden
	}
	return nil
}

// UpsertItem persists one counted ending stock, creating the report row if
// needed and recomputing the write-off against the current baseline. Keyed
// on (report_id, position_id), last write wins.
func UpsertItem(db *gorm.DB, role models.UserRole, actorID uint, reportDate time.Time, ownerID, positionID uint, endingStock float64) (*models.ReportItem, error) {
	if err := checkOwnership(role, actorID, ownerID); err != nil {
		return nil, err
	}
	if endingStock < 0 {
		return nil, ErrNegativeStock
	}

	rep, err := ensureReport(db, reportDate, ownerID)
	if err != nil {
		return nil, err
	}
	if rep.IsLocked && role != models.RoleManager {
		return nil, ErrReportLocked
	}

	baseline, err := LoadBaseline(db, reportDate, ownerID)
	if err != nil {
		return nil, err
	}

	item := models.ReportItem{
		ReportID:    rep.ID,
		PositionID:  positionID,
		EndingStock: endingStock,
		WriteOff:    CalculateWriteOff(baseline.PreviousFor(positionID), endingStock),
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "report_id"}, {Name: "position_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"ending_stock", "write_off", "updated_at"}),
	}).Create(&item).Error
	if err != nil {
		return nil, err
	}

	return &item, nil
}

// Submit runs the DRAFT -> LOCKED transition: persist all pending drafts
// with computed write-offs, lock the report, then fire the notification
// rules. The steps are sequential, not one transaction — a crash after the
// item upsert leaves an unlocked, resubmittable report; notification
// failures never roll back the submit.
func Submit(db *gorm.DB, role models.UserRole, actorID uint, reportDate time.Time, ownerID uint, drafts map[uint]float64) (*models.DailyReport, error) {
	if err := checkOwnership(role, actorID, ownerID); err != nil {
		return nil, err
	}
	for _, ending := range drafts {
		if ending < 0 {
			return nil, ErrNegativeStock
		}
	}

	existing, err := FindReport(db, reportDate, ownerID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsLocked && role != models.RoleManager {
		return nil, ErrReportLocked
	}

	// At least one counted position must have stock above zero, across the
	// pending drafts and anything already persisted.
	hasCounted := false
	for _, ending := range drafts {
		if ending > 0 {
			hasCounted = true
			break
		}
	}
	if !hasCounted && existing != nil {
		var persisted []models.ReportItem
		if err := db.Where("report_id = ? AND ending_stock > 0", existing.ID).Limit(1).Find(&persisted).Error; err != nil {
			return nil, err
		}
		hasCounted = len(persisted) > 0
	}
	if !hasCounted {
		return nil, ErrNothingToFile
	}

	rep, err := ensureReport(db, reportDate, ownerID)
	if err != nil {
		return nil, err
	}

	baseline, err := LoadBaseline(db, reportDate, ownerID)
	if err != nil {
		return nil, err
	}

	items := make([]models.ReportItem, 0, len(drafts))
	for positionID, ending := range drafts {
		items = append(items, models.ReportItem{
			ReportID:    rep.ID,
			PositionID:  positionID,
			EndingStock: ending,
			WriteOff:    CalculateWriteOff(baseline.PreviousFor(positionID), ending),
		})
	}
	if len(items) > 0 {
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "report_id"}, {Name: "position_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"ending_stock", "write_off", "updated_at"}),
		}).Create(&items).Error
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	rep.IsLocked = true
	rep.SubmittedAt = &now
	if err := db.Model(rep).Updates(map[string]any{
		"is_locked":    true,
		"submitted_at": now,
	}).Error; err != nil {
		return nil, err
	}

	// Best effort from here on: the submit already succeeded.
	if err := EvaluateSubmit(db, rep, actorID, baseline); err != nil {
		log.Error().Err(err).Uint("report_id", rep.ID).Msg("notification rules failed after submit")
	}

	return rep, nil
}

// SetLocked toggles LOCKED <-> DRAFT. Manager only, reversible any number
// of times.
func SetLocked(db *gorm.DB, role models.UserRole, reportID uint, locked bool) (*models.DailyReport, error) {
	if role != models.RoleManager {
		return nil, ErrForbidden
	}

	var rep models.DailyReport
	if err := db.First(&rep, reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := db.Model(&rep).Update("is_locked", locked).Error; err != nil {
		return nil, err
	}
	rep.IsLocked = locked
	return &rep, nil
}

// Delete removes a report and its items. Managers may delete any report; a
// barista only their own unlocked draft.
func Delete(db *gorm.DB, role models.UserRole, actorID, reportID uint) error {
	var rep models.DailyReport
	if err := db.First(&rep, reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if role != models.RoleManager {
		if rep.BaristaID != actorID {
			return ErrForbidden
		}
		if rep.IsLocked {
			return ErrReportLocked
		}
	}

	if err := db.Where("report_id = ?", rep.ID).Delete(&models.ReportItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&rep).Error
}
