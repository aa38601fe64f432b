package models

import "time"

// DailyReport: one per (report_date, barista). Created lazily on the first
// persisted mutation; IsLocked=true after submit, manager can toggle back.
type DailyReport struct {
	ID          uint         `gorm:"primaryKey"`
	ReportDate  time.Time    `gorm:"uniqueIndex:idx_reports_date_barista;not null"`
	BaristaID   uint         `gorm:"uniqueIndex:idx_reports_date_barista;not null"`
	Barista     User         `gorm:"foreignKey:BaristaID"`
	IsLocked    bool         `gorm:"not null;default:false"`
	SubmittedAt *time.Time
	Items       []ReportItem `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReportItem: counted ending stock for one position on one report.
// Upsert keyed on (report_id, position_id), last write wins.
type ReportItem struct {
	ID          uint      `gorm:"primaryKey"`
	ReportID    uint      `gorm:"uniqueIndex:idx_items_report_position;not null"`
	PositionID  uint      `gorm:"uniqueIndex:idx_items_report_position;not null"`
	Position    Position
	EndingStock float64   `gorm:"not null"`
	WriteOff    float64   `gorm:"not null;default:0"` // derived, never negative
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
