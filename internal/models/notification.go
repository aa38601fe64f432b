package models

import "time"

type NotificationType string

const (
	NotificationLowStock        NotificationType = "low_stock"
	NotificationHighWriteOff    NotificationType = "high_writeoff"
	NotificationReportSubmitted NotificationType = "report_submitted"
	NotificationBatchExpiring   NotificationType = "batch_expiring"
	NotificationBatchExpired    NotificationType = "batch_expired"
)

// Notification: append-only record addressed to a manager. Only IsRead is
// ever mutated after creation.
type Notification struct {
	ID        uint             `gorm:"primaryKey"`
	UserID    uint             `gorm:"index;not null"`
	Type      NotificationType `gorm:"size:30;not null"`
	Message   string           `gorm:"size:500;not null"`
	RelatedID uint             `gorm:"index"` // position or report id, depending on type
	IsRead    bool             `gorm:"not null;default:false"`
	CreatedAt time.Time
}
