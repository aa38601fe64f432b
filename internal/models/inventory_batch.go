package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryBatch: a received shipment for one position. Immutable after
// creation except for manager-only deletion.
type InventoryBatch struct {
	ID          uint            `gorm:"primaryKey"`
	PositionID  uint            `gorm:"index;not null"`
	Position    Position
	Quantity    float64         `gorm:"not null"`
	CostPerUnit decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	ArrivalDate time.Time       `gorm:"index;not null"`
	ExpiryDate  *time.Time      `gorm:"index"` // derived from arrival + shelf life when not given
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
