package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position: a trackable inventory item (SKU). Never hard-deleted by report
// logic; managers soft-disable via Active=false.
//
// MinStock is the low-stock notification threshold; OrderQuantity the
// suggested reorder amount. A nil ShelfLifeDays marks the position as
// non-perishable. LastCost tracks the cost per unit of the latest batch.
type Position struct {
	ID            uint            `gorm:"primaryKey"`
	Name          string          `gorm:"size:100;not null;unique"`
	Category      string          `gorm:"size:100;index"`
	Unit          string          `gorm:"size:20;not null"`
	MinStock      float64         `gorm:"not null;default:0"`
	OrderQuantity float64         `gorm:"not null;default:0"`
	ShelfLifeDays *int
	Active        bool            `gorm:"not null;default:true"`
	LastCost      decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
