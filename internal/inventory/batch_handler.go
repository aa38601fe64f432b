package inventory

import (
	"time"

	"cafestock-backend/internal/database"
	"cafestock-backend/internal/models"
	"cafestock-backend/internal/report"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateBatchRequest struct {
	PositionID  uint            `json:"position_id"`
	Quantity    float64         `json:"quantity"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	ArrivalDate string          `json:"arrival_date"` // "2026-08-28"
	ExpiryDate  *string         `json:"expiry_date"`  // optional, derived from shelf life when absent
}

type BatchResponse struct {
	ID           uint            `json:"id"`
	PositionID   uint            `json:"position_id"`
	PositionName string          `json:"position_name"`
	Unit         string          `json:"unit"`
	Quantity     float64         `json:"quantity"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	ArrivalDate  string          `json:"arrival_date"`
	ExpiryDate   *string         `json:"expiry_date"`
	Status       ExpiryStatus    `json:"status"`
	CreatedAt    string          `json:"created_at"`
}

func batchResponse(b models.InventoryBatch, today time.Time) BatchResponse {
	expiry := EffectiveExpiry(&b, b.Position.ShelfLifeDays)
	var expiryStr *string
	if expiry != nil {
		s := expiry.Format("2006-01-02")
		expiryStr = &s
	}
	return BatchResponse{
		ID:           b.ID,
		PositionID:   b.PositionID,
		PositionName: b.Position.Name,
		Unit:         b.Position.Unit,
		Quantity:     b.Quantity,
		CostPerUnit:  b.CostPerUnit,
		ArrivalDate:  b.ArrivalDate.Format("2006-01-02"),
		ExpiryDate:   expiryStr,
		Status:       ClassifyExpiry(expiry, today),
		CreatedAt:    b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/batches (manager only)
func CreateBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBatchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.PositionID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "position_id is required")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity must be above zero")
		}
		if body.CostPerUnit.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "cost_per_unit cannot be negative")
		}

		arrival, err := time.Parse("2006-01-02", body.ArrivalDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "arrival_date must be 'YYYY-MM-DD'")
		}

		var position models.Position
		if err := database.DB.First(&position, "id = ?", body.PositionID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Position not found")
		}

		var expiry *time.Time
		if body.ExpiryDate != nil && *body.ExpiryDate != "" {
			d, err := time.Parse("2006-01-02", *body.ExpiryDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "expiry_date must be 'YYYY-MM-DD'")
			}
			expiry = &d
		}

		batch := models.InventoryBatch{
			PositionID:  body.PositionID,
			Quantity:    body.Quantity,
			CostPerUnit: body.CostPerUnit,
			ArrivalDate: arrival,
			ExpiryDate:  expiry,
		}
		if batch.ExpiryDate == nil {
			batch.ExpiryDate = EffectiveExpiry(&batch, position.ShelfLifeDays)
		}

		if err := database.DB.Create(&batch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create batch")
		}

		// Latest received cost becomes the position's reference cost.
		if !body.CostPerUnit.IsZero() {
			if err := database.DB.Model(&position).Update("last_cost", body.CostPerUnit).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not update position cost")
			}
		}

		batch.Position = position
		return c.Status(fiber.StatusCreated).JSON(batchResponse(batch, report.DateOnly(time.Now())))
	}
}

// GET /api/batches?position_id=&date_from=&date_to=
func ListBatchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := database.DB.Preload("Position").Model(&models.InventoryBatch{})

		if positionID := c.Query("position_id"); positionID != "" {
			query = query.Where("position_id = ?", positionID)
		}
		if dateFrom := c.Query("date_from"); dateFrom != "" {
			if d, err := time.Parse("2006-01-02", dateFrom); err == nil {
				query = query.Where("arrival_date >= ?", d)
			}
		}
		if dateTo := c.Query("date_to"); dateTo != "" {
			if d, err := time.Parse("2006-01-02", dateTo); err == nil {
				query = query.Where("arrival_date < ?", d.AddDate(0, 0, 1))
			}
		}

		var batches []models.InventoryBatch
		if err := query.Order("arrival_date DESC, created_at DESC").Find(&batches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list batches")
		}

		today := report.DateOnly(time.Now())
		resp := make([]BatchResponse, 0, len(batches))
		for _, b := range batches {
			resp = append(resp, batchResponse(b, today))
		}
		return c.JSON(resp)
	}
}

// DELETE /api/batches/:id (manager only, full removal)
func DeleteBatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var batch models.InventoryBatch
		if err := database.DB.First(&batch, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Batch not found")
		}

		if err := database.DB.Delete(&batch).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete batch")
		}

		return c.JSON(fiber.Map{
			"message": "Batch deleted",
		})
	}
}

// POST /api/batches/expiry-scan (manager only)
// Walks every batch and notifies managers about expiring and expired ones.
func ExpiryScanHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		written, err := ScanBatchExpiry(database.DB, time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Expiry scan failed")
		}

		return c.JSON(fiber.Map{
			"notifications_written": written,
		})
	}
}
