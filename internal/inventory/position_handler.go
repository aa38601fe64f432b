package inventory

import (
	"strings"

	"cafestock-backend/internal/database"
	"cafestock-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type PositionResponse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Unit          string          `json:"unit"`
	MinStock      float64         `json:"min_stock"`
	OrderQuantity float64         `json:"order_quantity"`
	ShelfLifeDays *int            `json:"shelf_life_days"`
	Active        bool            `json:"active"`
	LastCost      decimal.Decimal `json:"last_cost"`
}

type CreatePositionRequest struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Unit          string  `json:"unit"`
	MinStock      float64 `json:"min_stock"`
	OrderQuantity float64 `json:"order_quantity"`
	ShelfLifeDays *int    `json:"shelf_life_days"`
}

type UpdatePositionRequest struct {
	Name          *string  `json:"name"`
	Category      *string  `json:"category"`
	Unit          *string  `json:"unit"`
	MinStock      *float64 `json:"min_stock"`
	OrderQuantity *float64 `json:"order_quantity"`
	ShelfLifeDays *int     `json:"shelf_life_days"`
	Active        *bool    `json:"active"`
}

func positionResponse(p models.Position) PositionResponse {
	return PositionResponse{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Unit:          p.Unit,
		MinStock:      p.MinStock,
		OrderQuantity: p.OrderQuantity,
		ShelfLifeDays: p.ShelfLifeDays,
		Active:        p.Active,
		LastCost:      p.LastCost,
	}
}

// GET /api/positions?include_inactive=true
// Active positions by default; the full list for position management.
func ListPositionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Position{})
		if c.Query("include_inactive") != "true" {
			dbq = dbq.Where("active = ?", true)
		}

		var positions []models.Position
		if err := dbq.Order("name asc").Find(&positions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list positions")
		}

		res := make([]PositionResponse, 0, len(positions))
		for _, p := range positions {
			res = append(res, positionResponse(p))
		}
		return c.JSON(res)
	}
}

// POST /api/positions (manager only)
func CreatePositionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePositionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.Unit = strings.TrimSpace(body.Unit)
		body.Category = strings.TrimSpace(body.Category)

		if body.Name == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Name and unit are required")
		}
		if body.MinStock < 0 || body.OrderQuantity < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "min_stock and order_quantity cannot be negative")
		}
		if body.ShelfLifeDays != nil && *body.ShelfLifeDays <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "shelf_life_days must be positive")
		}

		p := models.Position{
			Name:          body.Name,
			Category:      body.Category,
			Unit:          body.Unit,
			MinStock:      body.MinStock,
			OrderQuantity: body.OrderQuantity,
			ShelfLifeDays: body.ShelfLifeDays,
			Active:        true,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create position")
		}

		return c.Status(fiber.StatusCreated).JSON(positionResponse(p))
	}
}

// PUT /api/positions/:id (manager only)
func UpdatePositionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Position
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Position not found")
		}

		var body UpdatePositionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Name cannot be empty")
			}
			p.Name = name
		}
		if body.Category != nil {
			p.Category = strings.TrimSpace(*body.Category)
		}
		if body.Unit != nil {
			unit := strings.TrimSpace(*body.Unit)
			if unit == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Unit cannot be empty")
			}
			p.Unit = unit
		}
		if body.MinStock != nil {
			if *body.MinStock < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "min_stock cannot be negative")
			}
			p.MinStock = *body.MinStock
		}
		if body.OrderQuantity != nil {
			if *body.OrderQuantity < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "order_quantity cannot be negative")
			}
			p.OrderQuantity = *body.OrderQuantity
		}
		if body.ShelfLifeDays != nil {
			if *body.ShelfLifeDays <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "shelf_life_days must be positive")
			}
			p.ShelfLifeDays = body.ShelfLifeDays
		}
		if body.Active != nil {
			p.Active = *body.Active
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update position")
		}

		return c.JSON(positionResponse(p))
	}
}

// DELETE /api/positions/:id (manager only)
// Soft-disable: report history keeps referencing the position.
func DeactivatePositionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Position
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Position not found")
		}

		if err := database.DB.Model(&p).Update("active", false).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not deactivate position")
		}

		return c.JSON(fiber.Map{
			"message": "Position deactivated",
		})
	}
}
