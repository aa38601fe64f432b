package notify

import (
	"cafestock-backend/internal/auth"
	"cafestock-backend/internal/database"
	"cafestock-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type NotificationResponse struct {
	ID        uint                    `json:"id"`
	Type      models.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	RelatedID uint                    `json:"related_id"`
	IsRead    bool                    `json:"is_read"`
	CreatedAt string                  `json:"created_at"`
}

// GET /api/notifications?unread=true
func ListNotificationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		query := database.DB.Where("user_id = ?", userID)
		if c.Query("unread") == "true" {
			query = query.Where("is_read = ?", false)
		}

		var notifications []models.Notification
		if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list notifications")
		}

		resp := make([]NotificationResponse, 0, len(notifications))
		for _, n := range notifications {
			resp = append(resp, NotificationResponse{
				ID:        n.ID,
				Type:      n.Type,
				Message:   n.Message,
				RelatedID: n.RelatedID,
				IsRead:    n.IsRead,
				CreatedAt: n.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}

// POST /api/notifications/:id/read
func MarkReadHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var n models.Notification
		if err := database.DB.First(&n, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Notification not found")
		}

		if err := database.DB.Model(&n).Update("is_read", true).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not mark notification as read")
		}

		return c.JSON(fiber.Map{
			"id":      n.ID,
			"is_read": true,
		})
	}
}

// POST /api/notifications/read-all
func MarkAllReadHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		res := database.DB.Model(&models.Notification{}).
			Where("user_id = ? AND is_read = ?", userID, false).
			Update("is_read", true)
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not mark notifications as read")
		}

		return c.JSON(fiber.Map{
			"updated": res.RowsAffected,
		})
	}
}
