package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cafestock-backend/internal/auth"
	"cafestock-backend/internal/database"
	"cafestock-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type ItemInput struct {
	PositionID  uint    `json:"position_id"`
	EndingStock float64 `json:"ending_stock"`
}

type UpsertItemRequest struct {
	Date        string  `json:"date"`       // "2026-08-28"
	BaristaID   *uint   `json:"barista_id"` // manager only, defaults to self
	PositionID  uint    `json:"position_id"`
	EndingStock float64 `json:"ending_stock"`
}

type SubmitReportRequest struct {
	Date      string      `json:"date"`
	BaristaID *uint       `json:"barista_id"`
	Items     []ItemInput `json:"items"`
}

type PrefillRequest struct {
	Date      string      `json:"date"`
	BaristaID *uint       `json:"barista_id"`
	Items     []ItemInput `json:"items"` // current unsaved drafts
}

type SetLockRequest struct {
	IsLocked bool `json:"is_locked"`
}

type ReportItemResponse struct {
	PositionID  uint    `json:"position_id"`
	EndingStock float64 `json:"ending_stock"`
	WriteOff    float64 `json:"write_off"`
}

type PositionViewResponse struct {
	ID       uint         `json:"id"`
	Name     string       `json:"name"`
	Category string       `json:"category"`
	Unit     string       `json:"unit"`
	MinStock float64      `json:"min_stock"`
	Previous *PreviousDay `json:"previous,omitempty"`
}

type ReportViewResponse struct {
	ReportID         *uint                  `json:"report_id"`
	Date             string                 `json:"date"`
	BaristaID        uint                   `json:"barista_id"`
	IsLocked         bool                   `json:"is_locked"`
	SubmittedAt      *string                `json:"submitted_at"`
	Items            []ReportItemResponse   `json:"items"`
	Positions        []PositionViewResponse `json:"positions"`
	PrefillableCount int                    `json:"prefillable_count"`
	FilledCount      int                    `json:"filled_count"`
	TotalCount       int                    `json:"total_count"`
}

// Manager edits to a locked report coalesce per position before hitting the
// store; a newer edit to the same position replaces the pending one.
var lockedEditDebounce = NewDebouncer(EditDebounceDelay)

// lockedEditKey scopes the debounce to one position on one report. The same
// position on another barista's or another day's report must never cancel a
// pending write.
func lockedEditKey(ownerID uint, date time.Time, positionID uint) string {
	return fmt.Sprintf("%d:%s:%d", ownerID, DateOnly(date).Format("2006-01-02"), positionID)
}

func parseReportDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "Date must be 'YYYY-MM-DD'")
	}
	return d, nil
}

// resolveOwner decides whose report is being addressed: baristas always their
// own, managers whoever they name (default self).
func resolveOwner(actorID uint, role models.UserRole, requested *uint) (uint, error) {
	if role == models.RoleManager {
		if requested != nil {
			return *requested, nil
		}
		return actorID, nil
	}
	if requested != nil && *requested != actorID {
		return 0, fiber.NewError(fiber.StatusForbidden, "Baristas can only access their own report")
	}
	return actorID, nil
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, "You are not allowed to perform this action")
	case errors.Is(err, ErrReportLocked):
		return fiber.NewError(fiber.StatusConflict, "Report is locked")
	case errors.Is(err, ErrNegativeStock):
		return fiber.NewError(fiber.StatusBadRequest, "Ending stock cannot be negative")
	case errors.Is(err, ErrNothingToFile):
		return fiber.NewError(fiber.StatusBadRequest, "At least one position with ending stock above zero is required")
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Report not found")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Report operation failed")
	}
}

// GET /api/daily-reports?date=2026-08-28&barista_id=3&added=1,5
func GetReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		date, err := parseReportDate(c.Query("date"))
		if err != nil {
			return err
		}

		var requested *uint
		if q := c.Query("barista_id"); q != "" {
			id, convErr := strconv.ParseUint(q, 10, 64)
			if convErr != nil {
				return fiber.NewError(fiber.StatusBadRequest, "barista_id must be numeric")
			}
			u := uint(id)
			requested = &u
		}
		ownerID, err := resolveOwner(actorID, role, requested)
		if err != nil {
			return err
		}

		// Positions the barista added by hand this session, passed back by
		// the client so hidden zero-baseline positions stay visible to them.
		manuallyAdded := make(map[uint]bool)
		if added := c.Query("added"); added != "" {
			for _, part := range strings.Split(added, ",") {
				if id, convErr := strconv.ParseUint(strings.TrimSpace(part), 10, 64); convErr == nil {
					manuallyAdded[uint(id)] = true
				}
			}
		}

		rep, err := FindReport(database.DB, date, ownerID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load report")
		}

		baseline, err := LoadBaseline(database.DB, date, ownerID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load baseline")
		}

		var positions []models.Position
		if err := database.DB.Where("active = ?", true).Order("name asc").Find(&positions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load positions")
		}

		items := make(map[uint]ItemDraft)
		resp := ReportViewResponse{
			Date:      date.Format("2006-01-02"),
			BaristaID: ownerID,
			Items:     make([]ReportItemResponse, 0),
		}
		if rep != nil {
			resp.ReportID = &rep.ID
			resp.IsLocked = rep.IsLocked
			if rep.SubmittedAt != nil {
				s := rep.SubmittedAt.Format(time.RFC3339)
				resp.SubmittedAt = &s
			}

			var stored []models.ReportItem
			if err := database.DB.Where("report_id = ?", rep.ID).Find(&stored).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not load report items")
			}
			for _, it := range stored {
				items[it.PositionID] = ItemDraft{EndingStock: it.EndingStock, WriteOff: it.WriteOff}
				resp.Items = append(resp.Items, ReportItemResponse{
					PositionID:  it.PositionID,
					EndingStock: it.EndingStock,
					WriteOff:    it.WriteOff,
				})
			}
		}

		visible := VisiblePositions(role, positions, baseline.Previous, manuallyAdded)
		resp.Positions = make([]PositionViewResponse, 0, len(visible))
		filled := 0
		for _, p := range visible {
			if _, ok := items[p.ID]; ok {
				filled++
			}
			resp.Positions = append(resp.Positions, PositionViewResponse{
				ID:       p.ID,
				Name:     p.Name,
				Category: p.Category,
				Unit:     p.Unit,
				MinStock: p.MinStock,
				Previous: baseline.PreviousFor(p.ID),
			})
		}
		resp.FilledCount = filled
		resp.TotalCount = len(visible)
		resp.PrefillableCount = PrefillableCount(items, baseline.YesterdayItems, visible)

		return c.JSON(resp)
	}
}

// PUT /api/daily-reports/items
func UpsertItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body UpsertItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.PositionID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "position_id is required")
		}
		if body.EndingStock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Ending stock cannot be negative")
		}

		date, err := parseReportDate(body.Date)
		if err != nil {
			return err
		}
		ownerID, err := resolveOwner(actorID, role, body.BaristaID)
		if err != nil {
			return err
		}

		rep, err := FindReport(database.DB, date, ownerID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load report")
		}

		// Manager edits to an already locked report are coalesced per
		// position: only the trailing value within the window is written.
		if rep != nil && rep.IsLocked && role == models.RoleManager {
			positionID := body.PositionID
			ending := body.EndingStock
			lockedEditDebounce.Schedule(lockedEditKey(ownerID, date, positionID), func() {
				if _, err := UpsertItem(database.DB, role, actorID, date, ownerID, positionID, ending); err != nil {
					log.Error().Err(err).Uint("position_id", positionID).Msg("debounced item write failed")
				}
			})
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
				"position_id":  positionID,
				"ending_stock": ending,
				"scheduled":    true,
			})
		}

		item, err := UpsertItem(database.DB, role, actorID, date, ownerID, body.PositionID, body.EndingStock)
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(ReportItemResponse{
			PositionID:  item.PositionID,
			EndingStock: item.EndingStock,
			WriteOff:    item.WriteOff,
		})
	}
}

// POST /api/daily-reports/submit
func SubmitReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body SubmitReportRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		date, err := parseReportDate(body.Date)
		if err != nil {
			return err
		}
		ownerID, err := resolveOwner(actorID, role, body.BaristaID)
		if err != nil {
			return err
		}

		drafts := make(map[uint]float64, len(body.Items))
		for _, it := range body.Items {
			if it.PositionID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "position_id is required for every item")
			}
			drafts[it.PositionID] = it.EndingStock
		}

		rep, err := Submit(database.DB, role, actorID, date, ownerID, drafts)
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(fiber.Map{
			"report_id":    rep.ID,
			"date":         rep.ReportDate.Format("2006-01-02"),
			"is_locked":    rep.IsLocked,
			"submitted_at": rep.SubmittedAt,
		})
	}
}

// POST /api/daily-reports/prefill
// Returns the drafts with yesterday's values filled in; nothing is
// persisted until submit.
func PrefillHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		var body PrefillRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		date, err := parseReportDate(body.Date)
		if err != nil {
			return err
		}
		ownerID, err := resolveOwner(actorID, role, body.BaristaID)
		if err != nil {
			return err
		}

		baseline, err := LoadBaseline(database.DB, date, ownerID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load baseline")
		}

		var positions []models.Position
		if err := database.DB.Where("active = ?", true).Find(&positions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not load positions")
		}

		drafts := make(map[uint]ItemDraft, len(body.Items))
		for _, it := range body.Items {
			drafts[it.PositionID] = ItemDraft{EndingStock: it.EndingStock}
		}

		filled := ApplyPrefillFromYesterday(drafts, baseline.YesterdayItems, baseline.Previous, positions)

		resp := make([]ReportItemResponse, 0, len(filled))
		for positionID, d := range filled {
			resp = append(resp, ReportItemResponse{
				PositionID:  positionID,
				EndingStock: d.EndingStock,
				WriteOff:    d.WriteOff,
			})
		}
		return c.JSON(fiber.Map{"items": resp})
	}
}

// POST /api/daily-reports/:id/lock (manager only)
func SetLockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		id, convErr := strconv.ParseUint(c.Params("id"), 10, 64)
		if convErr != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Report id must be numeric")
		}

		var body SetLockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		rep, err := SetLocked(database.DB, role, uint(id), body.IsLocked)
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(fiber.Map{
			"report_id": rep.ID,
			"is_locked": rep.IsLocked,
		})
	}
}

// DELETE /api/daily-reports/:id
func DeleteReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actorID, role, err := auth.CurrentUser(c)
		if err != nil {
			return err
		}

		id, convErr := strconv.ParseUint(c.Params("id"), 10, 64)
		if convErr != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Report id must be numeric")
		}

		if err := Delete(database.DB, role, actorID, uint(id)); err != nil {
			return mapServiceError(err)
		}

		return c.JSON(fiber.Map{
			"message": "Report deleted",
		})
	}
}
