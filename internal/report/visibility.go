package report

import "cafestock-backend/internal/models"

// VisiblePositions reduces the position list for the barista view: a
// position shows up only if the barista added it by hand this session, or it
// has a nonzero baseline (yesterday's ending stock or today's arrivals).
// Managers always see every active position. The filter only affects
// progress counters and the bulk-submission set, never persisted data.
func VisiblePositions(role models.UserRole, positions []models.Position, baseline map[uint]PreviousDay, manuallyAdded map[uint]bool) []models.Position {
	visible := make([]models.Position, 0, len(positions))
	for _, p := range positions {
		if !p.Active {
			continue
		}
		if role == models.RoleManager {
			visible = append(visible, p)
			continue
		}
		if manuallyAdded[p.ID] {
			visible = append(visible, p)
			continue
		}
		if b, ok := baseline[p.ID]; ok && (b.EndingStock != 0 || b.Arrivals != 0) {
			visible = append(visible, p)
		}
	}
	return visible
}
