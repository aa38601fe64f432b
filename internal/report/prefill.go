package report

import "cafestock-backend/internal/models"

// ItemDraft is an unsaved report entry, keyed by position id in the draft
// map. Drafts live client-side until submit; prefill operates on them.
type ItemDraft struct {
	EndingStock float64 `json:"ending_stock"`
	WriteOff    float64 `json:"write_off"`
}

// PrefillableCount counts positions that have no draft entry yet but do have
// an entry on yesterday's submitted report.
func PrefillableCount(items map[uint]ItemDraft, prevItems map[uint]float64, positions []models.Position) int {
	count := 0
	for _, p := range positions {
		if _, filled := items[p.ID]; filled {
			continue
		}
		if _, ok := prevItems[p.ID]; ok {
			count++
		}
	}
	return count
}

// ApplyPrefillFromYesterday fills every prefillable position with yesterday's
// ending stock and a write-off computed against today's baseline. Existing
// draft entries are never overwritten, so applying twice changes nothing.
func ApplyPrefillFromYesterday(items map[uint]ItemDraft, prevItems map[uint]float64, prevDay map[uint]PreviousDay, positions []models.Position) map[uint]ItemDraft {
	result := make(map[uint]ItemDraft, len(items))
	for id, d := range items {
		result[id] = d
	}

	for _, p := range positions {
		if _, filled := result[p.ID]; filled {
			continue
		}
		prevStock, ok := prevItems[p.ID]
		if !ok {
			continue
		}

		var baseline *PreviousDay
		if pd, ok := prevDay[p.ID]; ok {
			baseline = &pd
		}

		result[p.ID] = ItemDraft{
			EndingStock: prevStock,
			WriteOff:    CalculateWriteOff(baseline, prevStock),
		}
	}

	return result
}
