package report_test

import (
	"testing"

	"cafestock-backend/internal/models"
	"cafestock-backend/internal/report"

	"github.com/stretchr/testify/assert"
)

func visibleIDs(positions []models.Position) []uint {
	ids := make([]uint, 0, len(positions))
	for _, p := range positions {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestVisiblePositions_ManagerSeesAllActive(t *testing.T) {
	pos := []models.Position{
		{ID: 1, Active: true},
		{ID: 2, Active: true},
		{ID: 3, Active: false},
	}

	visible := report.VisiblePositions(models.RoleManager, pos, nil, nil)
	assert.Equal(t, []uint{1, 2}, visibleIDs(visible))
}

func TestVisiblePositions_BaristaHidesZeroBaseline(t *testing.T) {
	// GIVEN: position 1 with yesterday stock, 2 with arrivals, 3 with
	// neither
	// WHEN: filtering for a barista
	// THEN: 3 is hidden

	pos := []models.Position{
		{ID: 1, Active: true},
		{ID: 2, Active: true},
		{ID: 3, Active: true},
	}
	baseline := map[uint]report.PreviousDay{
		1: {EndingStock: 4},
		2: {Arrivals: 2},
		3: {},
	}

	visible := report.VisiblePositions(models.RoleBarista, pos, baseline, nil)
	assert.Equal(t, []uint{1, 2}, visibleIDs(visible))
}

func TestVisiblePositions_ManuallyAddedAlwaysVisible(t *testing.T) {
	pos := []models.Position{{ID: 3, Active: true}}

	visible := report.VisiblePositions(models.RoleBarista, pos, nil, map[uint]bool{3: true})
	assert.Equal(t, []uint{3}, visibleIDs(visible))
}

func TestVisiblePositions_InactiveNeverVisible(t *testing.T) {
	pos := []models.Position{{ID: 3, Active: false}}
	baseline := map[uint]report.PreviousDay{3: {EndingStock: 9}}

	visible := report.VisiblePositions(models.RoleBarista, pos, baseline, map[uint]bool{3: true})
	assert.Empty(t, visible)
}
