package report_test

import (
	"testing"
	"time"

	"cafestock-backend/internal/database"
	"cafestock-backend/internal/models"
	"cafestock-backend/internal/report"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, role models.UserRole) models.User {
	u := models.User{
		Name:         name,
		Email:        name + "@cafe.test",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createPosition(t *testing.T, db *gorm.DB, name string, minStock float64) models.Position {
	p := models.Position{
		Name:     name,
		Unit:     "kg",
		MinStock: minStock,
		Active:   true,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func reportDate(day int) time.Time {
	return time.Date(2026, time.August, day, 0, 0, 0, 0, time.UTC)
}

// submitYesterday files and locks a report for the day before `day`.
func submitYesterday(t *testing.T, db *gorm.DB, barista models.User, day int, stocks map[uint]float64) {
	_, err := report.Submit(db, barista.Role, barista.ID, reportDate(day-1), barista.ID, stocks)
	require.NoError(t, err)
}

func addBatch(t *testing.T, db *gorm.DB, positionID uint, quantity float64, arrival time.Time) {
	b := models.InventoryBatch{
		PositionID:  positionID,
		Quantity:    quantity,
		ArrivalDate: arrival,
	}
	require.NoError(t, db.Create(&b).Error)
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestUpsertItem_CreatesReportLazily(t *testing.T) {
	// GIVEN: no report row for the date
	// WHEN: the first item is persisted
	// THEN: an unlocked report row appears

	db := newTestDB(t)
	barista := createUser(t, db, "mira", models.RoleBarista)
	pos := createPosition(t, db, "espresso beans", 0)

	rep, err := report.FindReport(db, reportDate(28), barista.ID)
	require.NoError(t, err)
	require.Nil(t, rep)

	_, err = report.UpsertItem(db, barista.Role, barista.ID, reportDate(28), barista.ID, pos.ID, 3)
	require.NoError(t, err)

	rep, err = report.FindReport(db, reportDate(28), barista.ID)
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.False(t, rep.IsLocked)
	assert.Nil(t, rep.SubmittedAt)
}

func TestUpsertItem_ComputesWriteOffFromBaseline(t *testing.T) {
	// GIVEN: 5 counted yesterday, 2 arrived today
	// WHEN: 4 is counted today
	// THEN: the persisted write-off is 3

	db := newTestDB(t)
	barista := createUser(t, db, "mira", models.RoleBarista)
	pos := createPosition(t, db, "espresso beans", 0)

	submitYesterday(t, db, barista, 28, map[uint]float64{pos.ID: 5})
	addBatch(t, db, pos.ID, 2, reportDate(28))

	item, err := report.UpsertItem(db, barista.Role, barista.ID, reportDate(28), barista.ID, pos.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 3.0, item.WriteOff)
}

func TestUpsertItem_LastWriteWins(t *testing.T) {
	db := newTestDB(t)
	barista := createUser(t, db, "mira", models.RoleBarista)
	pos := createPosition(t, db, "espresso beans", 0)

	_, err := report.UpsertItem(db, barista.Role, barista.ID, reportDate(28), barista.ID, pos.ID, 3)
	require.NoError(t, err)
	_, err = report.UpsertItem(db, barista.Role, barista.ID, reportDate(28), barista.ID, pos.ID, 7)
	require.NoError(t, err)

	var items []models.ReportItem
	require.NoError(t, db.Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 7.0, items[0].EndingStock)
}

func TestUpsertItem_RejectsNegativeStock(t *testing.T) {
	db := newTestDB(t)
	barista := createUser(t, db, "mira", models.RoleBarista)
	pos := createPosition(t, db, "espresso beans", 0)

	_, err := report.UpsertItem(db, barista.Role, barista.ID, reportDate(28), barista.ID, pos.ID, -1)
	assert.ErrorIs(t, err, report.ErrNegativeStock)
}

func TestUpsertItem_BaristaCannotTouchOthersReport(t *testing.T) {
	db := newTestDB(t)
	mira := createUser(t, db, "mira", models.RoleBarista)
	jonas := createUser(t, db, "jonas", models.RoleBarista)
	pos := createPosition(t, db, "espresso beans", 0)

	_, err := report.UpsertItem(db, mira.Role, mira.ID, reportDate(28), jonas.ID, pos.ID, 3)
	assert.ErrorIs(t, err, report.ErrForbidden)
}

func TestUpsertItem_LockedReport(t *testing.T) {
	// GIVEN: a submitted (locked) report
	// WHEN: the barista edits vs. the manager edits
	// THEN: the barista is rejected, the manager's write lands

	db := newTestDB(t)
	barista := createUser(t, db, "mira", models.RoleBarista)
	manager := createUser(t, db, "vera", models.RoleManager)
	pos := createPosition(t, db, "espresso beans", 0)

	_, err := report.Submit(db, barista.Role, barista.ID, reportDate(28), barista.ID, map[uint]float64{pos.ID: 5})
	require.NoError(t, err)

	_, err = report.UpsertItem(db, barista.Role, barista.ID, reportDate(28), barista.ID, pos.ID, 2)
	assert.ErrorIs(t, err, report.ErrReportLocked)

	item, err := report.UpsertItem(db, manager.Role, manager.ID, reportDate(28), barista.ID, pos.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, item.EndingStock)
}

func TestSubmit_LocksReport(t *testing.T) {
	db := newTestDB(t)
	barista := createUser(t, db, "mira", models.RoleBarista)
	pos := createPosition(t, db, "espresso beans", 0)

	rep, err := report.Submit(db, barista.Role, barista.ID, reportDate(28), barista.ID, map[uint]float64{pos.ID: 5})
	require.NoError(t, err)

	assert.True(t, rep.IsLocked)
	require.NotNil(t, rep.SubmittedAt)

	var items []models.ReportItem
	require.NoError(t, db.Where("report_id = ?", rep.ID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 5.0, items[0].EndingStock)
}

func TestSubmit_RequiresACountedPosition(t *testing.T) {
	// All-zero drafts with nothing persisted cannot be submitted.
	db := newTestDB(t)
	barista := createUser(t, db, "mira", models.RoleBarista)
	pos := createPosition(t, db, "espresso beans", 0)

	_, err := report.Submit(db, barista.Role, barista.ID, reportDate(28), barista.ID, map[uint]float64{pos.ID: 0})
	assert.ErrorIs(t, err, report.ErrNothingToFile)

	_, err = report.Submit(db, barista.Role, barista.ID, reportDate(28), barista.ID, nil)
	assert.ErrorIs(t, err, report.ErrNothingToFile)
}

func TestSubmit_AcceptsAlreadyPersistedCount(t *testing.T) {
	// A zero draft is fine when a persisted item already has stock.
	db := newTestDB(t)
	barista := createUser(t, db, "mira", models.RoleBarista)
	beans := createPosition(t, db, "espresso beans", 0)
	milk := createPosition(t, db, "oat milk", 0)

	_, err := report.UpsertItem(db, barista.Role, barista.ID, reportDate(28), barista.ID, beans.ID, 5)
	require.NoError(t, err)

	rep, err := report.Submit(db, barista.Role, barista.ID, reportDate(28), barista.ID, map[uint]float64{milk.ID: 0})
	require.NoError(t, err)
	assert.True(t, rep.IsLocked)
}

func TestSubmit_ResubmitAfterUnlock(t *testing.T) {
	// Upsert semantics make resubmission idempotent: same position, new
	// count, still one row.
	db := newTestDB(t)
	barista := createUser(t, db, "mira", models.RoleBarista)
	manager := createUser(t, db, "vera", models.RoleManager)
	pos := createPosition(t, db, "espresso beans", 0)

	rep, err := report.Submit(db, barista.Role, barista.ID, reportDate(28), barista.ID, map[uint]float64{pos.ID: 5})
	require.NoError(t, err)

	_, err = report.Submit(db, barista.Role, barista.ID, reportDate(28), barista.ID, map[uint]float64{pos.ID: 6})
	assert.ErrorIs(t, err, report.ErrReportLocked)

	_, err = report.SetLocked(db, manager.Role, rep.ID, false)
	require.NoError(t, err)

	rep2, err := report.Submit(db, barista.Role, barista.ID, reportDate(28), barista.ID, map[uint]float64{pos.ID: 6})
	require.NoError(t, err)
	assert.Equal(t, rep.ID, rep2.ID)

	var items []models.ReportItem
	require.NoError(t, db.Where("report_id = ?", rep.ID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 6.0, items[0].EndingStock)
}

func TestSetLocked_ManagerOnly(t *testing.T) {
	db := newTestDB(t)
	barista := createUser(t, db, "mira", models.RoleBarista)
	manager := createUser(t, db, "vera", models.RoleManager)
	pos := createPosition(t, db, "espresso beans", 0)

	rep, err := report.Submit(db, barista.Role, barista.ID, reportDate(28), barista.ID, map[uint]float64{pos.ID: 5})
	require.NoError(t, err)

	_, err = report.SetLocked(db, barista.Role, rep.ID, false)
	assert.ErrorIs(t, err, report.ErrForbidden)

	unlocked, err := report.SetLocked(db, manager.Role, rep.ID, false)
	require.NoError(t, err)
	assert.False(t, unlocked.IsLocked)

	relocked, err := report.SetLocked(db, manager.Role, rep.ID, true)
	require.NoError(t, err)
	assert.True(t, relocked.IsLocked)
}

func TestDelete_Permissions(t *testing.T) {
	db := newTestDB(t)
	mira := createUser(t, db, "mira", models.RoleBarista)
	jonas := createUser(t, db, "jonas", models.RoleBarista)
	manager := createUser(t, db, "vera", models.RoleManager)
	pos := createPosition(t, db, "espresso beans", 0)

	// Barista can drop their own unlocked draft.
	_, err := report.UpsertItem(db, mira.Role, mira.ID, reportDate(28), mira.ID, pos.ID, 3)
	require.NoError(t, err)
	draft, err := report.FindReport(db, reportDate(28), mira.ID)
	require.NoError(t, err)
	require.NoError(t, report.Delete(db, mira.Role, mira.ID, draft.ID))

	// Not someone else's.
	locked, err := report.Submit(db, jonas.Role, jonas.ID, reportDate(28), jonas.ID, map[uint]float64{pos.ID: 5})
	require.NoError(t, err)
	assert.ErrorIs(t, report.Delete(db, mira.Role, mira.ID, locked.ID), report.ErrForbidden)

	// Not their own once locked.
	assert.ErrorIs(t, report.Delete(db, jonas.Role, jonas.ID, locked.ID), report.ErrReportLocked)

	// Manager deletes anything, items cascade.
	require.NoError(t, report.Delete(db, manager.Role, manager.ID, locked.ID))
	var count int64
	require.NoError(t, db.Model(&models.ReportItem{}).Where("report_id = ?", locked.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLoadBaseline(t *testing.T) {
	// GIVEN: a locked report yesterday (5 beans) and a batch arriving today
	// WHEN: loading the baseline for today
	// THEN: previous = {5, 2}, yesterday items = {beans: 5}

	db := newTestDB(t)
	barista := createUser(t, db, "mira", models.RoleBarista)
	pos := createPosition(t, db, "espresso beans", 0)

	submitYesterday(t, db, barista, 28, map[uint]float64{pos.ID: 5})
	addBatch(t, db, pos.ID, 2, reportDate(28))
	addBatch(t, db, pos.ID, 9, reportDate(27)) // yesterday's arrival, out of range

	baseline, err := report.LoadBaseline(db, reportDate(28), barista.ID)
	require.NoError(t, err)

	prev := baseline.PreviousFor(pos.ID)
	require.NotNil(t, prev)
	assert.Equal(t, 5.0, prev.EndingStock)
	assert.Equal(t, 2.0, prev.Arrivals)
	assert.Equal(t, 5.0, baseline.YesterdayItems[pos.ID])
}

func TestLoadBaseline_UnlockedYesterdayIgnored(t *testing.T) {
	// Only a submitted (locked) report counts as yesterday's baseline.
	db := newTestDB(t)
	barista := createUser(t, db, "mira", models.RoleBarista)
	pos := createPosition(t, db, "espresso beans", 0)

	_, err := report.UpsertItem(db, barista.Role, barista.ID, reportDate(27), barista.ID, pos.ID, 5)
	require.NoError(t, err)

	baseline, err := report.LoadBaseline(db, reportDate(28), barista.ID)
	require.NoError(t, err)
	assert.Nil(t, baseline.PreviousFor(pos.ID))
	assert.Empty(t, baseline.YesterdayItems)
}
