package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/dto"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/repositories"
)

func newPlanFixture(clock func() time.Time, cache repositories.CacheRepositoryInterface) (*reconcilerFixture, *PlanService) {
	f := newReconcilerFixture(clock)
	svc := NewPlanService(f.schedRepo, f.fuRepo, cache, time.Minute, zap.NewNop()).WithClock(clock)
	return f, svc
}

func seedPlanEquipment(t *testing.T, f *reconcilerFixture) *entities.Equipment {
	t.Helper()
	ctx := context.Background()
	eq := testEquipment("EQ-001", day(2024, time.January, 15), entities.IntervalFourMonthly)
	require.NoError(t, f.eqRepo.Create(ctx, eq))
	require.NoError(t, f.orch.EnsureSchedules(ctx, eq))
	require.NoError(t, f.rec.Resync(ctx, eq, false))
	return eq
}

func findRow(t *testing.T, plan *dto.PlanDTO, code string) *dto.PlanRowDTO {
	t.Helper()
	for i := range plan.Rows {
		if plan.Rows[i].EquipmentCode == code {
			return &plan.Rows[i]
		}
	}
	t.Fatalf("no row for %s", code)
	return nil
}

func TestWeeklyPlanClassifiesCells(t *testing.T) {
	ctx := context.Background()
	// 2025-06-15 is in week 24: week 2 and 19 are past, week 37 future
	f, svc := newPlanFixture(fixedClock(2025, time.June, 15), nil)
	seedPlanEquipment(t, f)

	// execute week 19 inside its own window (May 5-11)
	fu, err := f.fuRepo.FindByTuple(ctx, "EQ-001", 19, 2025, entities.TypePreventive)
	require.NoError(t, err)
	fu.ExecutionDate.SetValid(day(2025, time.May, 7))
	fu.Status = entities.StatusOnTime
	require.NoError(t, f.fuRepo.Update(ctx, fu))

	plan, err := svc.WeeklyPlan(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2025, plan.Year)
	assert.Equal(t, 52, plan.Weeks)

	row := findRow(t, plan, "EQ-001")
	assert.Equal(t, entities.IntervalFourMonthly, row.Interval)
	require.Len(t, row.Cells, 3)

	byWeek := make(map[int]dto.PlanCellDTO)
	for _, cell := range row.Cells {
		byWeek[cell.Week] = cell
	}
	assert.Equal(t, entities.StatusNotDone, byWeek[2].Status)
	assert.Equal(t, entities.StatusOnTime, byWeek[19].Status)
	assert.Equal(t, entities.StatusPending, byWeek[37].Status)
	assert.True(t, byWeek[2].Programmed)
	require.NotNil(t, byWeek[19].FollowUpID)
	assert.Equal(t, fu.ID, *byWeek[19].FollowUpID)
}

func TestWeeklyPlanShowsUnprogrammedFollowUps(t *testing.T) {
	ctx := context.Background()
	f, svc := newPlanFixture(fixedClock(2025, time.June, 15), nil)
	seedPlanEquipment(t, f)

	// a manual preventive follow-up on a week the mask never marked
	manual := &entities.FollowUp{
		EquipmentCode:    "EQ-001",
		Week:             30,
		Year:             2025,
		Type:             entities.TypePreventive,
		Status:           entities.StatusPending,
		RegistrationDate: day(2025, time.June, 1),
	}
	require.NoError(t, f.fuRepo.Insert(ctx, manual))

	plan, err := svc.WeeklyPlan(ctx, 2025)
	require.NoError(t, err)

	row := findRow(t, plan, "EQ-001")
	require.Len(t, row.Cells, 4)
	var cell *dto.PlanCellDTO
	for i := range row.Cells {
		if row.Cells[i].Week == 30 {
			cell = &row.Cells[i]
		}
	}
	require.NotNil(t, cell)
	assert.False(t, cell.Programmed)
	assert.Equal(t, entities.StatusPending, cell.Status)
}

func TestWeeklyPlanUsesCache(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	f, svc := newPlanFixture(fixedClock(2025, time.June, 15), cache)
	seedPlanEquipment(t, f)

	first, err := svc.WeeklyPlan(ctx, 2025)
	require.NoError(t, err)
	assert.NotEmpty(t, cache.items[PlanCacheKey(2025)])

	// mutate storage behind the cache; the cached grid is served as-is
	require.NoError(t, f.schedRepo.DeleteByCode(ctx, "EQ-001"))
	second, err := svc.WeeklyPlan(ctx, 2025)
	require.NoError(t, err)
	assert.Equal(t, len(first.Rows), len(second.Rows))
}
