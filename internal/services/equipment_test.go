package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/dto"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/events"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/eventbus"
)

func strPtr(s string) *string { return &s }

func newEquipmentFixture(clock func() time.Time) (*reconcilerFixture, *EquipmentService) {
	f := newReconcilerFixture(clock)
	svc := NewEquipmentService(f.eqRepo, f.schedRepo, f.orch, f.rec, f.bus, zap.NewNop())
	return f, svc
}

func TestCreateEquipmentGeneratesScheduleAndFollowUps(t *testing.T) {
	ctx := context.Background()
	f, svc := newEquipmentFixture(fixedClock(2025, time.June, 15))

	eq, err := svc.Create(ctx, dto.CreateEquipmentDTO{
		Code:         "EQ-001",
		Name:         "Compresor de tornillo",
		Brand:        "Atlas",
		Site:         "Planta 1",
		PurchaseDate: "2024-01-15",
		Interval:     "Cuatrimestral",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.StateActive, eq.State)
	assert.Equal(t, entities.IntervalFourMonthly, eq.Interval)

	s2024, err := f.schedRepo.Get(ctx, "EQ-001", 2024)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 20, 37}, s2024.ActiveWeeks())

	pending, err := f.fuRepo.ListPendingByCode(ctx, "EQ-001")
	require.NoError(t, err)
	assert.Len(t, pending, 6, "three weeks in 2024 plus three in 2025")
}

func TestCreateEquipmentValidations(t *testing.T) {
	ctx := context.Background()
	_, svc := newEquipmentFixture(fixedClock(2025, time.June, 15))

	_, err := svc.Create(ctx, dto.CreateEquipmentDTO{
		Code: "EQ-001", Name: "X", PurchaseDate: "15/01/2024", Interval: "Mensual",
	})
	assert.Error(t, err, "purchase date must be ISO formatted")

	_, err = svc.Create(ctx, dto.CreateEquipmentDTO{
		Code: "EQ-001", Name: "X", PurchaseDate: "2024-01-15", Interval: "Lustral",
	})
	assert.Error(t, err)
}

func TestCreateEquipmentDuplicateCode(t *testing.T) {
	ctx := context.Background()
	_, svc := newEquipmentFixture(fixedClock(2025, time.June, 15))

	in := dto.CreateEquipmentDTO{
		Code: "EQ-001", Name: "X", PurchaseDate: "2024-01-15", Interval: "Mensual",
	}
	_, err := svc.Create(ctx, in)
	require.NoError(t, err)

	_, err = svc.Create(ctx, in)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestUpdateEquipmentIntervalRegeneratesSchedules(t *testing.T) {
	ctx := context.Background()
	f, svc := newEquipmentFixture(fixedClock(2025, time.June, 15))

	_, err := svc.Create(ctx, dto.CreateEquipmentDTO{
		Code: "EQ-001", Name: "Compresor", PurchaseDate: "2024-01-15", Interval: "Cuatrimestral",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "EQ-001", dto.UpdateEquipmentDTO{
		Interval: strPtr("Semestral"),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.IntervalSemiannual, updated.Interval)

	s2024, err := f.schedRepo.Get(ctx, "EQ-001", 2024)
	require.NoError(t, err)
	assert.Equal(t, entities.IntervalSemiannual, s2024.Interval)
	assert.Equal(t, []int{3, 29}, s2024.ActiveWeeks())

	want := map[tuple]bool{
		{2024, 3}: true, {2024, 29}: true,
		{2025, 3}: true, {2025, 29}: true,
	}
	assert.Equal(t, want, pendingTuples(t, f.fuRepo, "EQ-001"))
}

func TestUpdateEquipmentInfoSyncsSchedules(t *testing.T) {
	ctx := context.Background()
	f, svc := newEquipmentFixture(fixedClock(2025, time.June, 15))

	_, err := svc.Create(ctx, dto.CreateEquipmentDTO{
		Code: "EQ-001", Name: "Compresor", PurchaseDate: "2024-01-15", Interval: "Anual",
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "EQ-001", dto.UpdateEquipmentDTO{
		Name: strPtr("Compresor reciprocante"),
		Site: strPtr("Planta 2"),
	})
	require.NoError(t, err)

	s2024, err := f.schedRepo.Get(ctx, "EQ-001", 2024)
	require.NoError(t, err)
	assert.Equal(t, "Compresor reciprocante", s2024.Name)
	assert.Equal(t, "Planta 2", s2024.Site)
}

func TestUpdateEquipmentInfoPublishesScheduleChanges(t *testing.T) {
	ctx := context.Background()
	f, svc := newEquipmentFixture(fixedClock(2025, time.June, 15))

	_, err := svc.Create(ctx, dto.CreateEquipmentDTO{
		Code: "EQ-001", Name: "Compresor", PurchaseDate: "2024-01-15", Interval: "Anual",
	})
	require.NoError(t, err)

	var got []events.SchedulesUpdatedEvent
	f.bus.Subscribe("schedules.updated", func(_ context.Context, ev eventbus.Event) error {
		got = append(got, ev.(events.SchedulesUpdatedEvent))
		return nil
	})

	// The sync rewrites the denormalized name on every schedule row; the
	// plan listeners have to hear about it even though no mask moved.
	_, err = svc.Update(ctx, "EQ-001", dto.UpdateEquipmentDTO{
		Name: strPtr("Compresor reciprocante"),
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "EQ-001", got[0].EquipmentCode)
	assert.ElementsMatch(t, []int{2024, 2025}, got[0].Years)

	// an update that touches nothing denormalized stays silent
	_, err = svc.Update(ctx, "EQ-001", dto.UpdateEquipmentDTO{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRetireEquipmentStopsGeneration(t *testing.T) {
	ctx := context.Background()
	f, svc := newEquipmentFixture(fixedClock(2025, time.June, 15))

	_, err := svc.Create(ctx, dto.CreateEquipmentDTO{
		Code: "EQ-001", Name: "Compresor", PurchaseDate: "2024-01-15", Interval: "Anual",
	})
	require.NoError(t, err)

	retired, err := svc.Retire(ctx, "EQ-001", dto.RetireEquipmentDTO{RetirementDate: "2025-06-01"})
	require.NoError(t, err)
	assert.Equal(t, entities.StateRetired, retired.State)
	require.True(t, retired.RetirementDate.Valid)
	assert.Equal(t, day(2025, time.June, 1), retired.RetirementDate.Time)

	// a later pass with the next-year window open adds nothing
	f.orch.WithClock(fixedClock(2025, time.November, 1))
	require.NoError(t, f.orch.EnsureAllUpToDate(ctx))
	_, err = f.schedRepo.Get(ctx, "EQ-001", 2026)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	// history stays
	_, err = f.schedRepo.Get(ctx, "EQ-001", 2024)
	assert.NoError(t, err)
}

func TestDeleteEquipment(t *testing.T) {
	ctx := context.Background()
	f, svc := newEquipmentFixture(fixedClock(2025, time.June, 15))

	_, err := svc.Create(ctx, dto.CreateEquipmentDTO{
		Code: "EQ-001", Name: "Compresor", PurchaseDate: "2024-01-15", Interval: "Anual",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "EQ-001"))
	_, err = f.eqRepo.GetByCode(ctx, "EQ-001")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	err = svc.Delete(ctx, "EQ-001")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
