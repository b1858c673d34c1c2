package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
)

func buildHistoryFile(t *testing.T, header []interface{}, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

// Header with accents and shuffled column order; matching is by
// normalized name, not position.
var historyHeader = []interface{}{
	"FechaRealizacion", "Código", "Nombre", "TipoMtno",
	"Descripción", "Responsable", "Costo", "Observaciones",
}

func historyRow(date, code, mtype, desc, resp, cost, obs string) []interface{} {
	return []interface{}{date, code, "Compresor", mtype, desc, resp, cost, obs}
}

type historyFixture struct {
	*reconcilerFixture
	svc *HistoricalImportService
}

func newHistoryFixture(t *testing.T) *historyFixture {
	t.Helper()
	f := newReconcilerFixture(fixedClock(2025, time.June, 15))
	eq := testEquipment("EQ-001", day(2024, time.January, 15), entities.IntervalFourMonthly)
	require.NoError(t, f.eqRepo.Create(context.Background(), eq))
	return &historyFixture{
		reconcilerFixture: f,
		svc:               NewHistoricalImportService(f.eqRepo, f.schedRepo, f.fuRepo, f.bus, zap.NewNop()),
	}
}

func TestHistoricalImport(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)

	buf := buildHistoryFile(t, historyHeader, [][]interface{}{
		historyRow("2023-05-16", "EQ-001", "Preventivo", "Cambio de filtros", "J. Pérez", "1500.50", ""),
		historyRow("16/05/2023", "EQ-001", "Correctivo", "Reparación de válvula", "J. Pérez", "", "urgente"),
		historyRow("2023-05-16", "EQ-404", "Preventivo", "", "", "", ""),
		historyRow("mayo 16", "EQ-001", "Preventivo", "", "", "", ""),
	})

	result, err := f.svc.ImportFile(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Accepted)
	assert.Equal(t, 2, result.Rejected)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "FechaRealizacion", result.Errors[0].Column)
	assert.Equal(t, "Codigo", result.Errors[1].Column)

	// May 16 2023 is week 20; a schedule for 2023 is created on the fly
	// with no recurrence of its own
	sched, err := f.schedRepo.Get(ctx, "EQ-001", 2023)
	require.NoError(t, err)
	assert.Equal(t, entities.IntervalNone, sched.Interval)
	assert.Equal(t, []int{20}, sched.ActiveWeeks())

	fu, err := f.fuRepo.FindByTuple(ctx, "EQ-001", 20, 2023, entities.TypePreventive)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusOnTime, fu.Status)
	assert.Equal(t, "Cambio de filtros", fu.Description)
	assert.InDelta(t, 1500.50, fu.Cost, 0.001)
	require.True(t, fu.ExecutionDate.Valid)
	assert.Equal(t, day(2023, time.May, 16), fu.ExecutionDate.Time)

	corr, err := f.fuRepo.FindByTuple(ctx, "EQ-001", 20, 2023, entities.TypeCorrective)
	require.NoError(t, err)
	assert.Equal(t, "Reparación de válvula", corr.Description)
}

func TestHistoricalImportMissingColumnRejectsFile(t *testing.T) {
	f := newHistoryFixture(t)

	header := []interface{}{"Codigo", "Nombre", "TipoMtno", "Descripcion", "Responsable", "Costo", "Observaciones"}
	buf := buildHistoryFile(t, header, nil)

	_, err := f.svc.ImportFile(context.Background(), buf)
	assert.Error(t, err)
}

func TestHistoricalImportNeverClearsWeeks(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)

	mask := make([]bool, 52)
	mask[4] = true // week 5 already marked
	require.NoError(t, f.schedRepo.Upsert(ctx, &entities.Schedule{
		EquipmentCode: "EQ-001",
		Year:          2023,
		Weeks:         mask,
		Interval:      entities.IntervalFourMonthly,
	}))

	buf := buildHistoryFile(t, historyHeader, [][]interface{}{
		historyRow("2023-05-16", "EQ-001", "Preventivo", "", "", "", ""),
	})
	_, err := f.svc.ImportFile(ctx, buf)
	require.NoError(t, err)

	sched, err := f.schedRepo.Get(ctx, "EQ-001", 2023)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 20}, sched.ActiveWeeks())
	assert.Equal(t, entities.IntervalFourMonthly, sched.Interval, "existing interval survives the merge")
}

func TestHistoricalImportBackfillsPendingFollowUp(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)

	pending := &entities.FollowUp{
		EquipmentCode:    "EQ-001",
		Week:             20,
		Year:             2023,
		Type:             entities.TypePreventive,
		Status:           entities.StatusPending,
		RegistrationDate: day(2023, time.May, 15),
	}
	require.NoError(t, f.fuRepo.CreatePending(ctx, pending))

	buf := buildHistoryFile(t, historyHeader, [][]interface{}{
		historyRow("2023-05-16", "EQ-001", "Preventivo", "Lubricación general", "M. Ruiz", "300", ""),
	})
	_, err := f.svc.ImportFile(ctx, buf)
	require.NoError(t, err)

	fu, err := f.fuRepo.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.StatusOnTime, fu.Status)
	assert.Equal(t, "Lubricación general", fu.Description)
	require.True(t, fu.ExecutionDate.Valid)
	assert.Equal(t, day(2023, time.May, 16), fu.ExecutionDate.Time)
}

func TestHistoricalImportExecutedTupleKeepsItsDate(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)

	done := &entities.FollowUp{
		EquipmentCode:    "EQ-001",
		Week:             20,
		Year:             2023,
		Type:             entities.TypePreventive,
		Status:           entities.StatusOnTime,
		RegistrationDate: day(2023, time.May, 15),
	}
	done.ExecutionDate.SetValid(day(2023, time.May, 17))
	require.NoError(t, f.fuRepo.Insert(ctx, done))

	buf := buildHistoryFile(t, historyHeader, [][]interface{}{
		historyRow("2023-05-16", "EQ-001", "Preventivo", "Nueva descripción", "", "", ""),
	})
	_, err := f.svc.ImportFile(ctx, buf)
	require.NoError(t, err)

	fu, err := f.fuRepo.GetByID(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nueva descripción", fu.Description, "non-date fields refresh")
	assert.Equal(t, day(2023, time.May, 17), fu.ExecutionDate.Time, "recorded execution date wins")
}

func TestHistoricalImportDuplicatePreventiveRowsUpdateOnce(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)

	// Both rows land in week 20; the second must update the stored
	// follow-up, not duplicate the tuple.
	buf := buildHistoryFile(t, historyHeader, [][]interface{}{
		historyRow("2023-05-16", "EQ-001", "Preventivo", "Cambio de filtros", "J. Pérez", "1500", ""),
		historyRow("2023-05-18", "EQ-001", "Preventivo", "Cambio de filtros y correas", "M. Ruiz", "1800", ""),
	})
	result, err := f.svc.ImportFile(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Accepted)
	assert.Empty(t, result.Errors)

	all, err := f.fuRepo.ListByCode(ctx, "EQ-001")
	require.NoError(t, err)
	var preventives []entities.FollowUp
	for _, fu := range all {
		if fu.Type == entities.TypePreventive {
			preventives = append(preventives, fu)
		}
	}
	require.Len(t, preventives, 1)

	fu := preventives[0]
	assert.Equal(t, "Cambio de filtros y correas", fu.Description, "later row refreshes the fields")
	assert.InDelta(t, 1800, fu.Cost, 0.001)
	require.True(t, fu.ExecutionDate.Valid)
	assert.Equal(t, day(2023, time.May, 16), fu.ExecutionDate.Time, "first recorded execution date wins")
}

func TestHistoricalImportAllowsDuplicateCorrectives(t *testing.T) {
	ctx := context.Background()
	f := newHistoryFixture(t)

	buf := buildHistoryFile(t, historyHeader, [][]interface{}{
		historyRow("2023-05-16", "EQ-001", "Correctivo", "Primera falla", "", "", ""),
		historyRow("2023-05-17", "EQ-001", "Correctivo", "Segunda falla", "", "", ""),
	})
	result, err := f.svc.ImportFile(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Accepted)

	all, err := f.fuRepo.ListByCode(ctx, "EQ-001")
	require.NoError(t, err)
	var correctives int
	for _, fu := range all {
		if fu.Type == entities.TypeCorrective {
			correctives++
		}
	}
	assert.Equal(t, 2, correctives)
}
