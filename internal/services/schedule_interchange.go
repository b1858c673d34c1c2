package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/events"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/repositories"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/eventbus"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/isoweek"
)

// Fixed leading columns of the yearly interchange layout, followed by one
// column per ISO week named S1..S{52|53}.
var interchangeColumns = []string{"Codigo", "Nombre", "Marca", "Sede", "FrecuenciaMtto"}

const interchangeSheet = "Cronograma"

// ScheduleInterchangeService reads and writes the tabular yearly-plan
// format shared with external tooling.
type ScheduleInterchangeService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	scheduleRepo  repositories.ScheduleRepositoryInterface
	reconciler    *FollowUpReconciler
	bus           *eventbus.Bus
	logger        *zap.Logger
}

func NewScheduleInterchangeService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	scheduleRepo repositories.ScheduleRepositoryInterface,
	reconciler *FollowUpReconciler,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *ScheduleInterchangeService {
	return &ScheduleInterchangeService{
		equipmentRepo: equipmentRepo,
		scheduleRepo:  scheduleRepo,
		reconciler:    reconciler,
		bus:           bus,
		logger:        logger,
	}
}

// ExportYear renders every schedule of the year into a workbook.
func (s *ScheduleInterchangeService) ExportYear(ctx context.Context, year int) (*excelize.File, error) {
	schedules, err := s.scheduleRepo.ListByYear(ctx, year)
	if err != nil {
		return nil, apperrors.Wrap("listar cronogramas", err)
	}

	weekCount := isoweek.WeeksInYear(year)

	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, interchangeSheet); err != nil {
		return nil, apperrors.Wrap("renombrar hoja", err)
	}

	header := append([]string{}, interchangeColumns...)
	for week := 1; week <= weekCount; week++ {
		header = append(header, fmt.Sprintf("S%d", week))
	}
	if err := writeRow(f, 1, header); err != nil {
		return nil, err
	}

	for i := range schedules {
		sched := &schedules[i]
		row := []string{sched.EquipmentCode, sched.Name, sched.Brand, sched.Site, string(sched.Interval)}
		for week := 1; week <= weekCount; week++ {
			cell := ""
			if week <= len(sched.Weeks) && sched.Weeks[week-1] {
				cell = "X"
			}
			row = append(row, cell)
		}
		if err := writeRow(f, i+2, row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func writeRow(f *excelize.File, rowNum int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return apperrors.Wrap("coordenadas de celda", err)
		}
		if err := f.SetCellValue(interchangeSheet, cell, value); err != nil {
			return apperrors.Wrap("escribir celda", err)
		}
	}
	return nil
}

// ImportYear merges a yearly-plan workbook into the stored schedules. New
// weeks are OR-ed in; previously marked weeks never clear. After each
// accepted row the reconciler derives the pending follow-ups.
func (s *ScheduleInterchangeService) ImportYear(ctx context.Context, reader io.Reader, year int) (*HistoricalImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, apperrors.NewValidationError("no se pudo abrir el archivo: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewValidationError("el archivo no tiene hojas")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.Wrap("leer filas", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewValidationError("el archivo está vacío")
	}

	weekCount := isoweek.WeeksInYear(year)
	if err := ValidateInterchangeHeader(rows[0], weekCount); err != nil {
		return nil, err
	}

	result := &HistoricalImportResult{}
	changedCodes := make(map[string]bool)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if rowEmpty(row) {
			continue
		}
		changed, rowErr := s.importRow(ctx, row, rowNum, year, weekCount)
		if changed {
			// A rejected row may still have upserted its mask before the
			// reconciler failed; the listeners must hear about it anyway.
			changedCodes[strings.TrimSpace(row[0])] = true
		}
		if rowErr != nil {
			result.Errors = append(result.Errors, rowErr)
			result.Rejected++
			continue
		}
		result.Accepted++
	}

	// Mask changes must reach the listeners even when the reconciler found
	// nothing to do (a newly marked week already covered by an executed
	// follow-up still changes the grid).
	if s.bus != nil {
		for code := range changedCodes {
			s.bus.Publish(ctx, events.SchedulesUpdatedEvent{EquipmentCode: code, Years: []int{year}})
		}
	}
	return result, nil
}

// ValidateInterchangeHeader enforces the fixed layout: the five leading
// columns followed by S1..S{52|53}, exact-match and case-insensitive.
func ValidateInterchangeHeader(header []string, weekCount int) error {
	want := len(interchangeColumns) + weekCount
	if len(header) < want {
		return apperrors.NewValidationError("encabezado incompleto: se esperaban %d columnas, hay %d", want, len(header))
	}
	for i, name := range interchangeColumns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), name) {
			return apperrors.NewValidationError("columna %d: se esperaba %q, se encontró %q", i+1, name, header[i])
		}
	}
	for week := 1; week <= weekCount; week++ {
		got := strings.TrimSpace(header[len(interchangeColumns)+week-1])
		if !strings.EqualFold(got, fmt.Sprintf("S%d", week)) {
			return apperrors.NewValidationError("columna de semana %d: se esperaba %q, se encontró %q", week, fmt.Sprintf("S%d", week), got)
		}
	}
	// Exact match cuts both ways: surplus named columns usually mean the
	// file belongs to a year with a different week count.
	for i := want; i < len(header); i++ {
		if got := strings.TrimSpace(header[i]); got != "" {
			return apperrors.NewValidationError("columna inesperada %q después de S%d", got, weekCount)
		}
	}
	return nil
}

func (s *ScheduleInterchangeService) importRow(ctx context.Context, row []string, rowNum, year, weekCount int) (bool, *apperrors.ImportRowError) {
	get := func(idx int) string {
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	code := get(0)
	if code == "" {
		return false, &apperrors.ImportRowError{Row: rowNum, Column: "Codigo", Message: "código vacío"}
	}

	eq, err := s.equipmentRepo.GetByCode(ctx, code)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, &apperrors.ImportRowError{Row: rowNum, Column: "Codigo", Message: "código de equipo desconocido: " + code}
	}
	if err != nil {
		return false, &apperrors.ImportRowError{Row: rowNum, Message: "error consultando el equipo: " + err.Error()}
	}

	interval := entities.RecurrenceInterval(get(4))
	if !interval.Valid() {
		return false, &apperrors.ImportRowError{Row: rowNum, Column: "FrecuenciaMtto", Message: "frecuencia desconocida: " + get(4)}
	}

	weeks := make(map[int]bool)
	for week := 1; week <= weekCount; week++ {
		if get(len(interchangeColumns)+week-1) != "" {
			weeks[week] = true
		}
	}

	changed := false
	schedule, err := s.scheduleRepo.Get(ctx, code, year)
	if errors.Is(err, apperrors.ErrNotFound) {
		mask := make([]bool, weekCount)
		for week := range weeks {
			mask[week-1] = true
		}
		schedule = &entities.Schedule{
			EquipmentCode: code,
			Year:          year,
			Weeks:         mask,
			Interval:      interval,
			Name:          eq.Name,
			Brand:         eq.Brand,
			Site:          eq.Site,
		}
		if err := s.scheduleRepo.Upsert(ctx, schedule); err != nil {
			return false, &apperrors.ImportRowError{Row: rowNum, Message: "error guardando el cronograma: " + err.Error()}
		}
		changed = true
	} else if err != nil {
		return false, &apperrors.ImportRowError{Row: rowNum, Message: "error consultando el cronograma: " + err.Error()}
	} else {
		for week := range weeks {
			if week <= len(schedule.Weeks) && !schedule.Weeks[week-1] {
				schedule.Weeks[week-1] = true
				changed = true
			}
		}
		if changed {
			if err := s.scheduleRepo.Upsert(ctx, schedule); err != nil {
				return false, &apperrors.ImportRowError{Row: rowNum, Message: "error guardando el cronograma: " + err.Error()}
			}
		}
	}

	if err := s.reconciler.Resync(ctx, eq, false); err != nil {
		return changed, &apperrors.ImportRowError{Row: rowNum, Message: "error reconciliando seguimientos: " + err.Error()}
	}
	return changed, nil
}
