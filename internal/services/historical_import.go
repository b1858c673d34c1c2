package services

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/events"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/repositories"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/eventbus"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/isoweek"
)

// HistoricalRecord is one accepted execution record from a bulk import.
type HistoricalRecord struct {
	Row           int
	EquipmentCode string
	Type          entities.MaintenanceType
	Date          time.Time
	Description   string
	Responsible   string
	Cost          float64
	Observations  string
}

// HistoricalImportResult reports what a batch did. Rejected rows never
// abort the batch; they are collected here.
type HistoricalImportResult struct {
	Accepted int                        `json:"accepted"`
	Rejected int                        `json:"rejected"`
	Errors   []*apperrors.ImportRowError `json:"errors,omitempty"`
}

// historicalColumns maps normalized header names to record fields. Column
// order in the file is irrelevant.
var historicalColumns = []string{"codigo", "nombre", "tipomtno", "descripcion", "responsable", "costo", "observaciones", "fecharealizacion"}

var importDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
}

// HistoricalImportService folds externally supplied execution history into
// the schedules and follow-ups without discarding existing data: new weeks
// are OR-ed into the masks, previously marked weeks never clear.
type HistoricalImportService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	scheduleRepo  repositories.ScheduleRepositoryInterface
	followUpRepo  repositories.FollowUpRepositoryInterface
	bus           *eventbus.Bus
	logger        *zap.Logger
}

func NewHistoricalImportService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	scheduleRepo repositories.ScheduleRepositoryInterface,
	followUpRepo repositories.FollowUpRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *HistoricalImportService {
	return &HistoricalImportService{
		equipmentRepo: equipmentRepo,
		scheduleRepo:  scheduleRepo,
		followUpRepo:  followUpRepo,
		bus:           bus,
		logger:        logger,
	}
}

// ImportFile parses an Excel history file and merges the accepted records.
func (s *HistoricalImportService) ImportFile(ctx context.Context, reader io.Reader) (*HistoricalImportResult, error) {
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

	colIdx, err := matchHistoricalHeader(rows[0])
	if err != nil {
		return nil, err
	}

	result := &HistoricalImportResult{}
	var records []HistoricalRecord

	for i, row := range rows[1:] {
		rowNum := i + 2
		if rowEmpty(row) {
			continue
		}
		rec, rowErr := parseHistoricalRow(rowNum, row, colIdx)
		if rowErr != nil {
			result.Errors = append(result.Errors, rowErr)
			result.Rejected++
			continue
		}
		records = append(records, *rec)
	}

	if err := s.Merge(ctx, records, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Merge validates records against the known equipment codes and folds the
// accepted ones into schedules and follow-ups.
func (s *HistoricalImportService) Merge(ctx context.Context, records []HistoricalRecord, result *HistoricalImportResult) error {
	if result == nil {
		result = &HistoricalImportResult{}
	}

	// Resolve each distinct code once; unknown codes reject their rows.
	equipments := make(map[string]*entities.Equipment)
	var accepted []HistoricalRecord
	for _, rec := range records {
		eq, ok := equipments[rec.EquipmentCode]
		if !ok {
			var err error
			eq, err = s.equipmentRepo.GetByCode(ctx, rec.EquipmentCode)
			if errors.Is(err, apperrors.ErrNotFound) {
				eq = nil
			} else if err != nil {
				return apperrors.Wrap("consultar equipo", err)
			}
			equipments[rec.EquipmentCode] = eq
		}
		if eq == nil {
			result.Errors = append(result.Errors, &apperrors.ImportRowError{
				Row:     rec.Row,
				Column:  "Codigo",
				Message: "código de equipo desconocido: " + rec.EquipmentCode,
			})
			result.Rejected++
			continue
		}
		accepted = append(accepted, rec)
	}

	type groupKey struct {
		code string
		year int
	}
	groups := make(map[groupKey]map[int]bool)
	for _, rec := range accepted {
		week, isoYear := isoweek.WeekOfDate(rec.Date)
		key := groupKey{rec.EquipmentCode, isoYear}
		if groups[key] == nil {
			groups[key] = make(map[int]bool)
		}
		groups[key][week] = true
	}

	touched := make(map[string][]int)
	for key, weeks := range groups {
		if err := s.mergeScheduleWeeks(ctx, equipments[key.code], key.year, weeks); err != nil {
			return err
		}
		touched[key.code] = append(touched[key.code], key.year)
	}

	for _, rec := range accepted {
		if err := s.applyRecord(ctx, equipments[rec.EquipmentCode], rec); err != nil {
			return err
		}
	}
	result.Accepted = len(accepted)

	if s.bus != nil {
		for code, years := range touched {
			s.bus.Publish(ctx, events.SchedulesUpdatedEvent{EquipmentCode: code, Years: years})
			s.bus.Publish(ctx, events.FollowUpsUpdatedEvent{EquipmentCode: code})
		}
	}
	return nil
}

// mergeScheduleWeeks ORs the imported weeks into the (code, year) mask,
// creating the schedule when absent. Previously marked weeks stay marked.
func (s *HistoricalImportService) mergeScheduleWeeks(ctx context.Context, eq *entities.Equipment, year int, weeks map[int]bool) error {
	schedule, err := s.scheduleRepo.Get(ctx, eq.Code, year)
	if errors.Is(err, apperrors.ErrNotFound) {
		mask := make([]bool, isoweek.WeeksInYear(year))
		for week := range weeks {
			mask[week-1] = true
		}
		schedule = &entities.Schedule{
			EquipmentCode: eq.Code,
			Year:          year,
			Weeks:         mask,
			Interval:      entities.IntervalNone,
			Name:          eq.Name,
			Brand:         eq.Brand,
			Site:          eq.Site,
		}
		return s.scheduleRepo.Upsert(ctx, schedule)
	}
	if err != nil {
		return apperrors.Wrap("consultar cronograma", err)
	}

	changed := false
	for week := range weeks {
		if week >= 1 && week <= len(schedule.Weeks) && !schedule.Weeks[week-1] {
			schedule.Weeks[week-1] = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.scheduleRepo.Upsert(ctx, schedule)
}

// applyRecord turns one accepted record into follow-up state. Preventive
// records update the tuple's existing follow-up (or insert it); corrective
// records are always appended, never used to update.
func (s *HistoricalImportService) applyRecord(ctx context.Context, eq *entities.Equipment, rec HistoricalRecord) error {
	week, isoYear := isoweek.WeekOfDate(rec.Date)

	if rec.Type == entities.TypeCorrective {
		fu := s.buildFollowUp(eq, rec, week, isoYear)
		return s.followUpRepo.Insert(ctx, fu)
	}

	existing, err := s.followUpRepo.FindByTuple(ctx, eq.Code, week, isoYear, entities.TypePreventive)
	if errors.Is(err, apperrors.ErrNotFound) {
		fu := s.buildFollowUp(eq, rec, week, isoYear)
		return s.followUpRepo.CreatePending(ctx, fu)
	}
	if err != nil {
		return apperrors.Wrap("consultar seguimiento", err)
	}

	existing.Description = rec.Description
	existing.Responsible = rec.Responsible
	existing.Cost = rec.Cost
	existing.Observations = rec.Observations
	if !existing.ExecutionDate.Valid {
		// Backfilling a still-pending week: adopt the imported execution
		// date and derive its terminal status.
		existing.ExecutionDate.SetValid(rec.Date)
		existing.Status = executedStatus(week, isoYear, rec.Date)
	}
	return s.followUpRepo.Update(ctx, existing)
}

func (s *HistoricalImportService) buildFollowUp(eq *entities.Equipment, rec HistoricalRecord, week, year int) *entities.FollowUp {
	fu := &entities.FollowUp{
		EquipmentCode:    eq.Code,
		Week:             week,
		Year:             year,
		Type:             rec.Type,
		Description:      rec.Description,
		Responsible:      rec.Responsible,
		Cost:             rec.Cost,
		Observations:     rec.Observations,
		RegistrationDate: rec.Date,
		Status:           executedStatus(week, year, rec.Date),
		Interval:         eq.Interval,
	}
	fu.ExecutionDate.SetValid(rec.Date)
	return fu
}

// executedStatus classifies an already-executed record against its own
// week window, with the same date rules the weekly grid applies: inside
// the window is OnTime, after it is Late, before it is NotDone.
func executedStatus(week, year int, executed time.Time) entities.MaintenanceStatus {
	fu := &entities.FollowUp{}
	fu.ExecutionDate.SetValid(executed)
	_, inWeek, afterWeek := executionAgainstWeek(week, year, fu)
	switch {
	case inWeek:
		return entities.StatusOnTime
	case afterWeek:
		return entities.StatusLate
	default:
		return entities.StatusNotDone
	}
}

// matchHistoricalHeader resolves the column index of every required header,
// matching by normalized name in any order.
func matchHistoricalHeader(header []string) (map[string]int, error) {
	colIdx := make(map[string]int)
	for i, cell := range header {
		colIdx[normalizeHeader(cell)] = i
	}
	for _, want := range historicalColumns {
		if _, ok := colIdx[want]; !ok {
			return nil, apperrors.NewValidationError("falta la columna %q en el encabezado", want)
		}
	}
	return colIdx, nil
}

func parseHistoricalRow(rowNum int, row []string, colIdx map[string]int) (*HistoricalRecord, *apperrors.ImportRowError) {
	get := func(col string) string {
		idx := colIdx[col]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	code := get("codigo")
	if code == "" {
		return nil, &apperrors.ImportRowError{Row: rowNum, Column: "Codigo", Message: "código vacío"}
	}

	mtype := entities.MaintenanceType(get("tipomtno"))
	if !mtype.Valid() {
		return nil, &apperrors.ImportRowError{
			Row:     rowNum,
			Column:  "TipoMtno",
			Message: "tipo de mantenimiento no soportado (se espera Preventivo o Correctivo)",
		}
	}

	dateStr := get("fecharealizacion")
	date, ok := parseImportDate(dateStr)
	if !ok {
		return nil, &apperrors.ImportRowError{
			Row:     rowNum,
			Column:  "FechaRealizacion",
			Message: "fecha no interpretable: " + dateStr,
		}
	}

	cost := 0.0
	if costStr := get("costo"); costStr != "" {
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(costStr, ",", ""), 64)
		if err != nil {
			return nil, &apperrors.ImportRowError{Row: rowNum, Column: "Costo", Message: "costo no numérico: " + costStr}
		}
		cost = parsed
	}

	return &HistoricalRecord{
		Row:           rowNum,
		EquipmentCode: code,
		Type:          mtype,
		Date:          date,
		Description:   get("descripcion"),
		Responsible:   get("responsable"),
		Cost:          cost,
		Observations:  get("observaciones"),
	}, nil
}

func parseImportDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeHeader lowercases, trims and strips the accents Excel authors
// sometimes add ("Código" must match "Codigo").
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	replacer := strings.NewReplacer(
		"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n",
		" ", "", ".", "",
	)
	return replacer.Replace(s)
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
