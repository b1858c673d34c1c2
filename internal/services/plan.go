package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/dto"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/repositories"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/isoweek"
)

// PlanService renders the weekly status grid the maintenance views consume.
// The computed grid is cached in Redis; the cache listener drops it on
// schedule/follow-up change events.
type PlanService struct {
	scheduleRepo repositories.ScheduleRepositoryInterface
	followUpRepo repositories.FollowUpRepositoryInterface
	cache        repositories.CacheRepositoryInterface
	cacheTTL     time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

func NewPlanService(
	scheduleRepo repositories.ScheduleRepositoryInterface,
	followUpRepo repositories.FollowUpRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *PlanService {
	return &PlanService{
		scheduleRepo: scheduleRepo,
		followUpRepo: followUpRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *PlanService) WithClock(now func() time.Time) *PlanService {
	s.now = now
	return s
}

// PlanCacheKey is shared with the listener that invalidates the grid.
func PlanCacheKey(year int) string {
	return fmt.Sprintf("plan:weekly:%d", year)
}

func (s *PlanService) WeeklyPlan(ctx context.Context, year int) (*dto.PlanDTO, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, PlanCacheKey(year)); err == nil && cached != "" {
			var plan dto.PlanDTO
			if err := json.Unmarshal([]byte(cached), &plan); err == nil {
				return &plan, nil
			}
		}
	}

	plan, err := s.buildPlan(ctx, year)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(plan); err == nil {
			if err := s.cache.Set(ctx, PlanCacheKey(year), string(encoded), s.cacheTTL); err != nil {
				s.logger.Warn("no se pudo cachear el plan", zap.Int("year", year), zap.Error(err))
			}
		}
	}
	return plan, nil
}

func (s *PlanService) buildPlan(ctx context.Context, year int) (*dto.PlanDTO, error) {
	schedules, err := s.scheduleRepo.ListByYear(ctx, year)
	if err != nil {
		return nil, apperrors.Wrap("listar cronogramas", err)
	}
	followUps, err := s.followUpRepo.ListByYear(ctx, year)
	if err != nil {
		return nil, apperrors.Wrap("listar seguimientos", err)
	}

	type cellKey struct {
		code string
		week int
	}
	preventive := make(map[cellKey]*entities.FollowUp)
	for i := range followUps {
		fu := &followUps[i]
		if fu.Type == entities.TypePreventive {
			preventive[cellKey{fu.EquipmentCode, fu.Week}] = fu
		}
	}

	today := s.now()
	rows := make(map[string]*dto.PlanRowDTO)

	for i := range schedules {
		sched := &schedules[i]
		row := &dto.PlanRowDTO{
			EquipmentCode: sched.EquipmentCode,
			Name:          sched.Name,
			Brand:         sched.Brand,
			Site:          sched.Site,
			Interval:      sched.Interval,
		}
		for _, week := range sched.ActiveWeeks() {
			fu := preventive[cellKey{sched.EquipmentCode, week}]
			cell := dto.PlanCellDTO{
				Week:       week,
				Status:     ClassifyWeek(week, year, today, fu),
				Programmed: true,
			}
			if fu != nil {
				id := fu.ID
				cell.FollowUpID = &id
			}
			row.Cells = append(row.Cells, cell)
		}
		rows[sched.EquipmentCode] = row
	}

	// Manual follow-ups outside the programmed set still appear, flagged
	// as unprogrammed, with the status they recorded themselves.
	for i := range followUps {
		fu := &followUps[i]
		if fu.Type != entities.TypePreventive {
			continue
		}
		row, ok := rows[fu.EquipmentCode]
		if ok && weekProgrammed(schedules, fu.EquipmentCode, fu.Week) {
			continue
		}
		if !ok {
			row = &dto.PlanRowDTO{EquipmentCode: fu.EquipmentCode}
			rows[fu.EquipmentCode] = row
		}
		id := fu.ID
		row.Cells = append(row.Cells, dto.PlanCellDTO{
			Week:       fu.Week,
			Status:     fu.Status,
			Programmed: false,
			FollowUpID: &id,
		})
	}

	plan := &dto.PlanDTO{
		Year:  year,
		Weeks: isoweek.WeeksInYear(year),
	}
	for _, row := range rows {
		sort.Slice(row.Cells, func(a, b int) bool { return row.Cells[a].Week < row.Cells[b].Week })
		plan.Rows = append(plan.Rows, *row)
	}
	sort.Slice(plan.Rows, func(a, b int) bool { return plan.Rows[a].EquipmentCode < plan.Rows[b].EquipmentCode })
	return plan, nil
}

func weekProgrammed(schedules []entities.Schedule, code string, week int) bool {
	for i := range schedules {
		if schedules[i].EquipmentCode == code {
			return week >= 1 && week <= len(schedules[i].Weeks) && schedules[i].Weeks[week-1]
		}
	}
	return false
}
