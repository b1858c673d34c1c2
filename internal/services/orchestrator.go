package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/events"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/repositories"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/eventbus"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/isoweek"
)

// ScheduleOrchestrator guarantees every active equipment with a recurrence
// interval has one schedule per year from its registration year through the
// current one (plus the next, once October gives operators lead time).
// Existing schedules are never overwritten; the pass only adds missing
// years, so invoking it repeatedly is safe.
type ScheduleOrchestrator struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	scheduleRepo  repositories.ScheduleRepositoryInterface
	bus           *eventbus.Bus
	logger        *zap.Logger
	now           func() time.Time
}

func NewScheduleOrchestrator(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	scheduleRepo repositories.ScheduleRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *ScheduleOrchestrator {
	return &ScheduleOrchestrator{
		equipmentRepo: equipmentRepo,
		scheduleRepo:  scheduleRepo,
		bus:           bus,
		logger:        logger,
		now:           time.Now,
	}
}

// WithClock overrides the time source. Tests pin "today" with it.
func (o *ScheduleOrchestrator) WithClock(now func() time.Time) *ScheduleOrchestrator {
	o.now = now
	return o
}

// EnsureAllUpToDate runs the generation pass over every active equipment.
// Triggered on application start and by the daily cron pass.
func (o *ScheduleOrchestrator) EnsureAllUpToDate(ctx context.Context) error {
	list, err := o.equipmentRepo.ListActive(ctx)
	if err != nil {
		return apperrors.Wrap("listar equipos activos", err)
	}

	for i := range list {
		if err := o.EnsureSchedules(ctx, &list[i]); err != nil {
			o.logger.Error("generación de cronogramas falló",
				zap.String("code", list[i].Code),
				zap.Error(err),
			)
		}
	}
	return nil
}

// EnsureSchedules fills the missing schedule years of one equipment.
func (o *ScheduleOrchestrator) EnsureSchedules(ctx context.Context, eq *entities.Equipment) error {
	if !eq.SchedulesEnabled() {
		return nil
	}

	today := o.now()
	endYear := today.Year()
	if today.Month() >= time.October {
		endYear++
	}

	var createdYears []int
	for year := eq.RegistrationYear(); year <= endYear; year++ {
		_, err := o.scheduleRepo.Get(ctx, eq.Code, year)
		if err == nil {
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Wrap("consultar cronograma", err)
		}

		anchor := o.anchorForYear(ctx, eq, year)
		mask, err := GenerateWeekMask(anchor, eq.Interval, year)
		if err != nil {
			return err
		}

		schedule := &entities.Schedule{
			EquipmentCode: eq.Code,
			Year:          year,
			Weeks:         mask,
			Interval:      eq.Interval,
			Name:          eq.Name,
			Brand:         eq.Brand,
			Site:          eq.Site,
		}

		err = o.scheduleRepo.Insert(ctx, schedule)
		if errors.Is(err, apperrors.ErrConflict) {
			// A concurrent pass created it between the existence check
			// and the insert; the constraint already guarded us.
			continue
		}
		if err != nil {
			return apperrors.Wrap("insertar cronograma", err)
		}
		createdYears = append(createdYears, year)
	}

	if len(createdYears) > 0 && o.bus != nil {
		o.bus.Publish(ctx, events.SchedulesUpdatedEvent{
			EquipmentCode: eq.Code,
			Years:         createdYears,
		})
	}
	return nil
}

// anchorForYear picks the recurrence anchor for one target year.
//
// The registration year anchors on the purchase date. Later years carry the
// anchor over: locate the prior year's last active week, reconstruct its
// Monday, and pick the day inside that week matching the purchase
// day-of-month (Sunday when the week holds no such day). That keeps
// quarterly and four-monthly schedules landing on consistent dates year
// over year instead of drifting by a plain 7-day offset.
func (o *ScheduleOrchestrator) anchorForYear(ctx context.Context, eq *entities.Equipment, year int) time.Time {
	if year == eq.RegistrationYear() {
		return eq.PurchaseDate
	}

	prior, err := o.scheduleRepo.Get(ctx, eq.Code, year-1)
	if err == nil {
		if lastWeek := prior.LastActiveWeek(); lastWeek > 0 {
			monday := isoweek.MondayOfWeek(year-1, lastWeek)
			wantDay := eq.PurchaseDate.Day()
			for d := 0; d < 7; d++ {
				candidate := monday.AddDate(0, 0, d)
				if candidate.Day() == wantDay {
					return candidate
				}
			}
			return monday.AddDate(0, 0, 6)
		}
	}

	if year-1 == eq.RegistrationYear() {
		return eq.PurchaseDate
	}

	// Degraded fallback, recoverable once the missing year is backfilled.
	o.logger.Warn("sin cronograma previo para anclar; usando la semana 1",
		zap.String("code", eq.Code),
		zap.Int("year", year),
	)
	return isoweek.MondayOfWeek(year, 1)
}
