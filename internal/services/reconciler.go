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

// FollowUpReconciler keeps the pending follow-up set consistent with the
// schedules. It runs after an interval change (which regenerates the
// schedules) or any other mask mutation.
//
// Two guarantees: a follow-up that has left Pending is never touched, and
// no (code, week, year, type) tuple is ever duplicated.
type FollowUpReconciler struct {
	scheduleRepo repositories.ScheduleRepositoryInterface
	followUpRepo repositories.FollowUpRepositoryInterface
	orchestrator *ScheduleOrchestrator
	bus          *eventbus.Bus
	logger       *zap.Logger
}

func NewFollowUpReconciler(
	scheduleRepo repositories.ScheduleRepositoryInterface,
	followUpRepo repositories.FollowUpRepositoryInterface,
	orchestrator *ScheduleOrchestrator,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *FollowUpReconciler {
	return &FollowUpReconciler{
		scheduleRepo: scheduleRepo,
		followUpRepo: followUpRepo,
		orchestrator: orchestrator,
		bus:          bus,
		logger:       logger,
	}
}

// Resync reconciles one equipment. With intervalChanged the schedules are
// dropped and regenerated under the new interval first.
func (r *FollowUpReconciler) Resync(ctx context.Context, eq *entities.Equipment, intervalChanged bool) error {
	if intervalChanged {
		if err := r.scheduleRepo.DeleteByCode(ctx, eq.Code); err != nil {
			return apperrors.Wrap("eliminar cronogramas", err)
		}
		if err := r.orchestrator.EnsureSchedules(ctx, eq); err != nil {
			return err
		}
	}

	schedules, err := r.scheduleRepo.ListByCode(ctx, eq.Code)
	if err != nil {
		return apperrors.Wrap("listar cronogramas", err)
	}

	type weekKey struct{ year, week int }
	active := make(map[weekKey]bool)
	for i := range schedules {
		for _, week := range schedules[i].ActiveWeeks() {
			active[weekKey{schedules[i].Year, week}] = true
		}
	}

	// Prune pending preventive follow-ups whose week is no longer marked.
	pending, err := r.followUpRepo.ListPendingByCode(ctx, eq.Code)
	if err != nil {
		return apperrors.Wrap("listar seguimientos pendientes", err)
	}

	changed := false
	for i := range pending {
		fu := &pending[i]
		if !fu.Reconcilable() {
			continue
		}
		if active[weekKey{fu.Year, fu.Week}] {
			continue
		}
		if err := r.followUpRepo.Delete(ctx, fu.ID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Wrap("eliminar seguimiento pendiente", err)
		}
		changed = true
	}

	// Create pending follow-ups for active weeks with no preventive
	// follow-up of any status.
	existing := make(map[weekKey]bool)
	all, err := r.followUpRepo.ListByCode(ctx, eq.Code)
	if err != nil {
		return apperrors.Wrap("listar seguimientos", err)
	}
	for i := range all {
		if all[i].Type == entities.TypePreventive {
			existing[weekKey{all[i].Year, all[i].Week}] = true
		}
	}

	for i := range schedules {
		s := &schedules[i]
		for _, week := range s.ActiveWeeks() {
			key := weekKey{s.Year, week}
			if existing[key] {
				continue
			}
			// Week already pruned above when it left the mask; here the
			// mask has it and no preventive record covers it.
			fu := &entities.FollowUp{
				EquipmentCode:    eq.Code,
				Week:             week,
				Year:             s.Year,
				Type:             entities.TypePreventive,
				Description:      "Mantenimiento preventivo programado",
				RegistrationDate: registrationDateFor(s.Year, week),
				Status:           entities.StatusPending,
				Interval:         eq.Interval,
			}
			if err := r.followUpRepo.CreatePending(ctx, fu); err != nil {
				return apperrors.Wrap("crear seguimiento pendiente", err)
			}
			existing[key] = true
			changed = true
		}
	}

	if changed && r.bus != nil {
		r.bus.Publish(ctx, events.FollowUpsUpdatedEvent{EquipmentCode: eq.Code})
	}
	return nil
}

// registrationDateFor stamps a generated follow-up with the Monday opening
// its week.
func registrationDateFor(year, week int) time.Time {
	return isoweek.MondayOfWeek(year, week)
}
