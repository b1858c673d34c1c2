package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/dto"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/events"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/repositories"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/eventbus"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/types"
)

const dateLayout = "2006-01-02"

// EquipmentService owns the equipment lifecycle and fans every mutation out
// to the scheduling engine: creation and edits trigger the orchestrator,
// interval changes trigger a full reconciliation.
type EquipmentService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	scheduleRepo  repositories.ScheduleRepositoryInterface
	orchestrator  *ScheduleOrchestrator
	reconciler    *FollowUpReconciler
	bus           *eventbus.Bus
	logger        *zap.Logger
}

func NewEquipmentService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	scheduleRepo repositories.ScheduleRepositoryInterface,
	orchestrator *ScheduleOrchestrator,
	reconciler *FollowUpReconciler,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *EquipmentService {
	return &EquipmentService{
		equipmentRepo: equipmentRepo,
		scheduleRepo:  scheduleRepo,
		orchestrator:  orchestrator,
		reconciler:    reconciler,
		bus:           bus,
		logger:        logger,
	}
}

func (s *EquipmentService) Get(ctx context.Context, code string) (*entities.Equipment, error) {
	return s.equipmentRepo.GetByCode(ctx, code)
}

func (s *EquipmentService) List(ctx context.Context, filter types.Filter) ([]entities.Equipment, uint64, error) {
	return s.equipmentRepo.List(ctx, filter)
}

func (s *EquipmentService) Create(ctx context.Context, in dto.CreateEquipmentDTO) (*entities.Equipment, error) {
	purchaseDate, err := time.Parse(dateLayout, in.PurchaseDate)
	if err != nil {
		return nil, apperrors.NewValidationError("fecha de compra no interpretable: %q", in.PurchaseDate)
	}

	eq := &entities.Equipment{
		Code:         in.Code,
		Name:         in.Name,
		Brand:        in.Brand,
		Site:         in.Site,
		PurchaseDate: purchaseDate,
		Interval:     entities.RecurrenceInterval(in.Interval),
		State:        entities.StateActive,
	}
	if !eq.Interval.Valid() {
		return nil, apperrors.NewValidationError("frecuencia de mantenimiento desconocida: %q", in.Interval)
	}

	if err := s.equipmentRepo.Create(ctx, eq); err != nil {
		return nil, err
	}

	if err := s.orchestrator.EnsureSchedules(ctx, eq); err != nil {
		return nil, err
	}
	if err := s.reconciler.Resync(ctx, eq, false); err != nil {
		return nil, err
	}

	s.logger.Info("equipo registrado",
		zap.String("code", eq.Code),
		zap.String("interval", string(eq.Interval)),
	)
	return eq, nil
}

func (s *EquipmentService) Update(ctx context.Context, code string, in dto.UpdateEquipmentDTO) (*entities.Equipment, error) {
	eq, err := s.equipmentRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	infoChanged := false
	if in.Name != nil && *in.Name != eq.Name {
		eq.Name = *in.Name
		infoChanged = true
	}
	if in.Brand != nil && *in.Brand != eq.Brand {
		eq.Brand = *in.Brand
		infoChanged = true
	}
	if in.Site != nil && *in.Site != eq.Site {
		eq.Site = *in.Site
		infoChanged = true
	}
	if in.PurchaseDate != nil {
		purchaseDate, err := time.Parse(dateLayout, *in.PurchaseDate)
		if err != nil {
			return nil, apperrors.NewValidationError("fecha de compra no interpretable: %q", *in.PurchaseDate)
		}
		eq.PurchaseDate = purchaseDate
	}

	intervalChanged := false
	if in.Interval != nil {
		newInterval := entities.RecurrenceInterval(*in.Interval)
		if !newInterval.Valid() {
			return nil, apperrors.NewValidationError("frecuencia de mantenimiento desconocida: %q", *in.Interval)
		}
		if newInterval != eq.Interval {
			eq.Interval = newInterval
			intervalChanged = true
		}
	}

	if err := s.equipmentRepo.Update(ctx, eq); err != nil {
		return nil, err
	}

	if infoChanged {
		// Refresh the denormalized copies the schedules carry.
		if err := s.scheduleRepo.SyncEquipmentInfo(ctx, eq); err != nil {
			return nil, apperrors.Wrap("sincronizar datos de equipo", err)
		}
		// The plan grid renders those copies; the sync alone rewrites
		// schedule rows even when no mask changed.
		if s.bus != nil {
			s.bus.Publish(ctx, events.SchedulesUpdatedEvent{
				EquipmentCode: eq.Code,
				Years:         s.scheduleYears(ctx, eq.Code),
			})
		}
	}

	if err := s.orchestrator.EnsureSchedules(ctx, eq); err != nil {
		return nil, err
	}
	if err := s.reconciler.Resync(ctx, eq, intervalChanged); err != nil {
		return nil, err
	}

	return eq, nil
}

func (s *EquipmentService) scheduleYears(ctx context.Context, code string) []int {
	schedules, err := s.scheduleRepo.ListByCode(ctx, code)
	if err != nil {
		s.logger.Warn("no se pudieron listar los cronogramas para el evento", zap.String("code", code), zap.Error(err))
		return nil
	}
	years := make([]int, 0, len(schedules))
	for i := range schedules {
		years = append(years, schedules[i].Year)
	}
	return years
}

// Retire stops future schedule generation without deleting history.
func (s *EquipmentService) Retire(ctx context.Context, code string, in dto.RetireEquipmentDTO) (*entities.Equipment, error) {
	retirementDate, err := time.Parse(dateLayout, in.RetirementDate)
	if err != nil {
		return nil, apperrors.NewValidationError("fecha de baja no interpretable: %q", in.RetirementDate)
	}

	eq, err := s.equipmentRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	eq.State = entities.StateRetired
	eq.RetirementDate.SetValid(retirementDate)

	if err := s.equipmentRepo.Update(ctx, eq); err != nil {
		return nil, err
	}
	return eq, nil
}

func (s *EquipmentService) Delete(ctx context.Context, code string) error {
	return s.equipmentRepo.Delete(ctx, code)
}
