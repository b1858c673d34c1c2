package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/dto"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/events"
	"github.com/SimicsGroupSAS/GestLog-sub001/internal/repositories"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/eventbus"
	apperrors "github.com/SimicsGroupSAS/GestLog-sub001/pkg/errors"
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/isoweek"
)

// FollowUpService handles the explicit user edits the reconciler keeps its
// hands off: recording executions and appending corrective history.
type FollowUpService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	followUpRepo  repositories.FollowUpRepositoryInterface
	bus           *eventbus.Bus
	logger        *zap.Logger
	now           func() time.Time
}

func NewFollowUpService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	followUpRepo repositories.FollowUpRepositoryInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *FollowUpService {
	return &FollowUpService{
		equipmentRepo: equipmentRepo,
		followUpRepo:  followUpRepo,
		bus:           bus,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *FollowUpService) WithClock(now func() time.Time) *FollowUpService {
	s.now = now
	return s
}

func (s *FollowUpService) ListByCode(ctx context.Context, code string) ([]entities.FollowUp, error) {
	if _, err := s.equipmentRepo.GetByCode(ctx, code); err != nil {
		return nil, err
	}
	return s.followUpRepo.ListByCode(ctx, code)
}

// RegisterExecution records that a follow-up was carried out. The status
// becomes OnTime or Late depending on whether the execution date landed
// inside the follow-up's week.
func (s *FollowUpService) RegisterExecution(ctx context.Context, id uuid.UUID, in dto.RegisterExecutionDTO) (*entities.FollowUp, error) {
	executionDate, err := time.Parse(dateLayout, in.ExecutionDate)
	if err != nil {
		return nil, apperrors.NewValidationError("fecha de realización no interpretable: %q", in.ExecutionDate)
	}

	fu, err := s.followUpRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fu.ExecutionDate.SetValid(executionDate)
	fu.Status = executedStatus(fu.Week, fu.Year, executionDate)
	if in.Description != nil {
		fu.Description = *in.Description
	}
	if in.Responsible != nil {
		fu.Responsible = *in.Responsible
	}
	if in.Cost != nil {
		fu.Cost = *in.Cost
	}
	if in.Observations != nil {
		fu.Observations = *in.Observations
	}

	if err := s.followUpRepo.Update(ctx, fu); err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.FollowUpsUpdatedEvent{EquipmentCode: fu.EquipmentCode})
	}
	return fu, nil
}

// CreateCorrective appends a corrective record. Corrective history is
// independent of the recurrence engine: never created or pruned
// automatically, and duplicates per week are allowed.
func (s *FollowUpService) CreateCorrective(ctx context.Context, in dto.CreateCorrectiveDTO) (*entities.FollowUp, error) {
	eq, err := s.equipmentRepo.GetByCode(ctx, in.EquipmentCode)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse(dateLayout, in.Date)
	if err != nil {
		return nil, apperrors.NewValidationError("fecha no interpretable: %q", in.Date)
	}

	week, isoYear := isoweek.WeekOfDate(date)
	fu := &entities.FollowUp{
		EquipmentCode:    eq.Code,
		Week:             week,
		Year:             isoYear,
		Type:             entities.TypeCorrective,
		Description:      in.Description,
		Responsible:      in.Responsible,
		Cost:             in.Cost,
		Observations:     in.Observations,
		RegistrationDate: s.now(),
		Status:           entities.StatusOnTime,
		Interval:         eq.Interval,
	}
	fu.ExecutionDate.SetValid(date)

	if err := s.followUpRepo.Insert(ctx, fu); err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.FollowUpsUpdatedEvent{EquipmentCode: eq.Code})
	}
	return fu, nil
}
