package dto

import (
	"github.com/google/uuid"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
)

// PlanCellDTO is one week cell of the weekly status grid. Programmed is
// false for weeks that only exist because someone created a follow-up by
// hand outside the schedule.
type PlanCellDTO struct {
	Week       int                        `json:"week"`
	Status     entities.MaintenanceStatus `json:"status"`
	Programmed bool                       `json:"programmed"`
	FollowUpID *uuid.UUID                 `json:"follow_up_id,omitempty"`
}

type PlanRowDTO struct {
	EquipmentCode string                      `json:"equipment_code"`
	Name          string                      `json:"name"`
	Brand         string                      `json:"brand"`
	Site          string                      `json:"site"`
	Interval      entities.RecurrenceInterval `json:"interval"`
	Cells         []PlanCellDTO               `json:"cells"`
}

type PlanDTO struct {
	Year  int          `json:"year"`
	Weeks int          `json:"weeks"`
	Rows  []PlanRowDTO `json:"rows"`
}
