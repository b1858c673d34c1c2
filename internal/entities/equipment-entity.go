package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/types"
)

type Equipment struct {
	ID           uint64             `json:"id" db:"id"`
	Code         string             `json:"code" db:"code"`
	Name         string             `json:"name" db:"name"`
	Brand        string             `json:"brand" db:"brand"`
	Site         string             `json:"site" db:"site"`
	PurchaseDate time.Time          `json:"purchase_date" db:"purchase_date"`
	Interval     RecurrenceInterval `json:"interval" db:"interval"`
	State        EquipmentState     `json:"state" db:"state"`

	// Set when State becomes Retired; history is never deleted.
	RetirementDate null.Time `json:"retirement_date" db:"retirement_date"`

	types.BaseEntity // CreatedAt, UpdatedAt
}

// RegistrationYear is the first year the orchestrator must cover with a
// schedule.
func (e *Equipment) RegistrationYear() int {
	return e.PurchaseDate.Year()
}

// SchedulesEnabled reports whether the orchestrator should generate
// schedules for this equipment at all.
func (e *Equipment) SchedulesEnabled() bool {
	return e.State == StateActive && e.Interval != IntervalNone
}
