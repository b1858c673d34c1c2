package entities

import (
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"

	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/types"
)

// FollowUp (seguimiento) records one planned or executed maintenance action
// for one equipment in one week. Preventive follow-ups are unique per
// (code, week, year, type) and managed by the reconciler while Pending;
// corrective follow-ups are independent, append-only history.
type FollowUp struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	EquipmentCode string          `json:"equipment_code" db:"equipment_code"`
	Week          int             `json:"week" db:"week"`
	Year          int             `json:"year" db:"year"`
	Type          MaintenanceType `json:"type" db:"type"`

	Description  string  `json:"description" db:"description"`
	Responsible  string  `json:"responsible" db:"responsible"`
	Cost         float64 `json:"cost" db:"cost"`
	Observations string  `json:"observations" db:"observations"`

	RegistrationDate time.Time         `json:"registration_date" db:"registration_date"`
	ExecutionDate    null.Time         `json:"execution_date" db:"execution_date"`
	Status           MaintenanceStatus `json:"status" db:"status"`

	// Interval of the equipment when this follow-up was created.
	Interval RecurrenceInterval `json:"interval" db:"interval"`

	types.BaseEntity
}

// Reconcilable reports whether the reconciler may delete this follow-up.
// Only preventive follow-ups still pending are under automatic management.
func (f *FollowUp) Reconcilable() bool {
	return f.Type == TypePreventive && f.Status == StatusPending
}
