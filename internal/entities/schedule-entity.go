package entities

import (
	"github.com/SimicsGroupSAS/GestLog-sub001/pkg/types"
)

// Schedule (cronograma) is the per-equipment, per-year mask of planned
// maintenance weeks. At most one Schedule exists per (code, year); the
// storage layer enforces that with a unique constraint.
type Schedule struct {
	ID            uint64             `json:"id" db:"id"`
	EquipmentCode string             `json:"equipment_code" db:"equipment_code"`
	Year          int                `json:"year" db:"year"`

	// Weeks has exactly WeeksInYear(Year) entries (52 or 53).
	Weeks []bool `json:"weeks" db:"weeks"`

	// Interval in effect when the mask was generated. Empty for masks
	// created purely from historical imports.
	Interval RecurrenceInterval `json:"interval" db:"interval"`

	// Denormalized equipment info, refreshed by an explicit sync pass.
	// This is a derived-data cache keyed by EquipmentCode, not an owning
	// relationship.
	Name  string `json:"name" db:"name"`
	Brand string `json:"brand" db:"brand"`
	Site  string `json:"site" db:"site"`

	types.BaseEntity
}

// ActiveWeeks returns the 1-based week numbers marked in the mask.
func (s *Schedule) ActiveWeeks() []int {
	var weeks []int
	for i, on := range s.Weeks {
		if on {
			weeks = append(weeks, i+1)
		}
	}
	return weeks
}

// LastActiveWeek returns the highest marked week number, or 0 when the mask
// is empty.
func (s *Schedule) LastActiveWeek() int {
	for i := len(s.Weeks) - 1; i >= 0; i-- {
		if s.Weeks[i] {
			return i + 1
		}
	}
	return 0
}
