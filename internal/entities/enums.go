package entities

// RecurrenceInterval is the configured maintenance cadence of an equipment.
// The stored values match the labels used in the Excel interchange column
// FrecuenciaMtto.
type RecurrenceInterval string

const (
	IntervalNone        RecurrenceInterval = ""
	IntervalWeekly      RecurrenceInterval = "Semanal"
	IntervalBiweekly    RecurrenceInterval = "Quincenal"
	IntervalMonthly     RecurrenceInterval = "Mensual"
	IntervalBimonthly   RecurrenceInterval = "Bimestral"
	IntervalQuarterly   RecurrenceInterval = "Trimestral"
	IntervalFourMonthly RecurrenceInterval = "Cuatrimestral"
	IntervalSemiannual  RecurrenceInterval = "Semestral"
	IntervalAnnual      RecurrenceInterval = "Anual"
)

// Valid reports whether v is one of the known interval labels.
func (v RecurrenceInterval) Valid() bool {
	switch v {
	case IntervalNone, IntervalWeekly, IntervalBiweekly, IntervalMonthly,
		IntervalBimonthly, IntervalQuarterly, IntervalFourMonthly,
		IntervalSemiannual, IntervalAnnual:
		return true
	}
	return false
}

// MaintenanceType separates the recurrence-managed preventive stream from
// the append-only corrective history.
type MaintenanceType string

const (
	TypePreventive MaintenanceType = "Preventivo"
	TypeCorrective MaintenanceType = "Correctivo"
)

func (t MaintenanceType) Valid() bool {
	return t == TypePreventive || t == TypeCorrective
}

// MaintenanceStatus is the execution state of a follow-up.
type MaintenanceStatus string

const (
	StatusPending MaintenanceStatus = "Pendiente"
	StatusOnTime  MaintenanceStatus = "RealizadaEnTiempo"
	StatusLate    MaintenanceStatus = "RealizadaFueraDeTiempo"
	StatusNotDone MaintenanceStatus = "NoRealizada"
	StatusOverdue MaintenanceStatus = "Atrasada"
)

// EquipmentState is the lifecycle state of an equipment. Retired equipment
// keeps its history but stops generating schedules.
type EquipmentState string

const (
	StateActive  EquipmentState = "Activo"
	StateRetired EquipmentState = "DadoDeBaja"
)
