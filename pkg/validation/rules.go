package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/SimicsGroupSAS/GestLog-sub001/internal/entities"
)

var equipmentCodeRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// registerRules registers the struct tags used across the DTOs.
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("equipment_code", isEquipmentCode); err != nil {
		return err
	}
	if err := v.RegisterValidation("recurrence_interval", isRecurrenceInterval); err != nil {
		return err
	}
	if err := v.RegisterValidation("maintenance_type", isMaintenanceType); err != nil {
		return err
	}
	return nil
}

func isEquipmentCode(fl validator.FieldLevel) bool {
	return equipmentCodeRe.MatchString(fl.Field().String())
}

func isRecurrenceInterval(fl validator.FieldLevel) bool {
	return entities.RecurrenceInterval(fl.Field().String()).Valid()
}

func isMaintenanceType(fl validator.FieldLevel) bool {
	return entities.MaintenanceType(fl.Field().String()).Valid()
}
