package dto

type RegisterExecutionDTO struct {
	ExecutionDate string   `json:"execution_date" validate:"required"`
	Description   *string  `json:"description,omitempty"`
	Responsible   *string  `json:"responsible,omitempty"`
	Cost          *float64 `json:"cost,omitempty" validate:"omitempty,gte=0"`
	Observations  *string  `json:"observations,omitempty"`
}

type CreateCorrectiveDTO struct {
	EquipmentCode string  `json:"equipment_code" validate:"required,equipment_code"`
	Date          string  `json:"date" validate:"required"`
	Description   string  `json:"description" validate:"required"`
	Responsible   string  `json:"responsible"`
	Cost          float64 `json:"cost" validate:"gte=0"`
	Observations  string  `json:"observations"`
}
