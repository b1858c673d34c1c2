package dto

type CreateEquipmentDTO struct {
	Code         string `json:"code" validate:"required,equipment_code"`
	Name         string `json:"name" validate:"required"`
	Brand        string `json:"brand"`
	Site         string `json:"site"`
	PurchaseDate string `json:"purchase_date" validate:"required"`
	Interval     string `json:"interval" validate:"omitempty,recurrence_interval"`
}

type UpdateEquipmentDTO struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Brand        *string `json:"brand,omitempty"`
	Site         *string `json:"site,omitempty"`
	PurchaseDate *string `json:"purchase_date,omitempty"`
	Interval     *string `json:"interval,omitempty" validate:"omitempty,recurrence_interval"`
}

type RetireEquipmentDTO struct {
	RetirementDate string `json:"retirement_date" validate:"required"`
}
