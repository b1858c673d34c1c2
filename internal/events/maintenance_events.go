package events

// SchedulesUpdatedEvent fires after any mutation of an equipment's yearly
// schedules (generation, regeneration, import merge, sync pass).
type SchedulesUpdatedEvent struct {
	EquipmentCode string
	Years         []int
}

func (e SchedulesUpdatedEvent) Name() string { return "schedules.updated" }

// FollowUpsUpdatedEvent fires after the reconciler or an import changes the
// follow-up set of an equipment.
type FollowUpsUpdatedEvent struct {
	EquipmentCode string
}

func (e FollowUpsUpdatedEvent) Name() string { return "followups.updated" }
