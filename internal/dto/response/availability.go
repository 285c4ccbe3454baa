package response

import (
	"tour-booking/internal/data/entity"
)

type AvailabilityResponse struct {
	Available       bool   `json:"available"`
	AvailableSpaces int    `json:"available_spaces"`
	RequiredMinimum int    `json:"required_minimum"`
	Reason          string `json:"reason,omitempty"`
}

type SlotResponse struct {
	Time            string   `json:"time"`
	Capacity        int      `json:"capacity"`
	BookedCount     int      `json:"booked_count"`
	AvailableSpaces int      `json:"available_spaces"`
	MinimumPerson   int      `json:"minimum_person"`
	Price           *float64 `json:"price,omitempty"`
}

func SlotToResponse(slot *entity.TimeSlot) SlotResponse {
	return SlotResponse{
		Time:            slot.Time,
		Capacity:        slot.Capacity,
		BookedCount:     slot.BookedCount,
		AvailableSpaces: slot.AvailableSpaces(),
		MinimumPerson:   slot.MinimumPerson,
		Price:           slot.Price,
	}
}
