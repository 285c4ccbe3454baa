package request

type GenerateSlotsRequest struct {
	PackageType    string   `json:"package_type" validate:"required,oneof=tour transfer"`
	PackageID      string   `json:"package_id" validate:"required,uuid4"`
	DepartureTimes []string `json:"departure_times" validate:"omitempty,dive,len=5"`
	Capacity       int      `json:"capacity" validate:"omitempty,min=1,max=1000"`
}

type UpdateSlotBookingRequest struct {
	PackageType string `json:"package_type" validate:"required,oneof=tour transfer"`
	PackageID   string `json:"package_id" validate:"required,uuid4"`
	Date        string `json:"date" validate:"required,len=10"`
	Time        string `json:"time" validate:"required,len=5"`
	Persons     int    `json:"persons" validate:"required,min=1,max=100"`
	Operation   string `json:"operation" validate:"required,oneof=add subtract"`
}
