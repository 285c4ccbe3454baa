package request

type CheckAvailabilityRequest struct {
	PackageType string `json:"package_type" validate:"required,oneof=tour transfer"`
	PackageID   string `json:"package_id" validate:"required,uuid4"`
	Date        string `json:"date" validate:"required,len=10"`
	Time        string `json:"time" validate:"required,len=5"`
	Persons     int    `json:"persons" validate:"required,min=1,max=100"`
}

type GetAvailableSlotsRequest struct {
	PackageType string `json:"package_type" validate:"required,oneof=tour transfer"`
	PackageID   string `json:"package_id" validate:"required,uuid4"`
	Date        string `json:"date" validate:"required,len=10"`
}
