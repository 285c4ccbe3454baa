package entity

type PackageType string

const (
	PackageTypeTour     PackageType = "tour"
	PackageTypeTransfer PackageType = "transfer"
)

func (t PackageType) Valid() bool {
	return t == PackageTypeTour || t == PackageTypeTransfer
}

// TourPackage is the catalog record for a bookable tour or transfer.
// Capacity and minimum person here are the source of truth; slots re-derive
// their values from this record, never from caller input.
type TourPackage struct {
	Base
	Name           string      `db:"name"`
	Type           PackageType `db:"package_type"`
	MaximumPerson  int         `db:"maximum_person"`
	MinimumPerson  int         `db:"minimum_person"`
	IsPrivate      bool        `db:"is_private"`
	DepartureTimes []string    `db:"departure_times"`
	BasePrice      float64     `db:"base_price"`
}
