package entity

import (
	"github.com/google/uuid"
)

type CartItem struct {
	BaseSimple
	UserID      uuid.UUID   `db:"user_id"`
	PackageType PackageType `db:"package_type"`
	PackageID   uuid.UUID   `db:"package_id"`
	Date        string      `db:"slot_date"`
	Time        string      `db:"slot_time"`
	Adults      int         `db:"adults"`
	Children    int         `db:"children"`
}
