package user

import "time"

// User is the slice of the user-directory record this service needs to route
// a payment: where the user lives and which subsidiary bills them.
type User struct {
	ID           int64      `json:"id"`
	LocationID   int64      `json:"location_id"`
	Email        string     `json:"email"`
	SubsidiaryID *int64     `json:"subsidiary_id"`
	DeletedAt    *time.Time `json:"deleted_at"`
}
