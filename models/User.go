package models

import "gorm.io/gorm"

// User is the guest/host identity collaborator. Authentication itself is
// handled outside the booking core; reservations reference users by id.
type User struct {
	gorm.Model
	Username string `json:"username" gorm:"uniqueIndex"`
	Email    string `json:"email"`

	Campgrounds  []Campground  `json:"campgrounds,omitempty" gorm:"foreignKey:OwnerID;references:ID"`
	Reservations []Reservation `json:"reservations,omitempty" gorm:"foreignKey:GuestID;references:ID"`
}
