package models

import "gorm.io/gorm"

// Campground is the bookable entity owning a nightly rate. The booking
// core only reads it; creation, editing, images and geocoding live in the
// campground management surface.
type Campground struct {
	gorm.Model
	OwnerID           uint   `json:"ownerID"`
	Slug              string `json:"slug" gorm:"uniqueIndex"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	City              string `json:"city"`
	NightlyPriceMinor int64  `json:"nightlyPriceMinor"` // feninga per night

	Reservations []Reservation `json:"reservations,omitempty" gorm:"foreignKey:CampgroundID"`
	Owner        *User         `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}
