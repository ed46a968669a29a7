package models

import (
	"time"

	"gorm.io/gorm"
)

// Reservation is a guest's claim on a campground for a date range.
// DateFrom/DateTo are calendar dates (midnight UTC); the stay covers the
// nights of [DateFrom, DateTo). Rows are never deleted and never updated
// after creation except for the one-way IsCanceled flag.
type Reservation struct {
	gorm.Model
	GuestID         uint      `json:"guestID"`
	CampgroundID    uint      `json:"campgroundID"`
	DateFrom        time.Time `json:"dateFrom"`
	DateTo          time.Time `json:"dateTo"`
	NumberOfNights  int       `json:"numberOfNights"`
	NumberOfPersons int       `json:"numberOfPersons"`
	PriceMinor      int64     `json:"priceMinor"` // snapshot of nights x nightly rate at booking time
	IsCanceled      bool      `json:"isCanceled" gorm:"default:false;index"`

	// Relationships
	Campground *Campground `json:"campground,omitempty" gorm:"foreignKey:CampgroundID"`
	Guest      *User       `json:"guest,omitempty" gorm:"foreignKey:GuestID"`
}
