package models

import "time"

// BookingIntent statuses.
const (
	IntentInitiated = "initiated"
	IntentConfirmed = "confirmed"
	IntentAborted   = "aborted"
)

// BookingIntent records a checkout attempt before the guest is redirected
// to the payment authority. The success callback confirms against the
// intent id, so a replayed or retried callback cannot create a second
// reservation and a failed ledger write can be retried safely.
type BookingIntent struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	GuestID         uint      `json:"guestID"`
	CampgroundID    uint      `json:"campgroundID"`
	CampgroundSlug  string    `json:"campgroundSlug"`
	DateFrom        time.Time `json:"dateFrom"`
	DateTo          time.Time `json:"dateTo"`
	NumberOfPersons int       `json:"numberOfPersons"`
	PriceMinor      int64     `json:"priceMinor"`
	Status          string    `json:"status" gorm:"type:varchar(20);default:initiated;index"`
	ReservationID   *uint     `json:"reservationID,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (BookingIntent) TableName() string { return "booking_intents" }
