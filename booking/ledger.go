package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/ajdinkomic/camp-in-bh/models"

	"gorm.io/gorm"
)

// ReservationLedger owns every reservation write. It is constructed with
// its database handle; nothing in this package touches process-wide state.
type ReservationLedger struct {
	db *gorm.DB
}

func NewReservationLedger(db *gorm.DB) *ReservationLedger {
	return &ReservationLedger{db: db}
}

// CreateParams carries everything Create persists. Price is the caller's
// snapshot; the ledger never re-derives it from the campground rate.
type CreateParams struct {
	GuestID         uint
	CampgroundID    uint
	Range           DateRange
	NumberOfPersons int
	PriceMinor      int64
}

// Create persists a new active reservation. The write is conditional: it
// refuses with DateConflictError when the half-open range overlaps an
// existing non-canceled reservation for the same campground. The count
// and the insert run in one transaction so a stale availability check on
// the campground page cannot slip a double booking past the ledger.
func (l *ReservationLedger) Create(ctx context.Context, p CreateParams) (*models.Reservation, error) {
	if p.Range.Nights() <= 0 {
		return nil, &InvalidRangeError{From: p.Range.DateFrom, To: p.Range.DateTo}
	}
	if p.NumberOfPersons <= 0 {
		return nil, &InvalidInputError{Field: "numberOfPersons", Reason: "must be at least 1"}
	}

	reservation := &models.Reservation{
		GuestID:         p.GuestID,
		CampgroundID:    p.CampgroundID,
		DateFrom:        p.Range.DateFrom,
		DateTo:          p.Range.DateTo,
		NumberOfNights:  p.Range.Nights(),
		NumberOfPersons: p.NumberOfPersons,
		PriceMinor:      p.PriceMinor,
		IsCanceled:      false,
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var overlapping int64
		if err := tx.Model(&models.Reservation{}).
			Where("campground_id = ? AND is_canceled = ? AND date_from < ? AND date_to > ?",
				p.CampgroundID, false, p.Range.DateTo, p.Range.DateFrom).
			Count(&overlapping).Error; err != nil {
			return &PersistenceError{Op: "overlap check", Err: err}
		}
		if overlapping > 0 {
			return &DateConflictError{CampgroundID: p.CampgroundID, Range: p.Range}
		}
		if err := tx.Create(reservation).Error; err != nil {
			return &PersistenceError{Op: "create reservation", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

// Cancel flips IsCanceled on; the transition is one-way and the row stays
// in place for history. Canceling an already-canceled reservation repeats
// the write and is harmless.
func (l *ReservationLedger) Cancel(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := l.db.WithContext(ctx).First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "reservation", ID: fmt.Sprint(id)}
		}
		return nil, &PersistenceError{Op: "load reservation", Err: err}
	}

	reservation.IsCanceled = true
	if err := l.db.WithContext(ctx).Model(&reservation).Update("is_canceled", true).Error; err != nil {
		return nil, &PersistenceError{Op: "cancel reservation", Err: err}
	}
	return &reservation, nil
}

// ListByCampground returns a campground's reservations ordered so active,
// soonest-starting ones surface first, matching the campground page.
func (l *ReservationLedger) ListByCampground(ctx context.Context, campgroundID uint, includeCanceled bool) ([]models.Reservation, error) {
	q := l.db.WithContext(ctx).Where("campground_id = ?", campgroundID)
	if !includeCanceled {
		q = q.Where("is_canceled = ?", false)
	}

	var reservations []models.Reservation
	if err := q.Order("is_canceled ASC, date_from ASC").Find(&reservations).Error; err != nil {
		return nil, &PersistenceError{Op: "list reservations", Err: err}
	}
	return reservations, nil
}

// ListByGuest returns every reservation a guest ever made, canceled ones
// included, newest stay first.
func (l *ReservationLedger) ListByGuest(ctx context.Context, guestID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := l.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("date_from DESC").
		Find(&reservations).Error; err != nil {
		return nil, &PersistenceError{Op: "list guest reservations", Err: err}
	}
	return reservations, nil
}
