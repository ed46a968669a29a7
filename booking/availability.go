package booking

import (
	"context"
	"sort"

	"github.com/ajdinkomic/camp-in-bh/models"
)

// AvailabilityIndex derives the set of already-reserved dates for a
// campground from the ledger. It keeps no state of its own, so every call
// reflects the latest committed reservations.
type AvailabilityIndex struct {
	ledger *ReservationLedger
}

func NewAvailabilityIndex(ledger *ReservationLedger) *AvailabilityIndex {
	return &AvailabilityIndex{ledger: ledger}
}

// BookedDates returns every calendar day covered by at least one active
// reservation, as sorted YYYY-MM-DD strings. Canceled reservations
// contribute nothing.
func (a *AvailabilityIndex) BookedDates(ctx context.Context, campgroundID uint) ([]string, error) {
	reservations, err := a.ledger.ListByCampground(ctx, campgroundID, false)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, reservation := range reservations {
		r := DateRange{DateFrom: reservation.DateFrom, DateTo: reservation.DateTo}
		for day := range r.Days() {
			seen[day.Format(ISODate)] = struct{}{}
		}
	}

	dates := make([]string, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}

// UserReservations projects a campground's reservations down to those
// belonging to one guest, canceled ones included so the page can show
// their history.
func (a *AvailabilityIndex) UserReservations(ctx context.Context, campgroundID, guestID uint) ([]models.Reservation, error) {
	reservations, err := a.ledger.ListByCampground(ctx, campgroundID, true)
	if err != nil {
		return nil, err
	}

	var mine []models.Reservation
	for _, reservation := range reservations {
		if reservation.GuestID == guestID {
			mine = append(mine, reservation)
		}
	}
	return mine, nil
}
