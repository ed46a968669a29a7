package booking

import (
	"fmt"
	"iter"
	"time"
)

// ISODate is the wire format for calendar dates, shared with the external
// checkout callbacks and the campground page.
const ISODate = "2006-01-02"

// DateRange is an inclusive pair of calendar days with no time-of-day
// component. A stay from DateFrom to DateTo covers the nights of
// [DateFrom, DateTo), so DateTo itself is the check-out day.
type DateRange struct {
	DateFrom time.Time
	DateTo   time.Time
}

// NewDateRange normalizes both dates to midnight UTC and rejects ranges
// where to precedes from.
func NewDateRange(from, to time.Time) (DateRange, error) {
	from = startOfDay(from)
	to = startOfDay(to)
	if to.Before(from) {
		return DateRange{}, &InvalidRangeError{From: from, To: to}
	}
	return DateRange{DateFrom: from, DateTo: to}, nil
}

// ParseDateRange builds a DateRange from two YYYY-MM-DD strings.
func ParseDateRange(from, to string) (DateRange, error) {
	f, err := time.ParseInLocation(ISODate, from, time.UTC)
	if err != nil {
		return DateRange{}, &InvalidInputError{Field: "dateFrom", Reason: fmt.Sprintf("not a calendar date: %q", from)}
	}
	t, err := time.ParseInLocation(ISODate, to, time.UTC)
	if err != nil {
		return DateRange{}, &InvalidInputError{Field: "dateTo", Reason: fmt.Sprintf("not a calendar date: %q", to)}
	}
	return NewDateRange(f, t)
}

// Nights returns the whole days between the two dates. A 1-night stay has
// DateTo exactly one day after DateFrom.
func (r DateRange) Nights() int {
	return int(r.DateTo.Sub(r.DateFrom).Hours() / 24)
}

// Days enumerates every calendar day from DateFrom up to but excluding
// DateTo. The sequence is lazy and can be ranged over more than once.
func (r DateRange) Days() iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for d := r.DateFrom; d.Before(r.DateTo); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

// FromString and ToString serialize the bounds for interop with the
// callback URLs and the booked-dates payload.
func (r DateRange) FromString() string { return r.DateFrom.Format(ISODate) }
func (r DateRange) ToString() string   { return r.DateTo.Format(ISODate) }

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
