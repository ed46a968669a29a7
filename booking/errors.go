package booking

import (
	"fmt"
	"time"
)

// InvalidRangeError reports a date range whose end precedes its start.
type InvalidRangeError struct {
	From time.Time
	To   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: %s is before %s", e.To.Format(ISODate), e.From.Format(ISODate))
}

// InvalidInputError reports a booking parameter that fails validation
// before anything external is touched.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing reservation or campground.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// DateConflictError reports that the requested range overlaps an active
// reservation for the same campground.
type DateConflictError struct {
	CampgroundID uint
	Range        DateRange
}

func (e *DateConflictError) Error() string {
	return fmt.Sprintf("campground %d is already reserved between %s and %s",
		e.CampgroundID, e.Range.FromString(), e.Range.ToString())
}

// ExternalServiceError reports a failed call to the payment authority.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// PersistenceError wraps a store read or write failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
