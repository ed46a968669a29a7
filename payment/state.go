package payment

import (
	"github.com/ajdinkomic/camp-in-bh/booking"

	"github.com/gorilla/securecookie"
)

// BookingState is the booking-parameter payload round-tripped through the
// payment authority's callback URLs. It travels as a single signed,
// encrypted token instead of loose query parameters, so a guest cannot
// rewrite the price or the dates between checkout and the success
// callback.
type BookingState struct {
	IntentID        string `json:"intentID"`
	GuestID         uint   `json:"user"`
	CampgroundID    uint   `json:"campground"`
	CampgroundSlug  string `json:"campgroundSlug"`
	NumberOfNights  int    `json:"numberOfNights"`
	NumberOfPersons int    `json:"numberOfPersons"`
	PriceMinor      int64  `json:"price"`
	DateFrom        string `json:"dateFrom"`
	DateTo          string `json:"dateTo"`
}

const stateParam = "state"

// StateCodec signs and seals BookingState values. Both keys come from
// configuration; rotating them invalidates in-flight checkouts, which is
// acceptable since nothing is persisted for abandoned sessions.
type StateCodec struct {
	sc *securecookie.SecureCookie
}

func NewStateCodec(hashKey, blockKey []byte) *StateCodec {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(24 * 60 * 60) // a checkout older than a day is stale
	return &StateCodec{sc: sc}
}

func (c *StateCodec) Encode(state BookingState) (string, error) {
	token, err := c.sc.Encode(stateParam, state)
	if err != nil {
		return "", &booking.ExternalServiceError{Service: "state codec", Err: err}
	}
	return token, nil
}

// Decode rejects tokens with a bad signature, a stale timestamp or a
// garbled payload. Tampering always fails here, before any persistence.
func (c *StateCodec) Decode(token string) (BookingState, error) {
	if token == "" {
		return BookingState{}, &booking.InvalidInputError{Field: stateParam, Reason: "missing"}
	}
	var state BookingState
	if err := c.sc.Decode(stateParam, token, &state); err != nil {
		return BookingState{}, &booking.InvalidInputError{Field: stateParam, Reason: "signature or payload rejected"}
	}
	if state.IntentID == "" {
		return BookingState{}, &booking.InvalidInputError{Field: stateParam, Reason: "no intent id"}
	}
	return state, nil
}
