package booking

// Quote computes the total price of a stay in integer minor units
// (feninga). The price is nightlyMinor per night; party size is recorded
// on the reservation but does not affect the amount.
func Quote(nightlyMinor int64, nights, persons int) (int64, error) {
	if nights <= 0 {
		return 0, &InvalidInputError{Field: "nights", Reason: "must be at least 1"}
	}
	if nightlyMinor < 0 {
		return 0, &InvalidInputError{Field: "nightlyPrice", Reason: "must not be negative"}
	}
	if persons <= 0 {
		return 0, &InvalidInputError{Field: "numberOfPersons", Reason: "must be at least 1"}
	}
	return nightlyMinor * int64(nights), nil
}

// MajorUnits converts a minor-unit amount to major units for display.
// Money stays in minor units everywhere else.
func MajorUnits(minor int64) float64 {
	return float64(minor) / 100
}
