package payment

import (
	"errors"
	"strings"
	"testing"

	"github.com/ajdinkomic/camp-in-bh/booking"
)

func testCodec() *StateCodec {
	hashKey := []byte("0123456789abcdef0123456789abcdef")
	blockKey := []byte("0123456789abcdef")
	return NewStateCodec(hashKey, blockKey)
}

func testState() BookingState {
	return BookingState{
		IntentID:        "b2f4c7e0-1111-2222-3333-444455556666",
		GuestID:         1,
		CampgroundID:    7,
		CampgroundSlug:  "una-river-camp",
		NumberOfNights:  3,
		NumberOfPersons: 2,
		PriceMinor:      30000,
		DateFrom:        "2024-06-01",
		DateTo:          "2024-06-04",
	}
}

func TestStateRoundTrip(t *testing.T) {
	codec := testCodec()

	token, err := codec.Encode(testState())
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := codec.Decode(token)
	if err != nil {
		t.Fatal(err)
	}
	if decoded != testState() {
		t.Errorf("round trip changed the state: %+v", decoded)
	}
}

func TestStateRejectsTampering(t *testing.T) {
	codec := testCodec()
	token, err := codec.Encode(testState())
	if err != nil {
		t.Fatal(err)
	}

	// Flip a character somewhere in the middle of the token.
	mid := len(token) / 2
	tampered := token[:mid] + flip(token[mid:mid+1]) + token[mid+1:]

	_, err = codec.Decode(tampered)
	var invalid *booking.InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError for tampered token, got %v", err)
	}
}

func TestStateRejectsForeignKey(t *testing.T) {
	token, err := testCodec().Encode(testState())
	if err != nil {
		t.Fatal(err)
	}

	other := NewStateCodec([]byte("ffffffffffffffffffffffffffffffff"), []byte("ffffffffffffffff"))
	if _, err := other.Decode(token); err == nil {
		t.Fatal("token signed with a different key was accepted")
	}
}

func TestStateRejectsMissingToken(t *testing.T) {
	var invalid *booking.InvalidInputError
	if _, err := testCodec().Decode(""); !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError for empty token, got %v", err)
	}
}

func flip(s string) string {
	if strings.EqualFold(s, "a") {
		return "b"
	}
	return "a"
}
