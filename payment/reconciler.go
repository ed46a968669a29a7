package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/ajdinkomic/camp-in-bh/booking"
	"github.com/ajdinkomic/camp-in-bh/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReplayGuard is a one-time gate per callback token. The durable
// idempotency lives in the booking_intents row; the guard just stops a
// burst of identical callbacks from racing each other into the database.
type ReplayGuard interface {
	FirstUse(ctx context.Context, key string) (bool, error)
}

// RedisReplayGuard marks intent ids in Redis with a TTL matching the
// state token lifetime.
type RedisReplayGuard struct {
	Client *redis.Client
}

func (g *RedisReplayGuard) FirstUse(ctx context.Context, key string) (bool, error) {
	return g.Client.SetNX(ctx, "checkout:confirmed:"+key, 1, 24*time.Hour).Result()
}

// Reconciler bridges the external payment-session lifecycle to ledger
// writes. A booking attempt is Initiated here, then Confirmed or Aborted
// by whichever callback the authority delivers; an abandoned session is
// simply an intent row that never leaves the initiated state.
type Reconciler struct {
	db       *gorm.DB
	provider CheckoutProvider
	codec    *StateCodec
	guard    ReplayGuard

	appBaseURL string
	currency   string
}

func NewReconciler(db *gorm.DB, provider CheckoutProvider, codec *StateCodec, guard ReplayGuard, appBaseURL, currency string) *Reconciler {
	return &Reconciler{
		db:         db,
		provider:   provider,
		codec:      codec,
		guard:      guard,
		appBaseURL: appBaseURL,
		currency:   currency,
	}
}

// InitiateInput is the guest's booking request from the campground page.
type InitiateInput struct {
	GuestID         uint
	Campground      *models.Campground
	DateFrom        string
	DateTo          string
	NumberOfPersons int
}

// Initiate validates and prices the request, records a booking intent and
// opens the external session. Nothing here writes a reservation; the
// guest may still walk away. Validation failures happen before the
// authority is contacted, so a rejected request has no side effects.
func (r *Reconciler) Initiate(ctx context.Context, in InitiateInput) (redirectURL string, err error) {
	dateRange, err := booking.ParseDateRange(in.DateFrom, in.DateTo)
	if err != nil {
		return "", err
	}

	nights := dateRange.Nights()
	totalMinor, err := booking.Quote(in.Campground.NightlyPriceMinor, nights, in.NumberOfPersons)
	if err != nil {
		return "", err
	}

	intent := models.BookingIntent{
		ID:              uuid.NewString(),
		GuestID:         in.GuestID,
		CampgroundID:    in.Campground.ID,
		CampgroundSlug:  in.Campground.Slug,
		DateFrom:        dateRange.DateFrom,
		DateTo:          dateRange.DateTo,
		NumberOfPersons: in.NumberOfPersons,
		PriceMinor:      totalMinor,
		Status:          models.IntentInitiated,
	}
	if err := r.db.WithContext(ctx).Create(&intent).Error; err != nil {
		return "", &booking.PersistenceError{Op: "create booking intent", Err: err}
	}

	token, err := r.codec.Encode(BookingState{
		IntentID:        intent.ID,
		GuestID:         in.GuestID,
		CampgroundID:    in.Campground.ID,
		CampgroundSlug:  in.Campground.Slug,
		NumberOfNights:  nights,
		NumberOfPersons: in.NumberOfPersons,
		PriceMinor:      totalMinor,
		DateFrom:        dateRange.FromString(),
		DateTo:          dateRange.ToString(),
	})
	if err != nil {
		return "", err
	}

	redirectURL, err = r.provider.CreateSession(ctx, CheckoutSession{
		Currency:        r.currency,
		Description:     "Campground reservation: " + in.Campground.Name,
		UnitAmountMinor: in.Campground.NightlyPriceMinor,
		Quantity:        nights,
		SuccessURL:      r.appBaseURL + "/payment/success?state=" + url.QueryEscape(token),
		CancelURL:       r.appBaseURL + "/payment/cancel?state=" + url.QueryEscape(token) + "&campgroundSlug=" + url.QueryEscape(in.Campground.Slug),
	})
	if err != nil {
		// The intent row stays initiated; nothing was charged and no
		// reservation exists, so there is nothing to roll back.
		return "", err
	}
	return redirectURL, nil
}

// ConfirmSuccess handles the authority's success callback. The token is
// verified and the date range re-validated before any write; a replayed
// or retried callback finds the confirmed intent and returns the same
// reservation instead of creating another.
func (r *Reconciler) ConfirmSuccess(ctx context.Context, token string) (*models.Reservation, string, error) {
	state, err := r.codec.Decode(token)
	if err != nil {
		return nil, "", err
	}

	dateRange, err := booking.ParseDateRange(state.DateFrom, state.DateTo)
	if err != nil {
		return nil, state.CampgroundSlug, err
	}
	if dateRange.Nights() <= 0 {
		return nil, state.CampgroundSlug, &booking.InvalidRangeError{From: dateRange.DateFrom, To: dateRange.DateTo}
	}

	if r.guard != nil {
		first, err := r.guard.FirstUse(ctx, state.IntentID)
		if err != nil {
			// Redis being down must not lose a paid booking; the intent
			// row below still dedupes, just without the fast path.
			log.Println("replay guard unavailable:", err)
		} else if !first {
			if existing, err := r.confirmedReservation(ctx, state.IntentID); err == nil {
				return existing, state.CampgroundSlug, nil
			}
		}
	}

	var intent models.BookingIntent
	if err := r.db.WithContext(ctx).First(&intent, "id = ?", state.IntentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, state.CampgroundSlug, &booking.NotFoundError{Entity: "booking intent", ID: state.IntentID}
		}
		return nil, state.CampgroundSlug, &booking.PersistenceError{Op: "load booking intent", Err: err}
	}

	switch intent.Status {
	case models.IntentConfirmed:
		existing, err := r.confirmedReservation(ctx, intent.ID)
		if err != nil {
			return nil, state.CampgroundSlug, err
		}
		return existing, state.CampgroundSlug, nil
	case models.IntentAborted:
		return nil, state.CampgroundSlug, &booking.InvalidInputError{Field: "state", Reason: "booking attempt was already aborted"}
	}

	// The ledger write and the intent flip commit together: a retried
	// callback either finds the intent confirmed or finds it untouched.
	var reservation *models.Reservation
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := booking.NewReservationLedger(tx).Create(ctx, booking.CreateParams{
			GuestID:         state.GuestID,
			CampgroundID:    state.CampgroundID,
			Range:           dateRange,
			NumberOfPersons: state.NumberOfPersons,
			PriceMinor:      state.PriceMinor,
		})
		if err != nil {
			return err
		}
		if err := tx.Model(&models.BookingIntent{}).
			Where("id = ?", intent.ID).
			Updates(map[string]interface{}{"status": models.IntentConfirmed, "reservation_id": created.ID}).Error; err != nil {
			return &booking.PersistenceError{Op: "confirm booking intent", Err: err}
		}
		reservation = created
		return nil
	})
	if err != nil {
		// Payment succeeded but the write failed. The intent stays
		// initiated so a retried callback can still land the booking.
		return nil, state.CampgroundSlug, err
	}
	return reservation, state.CampgroundSlug, nil
}

// Abort handles the authority's cancel callback. Nothing was persisted to
// the ledger during Initiate, so there is only the intent row to close.
func (r *Reconciler) Abort(ctx context.Context, token string) (campgroundSlug string, err error) {
	state, err := r.codec.Decode(token)
	if err != nil {
		return "", err
	}

	if err := r.db.WithContext(ctx).Model(&models.BookingIntent{}).
		Where("id = ? AND status = ?", state.IntentID, models.IntentInitiated).
		Update("status", models.IntentAborted).Error; err != nil {
		return state.CampgroundSlug, &booking.PersistenceError{Op: "abort booking intent", Err: err}
	}
	return state.CampgroundSlug, nil
}

func (r *Reconciler) confirmedReservation(ctx context.Context, intentID string) (*models.Reservation, error) {
	var intent models.BookingIntent
	if err := r.db.WithContext(ctx).First(&intent, "id = ?", intentID).Error; err != nil {
		return nil, &booking.PersistenceError{Op: "load booking intent", Err: err}
	}
	if intent.Status != models.IntentConfirmed || intent.ReservationID == nil {
		return nil, &booking.NotFoundError{Entity: "reservation for intent", ID: intentID}
	}
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, *intent.ReservationID).Error; err != nil {
		return nil, &booking.NotFoundError{Entity: "reservation", ID: fmt.Sprint(*intent.ReservationID)}
	}
	return &reservation, nil
}
