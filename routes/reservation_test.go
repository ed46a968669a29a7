package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ajdinkomic/camp-in-bh/booking"
	"github.com/ajdinkomic/camp-in-bh/models"
	"github.com/ajdinkomic/camp-in-bh/payment"
	"github.com/ajdinkomic/camp-in-bh/utils"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "testsecret"

// fakeProvider answers checkout-session calls without leaving the process.
type fakeProvider struct {
	lastSession payment.CheckoutSession
}

func (f *fakeProvider) CreateSession(ctx context.Context, session payment.CheckoutSession) (string, error) {
	f.lastSession = session
	return "https://pay.example.com/session/abc", nil
}

// buildTestApp wires a minimal iris app over an in-memory database, the
// same way main does over Postgres.
func buildTestApp(t *testing.T) (*iris.Application, *gorm.DB, *fakeProvider) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Campground{}, &models.Reservation{}, &models.BookingIntent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ledger := booking.NewReservationLedger(db)
	index := booking.NewAvailabilityIndex(ledger)
	provider := &fakeProvider{}
	codec := payment.NewStateCodec([]byte("0123456789abcdef0123456789abcdef"), []byte("0123456789abcdef"))
	reconciler := payment.NewReconciler(db, provider, codec, nil, "https://camp.example.com", "bam")
	handler := NewHandler(db, ledger, index, reconciler)

	app := iris.New()
	app.Validator = validator.New()

	verifier := utils.NewAccessTokenVerifier(testSecret)
	verifierMiddleware := verifier.Verify(func() interface{} { return new(utils.AccessToken) })

	campgrounds := app.Party("/campgrounds")
	{
		campgrounds.Get("/", handler.ListCampgrounds)
		campgrounds.Get("/{slug}", utils.OptionalGuestMiddleware(verifier), handler.GetCampground)
	}
	app.Post("/create-checkout-session", verifierMiddleware, utils.GuestIDFromTokenMiddleware, handler.CreateCheckoutSession)
	app.Get("/payment/success", handler.PaymentSuccess)
	app.Get("/payment/cancel", handler.PaymentCancel)
	app.Get("/reservation/cancel/{reservation_id:uint}", verifierMiddleware, utils.GuestIDFromTokenMiddleware, handler.CancelReservation)
	app.Get("/reservations", verifierMiddleware, utils.GuestIDFromTokenMiddleware, handler.ListMyReservations)

	if err := app.Build(); err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app, db, provider
}

func signGuestToken(t *testing.T, id uint) string {
	t.Helper()
	token, err := utils.CreateAccessToken(id, testSecret)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func seedCampground(t *testing.T, db *gorm.DB) *models.Campground {
	t.Helper()
	campground := &models.Campground{
		OwnerID:           3,
		Slug:              "una-river-camp",
		Name:              "Una River Camp",
		City:              "Bihac",
		NightlyPriceMinor: 10000,
	}
	if err := db.Create(campground).Error; err != nil {
		t.Fatal(err)
	}
	return campground
}

func seedReservation(t *testing.T, db *gorm.DB, campgroundID, guestID uint, from, to string) *models.Reservation {
	t.Helper()
	ledger := booking.NewReservationLedger(db)
	r, err := booking.ParseDateRange(from, to)
	if err != nil {
		t.Fatal(err)
	}
	reservation, err := ledger.Create(context.Background(), booking.CreateParams{
		GuestID:         guestID,
		CampgroundID:    campgroundID,
		Range:           r,
		NumberOfPersons: 2,
		PriceMinor:      10000 * int64(r.Nights()),
	})
	if err != nil {
		t.Fatal(err)
	}
	return reservation
}

func TestGetCampgroundShowsBookedDates(t *testing.T) {
	app, db, _ := buildTestApp(t)
	campground := seedCampground(t, db)
	seedReservation(t, db, campground.ID, 1, "2024-06-01", "2024-06-04")
	seedReservation(t, db, campground.ID, 2, "2024-06-05", "2024-06-08")

	req := httptest.NewRequest(http.MethodGet, "/campgrounds/una-river-camp", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Data struct {
			ReservedDates    []string            `json:"reservedDates"`
			UserReservations []models.Reservation `json:"userReservations"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}

	want := []string{"2024-06-01", "2024-06-02", "2024-06-03", "2024-06-05", "2024-06-06", "2024-06-07"}
	if len(body.Data.ReservedDates) != len(want) {
		t.Fatalf("reservedDates = %v, want %v", body.Data.ReservedDates, want)
	}
	for i := range want {
		if body.Data.ReservedDates[i] != want[i] {
			t.Errorf("reservedDates[%d] = %s, want %s", i, body.Data.ReservedDates[i], want[i])
		}
	}
	// Anonymous request carries no personal reservations.
	if len(body.Data.UserReservations) != 0 {
		t.Errorf("anonymous userReservations = %v", body.Data.UserReservations)
	}
}

func TestGetCampgroundShowsOwnReservationsWhenAuthed(t *testing.T) {
	app, db, _ := buildTestApp(t)
	campground := seedCampground(t, db)
	mine := seedReservation(t, db, campground.ID, 1, "2024-06-01", "2024-06-04")
	seedReservation(t, db, campground.ID, 2, "2024-06-05", "2024-06-08")

	req := httptest.NewRequest(http.MethodGet, "/campgrounds/una-river-camp", nil)
	req.Header.Set("Authorization", "Bearer "+signGuestToken(t, 1))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}

	var body struct {
		Data struct {
			UserReservations []models.Reservation `json:"userReservations"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Data.UserReservations) != 1 || body.Data.UserReservations[0].ID != mine.ID {
		t.Errorf("userReservations = %+v, want only reservation %d", body.Data.UserReservations, mine.ID)
	}
}

func TestGetCampgroundUnknownSlug(t *testing.T) {
	app, _, _ := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/campgrounds/no-such-camp", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.Code)
	}
}

func TestCheckoutRequiresAuth(t *testing.T) {
	app, db, _ := buildTestApp(t)
	seedCampground(t, db)

	payload := `{"campgroundSlug":"una-river-camp","dateFrom":"2024-06-01","dateTo":"2024-06-04","numberOfPersons":2}`
	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code == http.StatusSeeOther {
		t.Fatalf("anonymous checkout succeeded: %d", resp.Code)
	}
}

func TestCheckoutRedirectsToAuthority(t *testing.T) {
	app, db, provider := buildTestApp(t)
	seedCampground(t, db)

	payload := `{"campgroundSlug":"una-river-camp","dateFrom":"2024-06-01","dateTo":"2024-06-04","numberOfPersons":2}`
	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signGuestToken(t, 1))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, body = %s", resp.Code, resp.Body.String())
	}
	if loc := resp.Header().Get("Location"); loc != "https://pay.example.com/session/abc" {
		t.Errorf("Location = %q", loc)
	}
	if provider.lastSession.Quantity != 3 || provider.lastSession.UnitAmountMinor != 10000 {
		t.Errorf("session = %+v", provider.lastSession)
	}
}

func TestCheckoutRejectsReversedDates(t *testing.T) {
	app, db, _ := buildTestApp(t)
	seedCampground(t, db)

	payload := `{"campgroundSlug":"una-river-camp","dateFrom":"2024-06-04","dateTo":"2024-06-01","numberOfPersons":2}`
	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signGuestToken(t, 1))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.Code)
	}
	var reservations int64
	db.Model(&models.Reservation{}).Count(&reservations)
	if reservations != 0 {
		t.Error("invalid checkout wrote a reservation")
	}
}

func TestPaymentSuccessConfirmsAndRedirects(t *testing.T) {
	app, db, provider := buildTestApp(t)
	seedCampground(t, db)

	// Initiate through the route so the state token is the real one.
	payload := `{"campgroundSlug":"una-river-camp","dateFrom":"2024-06-01","dateTo":"2024-06-04","numberOfPersons":2}`
	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signGuestToken(t, 1))
	app.ServeHTTP(httptest.NewRecorder(), req)

	u, err := url.Parse(provider.lastSession.SuccessURL)
	if err != nil {
		t.Fatal(err)
	}

	callback := httptest.NewRequest(http.MethodGet, "/payment/success?"+u.RawQuery, nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, callback)

	if resp.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", resp.Code)
	}
	loc := resp.Header().Get("Location")
	if !strings.HasPrefix(loc, "/campgrounds/una-river-camp?") {
		t.Errorf("Location = %q", loc)
	}

	var reservation models.Reservation
	if err := db.First(&reservation).Error; err != nil {
		t.Fatalf("no reservation after success callback: %v", err)
	}
	if reservation.NumberOfNights != 3 || reservation.PriceMinor != 30000 {
		t.Errorf("reservation = %+v", reservation)
	}
}

func TestPaymentCancelWritesNothing(t *testing.T) {
	app, db, provider := buildTestApp(t)
	seedCampground(t, db)

	payload := `{"campgroundSlug":"una-river-camp","dateFrom":"2024-06-01","dateTo":"2024-06-04","numberOfPersons":2}`
	req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signGuestToken(t, 1))
	app.ServeHTTP(httptest.NewRecorder(), req)

	u, err := url.Parse(provider.lastSession.CancelURL)
	if err != nil {
		t.Fatal(err)
	}

	callback := httptest.NewRequest(http.MethodGet, "/payment/cancel?"+u.RawQuery, nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, callback)

	if resp.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", resp.Code)
	}
	var reservations int64
	db.Model(&models.Reservation{}).Count(&reservations)
	if reservations != 0 {
		t.Error("cancel callback wrote a reservation")
	}
}

func TestCancelReservationFlow(t *testing.T) {
	app, db, _ := buildTestApp(t)
	campground := seedCampground(t, db)
	reservation := seedReservation(t, db, campground.ID, 1, "2024-06-01", "2024-06-04")

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/reservation/cancel/%d", reservation.ID), nil)
	req.Header.Set("Authorization", "Bearer "+signGuestToken(t, 1))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", resp.Code)
	}
	var updated models.Reservation
	if err := db.First(&updated, reservation.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !updated.IsCanceled {
		t.Error("reservation not canceled")
	}
}

func TestCancelReservationForeignGuestRejected(t *testing.T) {
	app, db, _ := buildTestApp(t)
	campground := seedCampground(t, db)
	reservation := seedReservation(t, db, campground.ID, 1, "2024-06-01", "2024-06-04")

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/reservation/cancel/%d", reservation.ID), nil)
	req.Header.Set("Authorization", "Bearer "+signGuestToken(t, 99))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	var updated models.Reservation
	if err := db.First(&updated, reservation.ID).Error; err != nil {
		t.Fatal(err)
	}
	if updated.IsCanceled {
		t.Error("foreign guest canceled someone else's reservation")
	}
}

func TestCancelReservationUnknownID(t *testing.T) {
	app, _, _ := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/reservation/cancel/999", nil)
	req.Header.Set("Authorization", "Bearer "+signGuestToken(t, 1))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", resp.Code)
	}
	loc := resp.Header().Get("Location")
	if !strings.Contains(loc, "messageType=error") {
		t.Errorf("Location = %q, want an error message redirect", loc)
	}
}

func TestListMyReservations(t *testing.T) {
	app, db, _ := buildTestApp(t)
	campground := seedCampground(t, db)
	mine := seedReservation(t, db, campground.ID, 1, "2024-06-01", "2024-06-04")
	seedReservation(t, db, campground.ID, 2, "2024-06-05", "2024-06-08")

	req := httptest.NewRequest(http.MethodGet, "/reservations", nil)
	req.Header.Set("Authorization", "Bearer "+signGuestToken(t, 1))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}

	var body struct {
		Data []models.Reservation `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Data) != 1 || body.Data[0].ID != mine.ID {
		t.Errorf("reservations = %+v, want only %d", body.Data, mine.ID)
	}
}
