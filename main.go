package main

import (
	"log"

	"github.com/ajdinkomic/camp-in-bh/booking"
	"github.com/ajdinkomic/camp-in-bh/config"
	"github.com/ajdinkomic/camp-in-bh/payment"
	"github.com/ajdinkomic/camp-in-bh/routes"
	"github.com/ajdinkomic/camp-in-bh/storage"
	"github.com/ajdinkomic/camp-in-bh/utils"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	redisClient := storage.NewRedis(cfg.RedisURL)

	ledger := booking.NewReservationLedger(db)
	index := booking.NewAvailabilityIndex(ledger)
	reconciler := payment.NewReconciler(
		db,
		payment.NewCheckoutClient(cfg.PaymentAPIURL, cfg.PaymentAPIKey),
		payment.NewStateCodec(cfg.StateHashKey, cfg.StateBlockKey),
		&payment.RedisReplayGuard{Client: redisClient},
		cfg.AppBaseURL,
		cfg.Currency,
	)
	handler := routes.NewHandler(db, ledger, index, reconciler)

	app := iris.New()
	app.Validator = validator.New()

	accessTokenVerifier := utils.NewAccessTokenVerifier(cfg.AccessTokenSecret)
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	campgrounds := app.Party("/campgrounds")
	{
		campgrounds.Get("/", handler.ListCampgrounds)
		campgrounds.Get("/{slug}", utils.OptionalGuestMiddleware(accessTokenVerifier), handler.GetCampground)
	}

	app.Post("/create-checkout-session", accessTokenVerifierMiddleware, utils.GuestIDFromTokenMiddleware, handler.CreateCheckoutSession)

	// The payment authority calls back without our auth headers; the
	// signed state token is the credential on these two.
	app.Get("/payment/success", handler.PaymentSuccess)
	app.Get("/payment/cancel", handler.PaymentCancel)

	app.Get("/reservation/cancel/{reservation_id:uint}", accessTokenVerifierMiddleware, utils.GuestIDFromTokenMiddleware, handler.CancelReservation)
	app.Get("/reservations", accessTokenVerifierMiddleware, utils.GuestIDFromTokenMiddleware, handler.ListMyReservations)

	log.Printf("server starting on %s", cfg.HTTPAddr)
	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
