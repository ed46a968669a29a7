package routes

import (
	"errors"
	"net/http"

	"github.com/ajdinkomic/camp-in-bh/booking"
	"github.com/ajdinkomic/camp-in-bh/models"
	"github.com/ajdinkomic/camp-in-bh/payment"
	"github.com/ajdinkomic/camp-in-bh/utils"

	"github.com/kataras/iris/v12"
)

type CheckoutInput struct {
	CampgroundSlug  string `json:"campgroundSlug" validate:"required"`
	DateFrom        string `json:"dateFrom" validate:"required"`
	DateTo          string `json:"dateTo" validate:"required"`
	NumberOfPersons int    `json:"numberOfPersons" validate:"required,min=1"`
}

// POST /create-checkout-session
// Validates and prices the request, then 303-redirects the guest to the
// payment authority. No reservation exists yet when this returns.
func (h *Handler) CreateCheckoutSession(ctx iris.Context) {
	guestID, ok := utils.GuestID(ctx)
	if !ok {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "Sign in to make a reservation.")
		return
	}

	var input CheckoutInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var campground models.Campground
	if err := h.DB.Where("slug = ?", input.CampgroundSlug).First(&campground).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "Campground not found.")
		return
	}

	redirectURL, err := h.Reconciler.Initiate(ctx.Request().Context(), payment.InitiateInput{
		GuestID:         guestID,
		Campground:      &campground,
		DateFrom:        input.DateFrom,
		DateTo:          input.DateTo,
		NumberOfPersons: input.NumberOfPersons,
	})
	if err != nil {
		h.checkoutError(ctx, err)
		return
	}

	ctx.Redirect(redirectURL, iris.StatusSeeOther)
}

// GET /payment/success?state=...
// The authority confirmed the charge; reconcile it into a reservation and
// send the guest back to the campground page.
func (h *Handler) PaymentSuccess(ctx iris.Context) {
	token := ctx.URLParam("state")

	_, slug, err := h.Reconciler.ConfirmSuccess(ctx.Request().Context(), token)
	if err != nil {
		utils.RedirectWithMessage(ctx, campgroundPath(slug), "error", confirmFailureMessage(err))
		return
	}

	utils.RedirectWithMessage(ctx, campgroundPath(slug), "success", "Thank you! Your reservation is confirmed.")
}

// GET /payment/cancel?state=...&campgroundSlug=...
// The guest backed out at the authority; nothing was booked.
func (h *Handler) PaymentCancel(ctx iris.Context) {
	slug := ctx.URLParam("campgroundSlug")

	if token := ctx.URLParam("state"); token != "" {
		if stateSlug, err := h.Reconciler.Abort(ctx.Request().Context(), token); err == nil && stateSlug != "" {
			slug = stateSlug
		}
	}

	utils.RedirectWithMessage(ctx, campgroundPath(slug), "error", "The reservation was not completed.")
}

// GET /reservation/cancel/{reservation_id}
// One-way cancellation of an existing reservation; the row is kept for
// history and its dates free up immediately.
func (h *Handler) CancelReservation(ctx iris.Context) {
	id, err := ctx.Params().GetUint("reservation_id")
	if err != nil {
		utils.RedirectWithMessage(ctx, "/campgrounds", "error", "Reservation not found.")
		return
	}

	guestID, ok := utils.GuestID(ctx)
	if !ok {
		utils.RedirectWithMessage(ctx, "/campgrounds", "error", "Sign in to cancel a reservation.")
		return
	}

	var existing models.Reservation
	if err := h.DB.First(&existing, id).Error; err != nil {
		utils.RedirectWithMessage(ctx, "/campgrounds", "error", "Reservation not found.")
		return
	}
	if existing.GuestID != guestID {
		utils.RedirectWithMessage(ctx, "/campgrounds", "error", "You can only cancel your own reservations.")
		return
	}

	reservation, err := h.Ledger.Cancel(ctx.Request().Context(), id)
	if err != nil {
		var notFound *booking.NotFoundError
		if errors.As(err, &notFound) {
			utils.RedirectWithMessage(ctx, "/campgrounds", "error", "Reservation not found.")
			return
		}
		utils.RedirectWithMessage(ctx, "/campgrounds", "error", "Could not cancel the reservation.")
		return
	}

	path := "/campgrounds"
	var campground models.Campground
	if err := h.DB.First(&campground, reservation.CampgroundID).Error; err == nil {
		path = campgroundPath(campground.Slug)
	}
	utils.RedirectWithMessage(ctx, path, "success", "Reservation canceled.")
}

// GET /reservations
// Every reservation the authenticated guest ever made.
func (h *Handler) ListMyReservations(ctx iris.Context) {
	guestID, ok := utils.GuestID(ctx)
	if !ok {
		utils.JSONError(ctx, http.StatusUnauthorized, "unauthorized", "Sign in to view your reservations.")
		return
	}

	reservations, err := h.Ledger.ListByGuest(ctx.Request().Context(), guestID)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "Could not fetch your reservations.")
		return
	}
	ctx.JSON(iris.Map{"data": reservations})
}

func (h *Handler) checkoutError(ctx iris.Context, err error) {
	var invalidRange *booking.InvalidRangeError
	var invalidInput *booking.InvalidInputError
	var external *booking.ExternalServiceError
	switch {
	case errors.As(err, &invalidRange):
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_range", "The selected dates are not a valid range.")
	case errors.As(err, &invalidInput):
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_input", "The reservation request is not valid.")
	case errors.As(err, &external):
		utils.JSONError(ctx, http.StatusBadGateway, "payment_unavailable", "The payment service is currently unavailable.")
	default:
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "Could not start the reservation.")
	}
}

func confirmFailureMessage(err error) string {
	var conflict *booking.DateConflictError
	var invalidRange *booking.InvalidRangeError
	var invalidInput *booking.InvalidInputError
	switch {
	case errors.As(err, &conflict):
		return "Those dates were booked in the meantime. Please contact support for a refund."
	case errors.As(err, &invalidRange):
		return "The reservation request could not be verified."
	case errors.As(err, &invalidInput):
		return "The reservation request could not be verified."
	default:
		return "Something went wrong while confirming your reservation. Please contact support."
	}
}

func campgroundPath(slug string) string {
	if slug == "" {
		return "/campgrounds"
	}
	return "/campgrounds/" + slug
}
