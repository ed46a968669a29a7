package routes

import (
	"net/http"

	"github.com/ajdinkomic/camp-in-bh/booking"
	"github.com/ajdinkomic/camp-in-bh/models"
	"github.com/ajdinkomic/camp-in-bh/payment"
	"github.com/ajdinkomic/camp-in-bh/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// Handler carries the booking core's dependencies. Every route hangs off
// it; there is no package-level database or payment client.
type Handler struct {
	DB         *gorm.DB
	Ledger     *booking.ReservationLedger
	Index      *booking.AvailabilityIndex
	Reconciler *payment.Reconciler
}

func NewHandler(db *gorm.DB, ledger *booking.ReservationLedger, index *booking.AvailabilityIndex, reconciler *payment.Reconciler) *Handler {
	return &Handler{DB: db, Ledger: ledger, Index: index, Reconciler: reconciler}
}

// GET /campgrounds
// Paginated listing with optional name/city search, newest first.
func (h *Handler) ListCampgrounds(ctx iris.Context) {
	page := ctx.URLParamIntDefault("page", 1)
	if page < 1 {
		page = 1
	}
	const perPage = 6

	q := h.DB.Model(&models.Campground{})
	search := ctx.URLParam("search")
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(city) LIKE LOWER(?)", like, like)
	}

	var total int64
	q.Count(&total)

	var campgrounds []models.Campground
	if err := q.Order("created_at DESC").Offset((page - 1) * perPage).Limit(perPage).Find(&campgrounds).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "Could not fetch campgrounds.")
		return
	}
	utils.JSONPage(ctx, campgrounds, page, perPage, total)
}

// GET /campgrounds/{slug}
// The campground page data: the campground itself, every date already
// booked, and — for an authenticated guest — their own reservations there.
func (h *Handler) GetCampground(ctx iris.Context) {
	slug := ctx.Params().Get("slug")

	var campground models.Campground
	if err := h.DB.Where("slug = ?", slug).First(&campground).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "Campground not found.")
		return
	}

	reservedDates, err := h.Index.BookedDates(ctx.Request().Context(), campground.ID)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "Could not fetch reservations for this campground.")
		return
	}

	var userReservations []models.Reservation
	if guestID, ok := utils.GuestID(ctx); ok {
		userReservations, err = h.Index.UserReservations(ctx.Request().Context(), campground.ID, guestID)
		if err != nil {
			utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "Could not fetch your reservations.")
			return
		}
	}

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"campground":       campground,
			"nightlyPrice":     booking.MajorUnits(campground.NightlyPriceMinor),
			"reservedDates":    reservedDates,
			"userReservations": userReservations,
		},
	})
}
