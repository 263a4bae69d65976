package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tenant-booking/internal/errs"
	"github.com/iliyamo/tenant-booking/internal/model"
	"github.com/iliyamo/tenant-booking/internal/service"
)

// SpaceReservationHandler serves space bookings.
type SpaceReservationHandler struct {
	Service *service.SpaceReservationService
	log     *zap.Logger
}

// NewSpaceReservationHandler panics if svc is nil.
func NewSpaceReservationHandler(svc *service.SpaceReservationService, log *zap.Logger) *SpaceReservationHandler {
	if svc == nil {
		panic("nil service passed to NewSpaceReservationHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SpaceReservationHandler{Service: svc, log: log.Named("http")}
}

type createSpaceReservationRequest struct {
	StartTime       *time.Time `json:"start_time" validate:"required"`
	EndTime         *time.Time `json:"end_time" validate:"required"`
	TotalPriceCents int64      `json:"total_price_cents" validate:"gte=0"`
	Notes           string     `json:"notes" validate:"max=1000"`
}

type rescheduleSpaceRequest struct {
	StartTime *time.Time `json:"start_time" validate:"required"`
	EndTime   *time.Time `json:"end_time" validate:"required"`
	Notes     *string    `json:"notes" validate:"omitempty,max=1000"`
}

// Create handles POST /v1/spaces/:id/reservations.  The booking is made for
// the authenticated user and starts PENDING.
func (h *SpaceReservationHandler) Create(c echo.Context) error {
	cl := callerFrom(c)
	spaceID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req createSpaceReservationRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.Service.Create(c.Request().Context(), service.CreateSpaceReservation{
		TenantID:        cl.TenantID,
		SpaceID:         spaceID,
		UserID:          cl.UserID,
		Start:           *req.StartTime,
		End:             *req.EndTime,
		TotalPriceCents: req.TotalPriceCents,
		Notes:           req.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// HasOverlap handles GET /v1/spaces/:id/overlap?start=&end=.
func (h *SpaceReservationHandler) HasOverlap(c echo.Context) error {
	cl := callerFrom(c)
	spaceID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	start, err := queryTime(c, "start", true)
	if err != nil {
		return writeError(c, h.log, err)
	}
	end, err := queryTime(c, "end", true)
	if err != nil {
		return writeError(c, h.log, err)
	}
	overlap, err := h.Service.HasOverlap(c.Request().Context(), cl.TenantID, spaceID, *start, *end)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"overlap": overlap})
}

// Conflicts handles GET /v1/spaces/:id/conflicts?start=&end=&exclude_id=.
// Staff only, since it reveals other users' bookings.
func (h *SpaceReservationHandler) Conflicts(c echo.Context) error {
	cl := callerFrom(c)
	spaceID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	start, err := queryTime(c, "start", true)
	if err != nil {
		return writeError(c, h.log, err)
	}
	end, err := queryTime(c, "end", true)
	if err != nil {
		return writeError(c, h.log, err)
	}
	exclude, err := queryUint(c, "exclude_id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	found, err := h.Service.FindConflicts(c.Request().Context(), cl.TenantID, spaceID, model.NewInterval(*start, *end), exclude)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": found})
}

// List handles GET /v1/space-reservations.  Customers only see their own.
func (h *SpaceReservationHandler) List(c echo.Context) error {
	cl := callerFrom(c)
	f := model.SpaceReservationFilter{TenantID: cl.TenantID}
	var err error
	if f.SpaceID, err = queryUint(c, "space_id"); err != nil {
		return writeError(c, h.log, err)
	}
	if f.UserID, err = queryUint(c, "user_id"); err != nil {
		return writeError(c, h.log, err)
	}
	if f.Status, err = queryStatus(c); err != nil {
		return writeError(c, h.log, err)
	}
	if f.DateRange, err = queryDateRange(c); err != nil {
		return writeError(c, h.log, err)
	}
	if f.Pagination, err = queryPagination(c); err != nil {
		return writeError(c, h.log, err)
	}
	if !cl.Staff {
		f.UserID = cl.UserID
	}
	page, err := h.Service.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, page)
}

// load fetches a reservation the caller is allowed to see.
func (h *SpaceReservationHandler) load(c echo.Context, cl caller) (model.SpaceReservation, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return model.SpaceReservation{}, err
	}
	res, err := h.Service.Get(c.Request().Context(), cl.TenantID, id)
	if err != nil {
		return model.SpaceReservation{}, err
	}
	if !cl.canSee(res.BookedByUserID) {
		return model.SpaceReservation{}, errs.ErrNotFound
	}
	return res, nil
}

// Get handles GET /v1/space-reservations/:id.
func (h *SpaceReservationHandler) Get(c echo.Context) error {
	res, err := h.load(c, callerFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Transition handles POST /v1/space-reservations/:id/:action.  Customers may
// only cancel their own reservations.
func (h *SpaceReservationHandler) Transition(c echo.Context) error {
	cl := callerFrom(c)
	action, err := parseAction(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if staffOnly(action) && !cl.Staff {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	cur, err := h.load(c, cl)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.Service.Transition(c.Request().Context(), cl.TenantID, cur.ID, action)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Reschedule handles PUT /v1/space-reservations/:id/schedule.
func (h *SpaceReservationHandler) Reschedule(c echo.Context) error {
	cl := callerFrom(c)
	var req rescheduleSpaceRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	cur, err := h.load(c, cl)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.Service.Reschedule(c.Request().Context(), cl.TenantID, cur.ID, service.SpaceReschedule{
		Window: model.NewInterval(*req.StartTime, *req.EndTime),
		Notes:  req.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Delete handles DELETE /v1/space-reservations/:id.  Staff only.
func (h *SpaceReservationHandler) Delete(c echo.Context) error {
	cl := callerFrom(c)
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	if err := h.Service.Delete(c.Request().Context(), cl.TenantID, id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
