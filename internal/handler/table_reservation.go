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

// TableReservationHandler serves restaurant table bookings.
type TableReservationHandler struct {
	Service *service.TableReservationService
	log     *zap.Logger
}

// NewTableReservationHandler panics if svc is nil.
func NewTableReservationHandler(svc *service.TableReservationService, log *zap.Logger) *TableReservationHandler {
	if svc == nil {
		panic("nil service passed to NewTableReservationHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &TableReservationHandler{Service: svc, log: log.Named("http")}
}

// createTableReservationRequest lets staff book on behalf of a customer
// through CustomerID.  It is ignored for customers.
type createTableReservationRequest struct {
	CustomerID           uint64     `json:"customer_id"`
	NumberOfPeople       int        `json:"number_of_people"`
	RequestedTime        *time.Time `json:"requested_time" validate:"required"`
	EstimatedArrivalTime *time.Time `json:"estimated_arrival_time" validate:"required"`
	SpecialRequests      string     `json:"special_requests" validate:"max=1000"`
}

type rescheduleTableRequest struct {
	NumberOfPeople       int        `json:"number_of_people"`
	RequestedTime        *time.Time `json:"requested_time" validate:"required"`
	EstimatedArrivalTime *time.Time `json:"estimated_arrival_time" validate:"required"`
	SpecialRequests      *string    `json:"special_requests" validate:"omitempty,max=1000"`
}

// Create handles POST /v1/tables/:id/reservations.
func (h *TableReservationHandler) Create(c echo.Context) error {
	cl := callerFrom(c)
	tableID, err := parseID(c, "id")
	if err != nil {
		return writeError(c, h.log, err)
	}
	var req createTableReservationRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	customer := cl.UserID
	if cl.Staff && req.CustomerID != 0 {
		customer = req.CustomerID
	}
	res, err := h.Service.Create(c.Request().Context(), service.CreateTableReservation{
		TenantID:             cl.TenantID,
		TableID:              tableID,
		CustomerID:           customer,
		NumberOfPeople:       req.NumberOfPeople,
		RequestedTime:        *req.RequestedTime,
		EstimatedArrivalTime: *req.EstimatedArrivalTime,
		SpecialRequests:      req.SpecialRequests,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// HasOverlap handles GET /v1/tables/:id/overlap?start=&end=.  Equal start
// and end describe a point, which never overlaps.
func (h *TableReservationHandler) HasOverlap(c echo.Context) error {
	cl := callerFrom(c)
	tableID, err := parseID(c, "id")
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
	overlap, err := h.Service.HasOverlap(c.Request().Context(), cl.TenantID, tableID, *start, *end)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"overlap": overlap})
}

// Conflicts handles GET /v1/tables/:id/conflicts?start=&end=&exclude_id=.
func (h *TableReservationHandler) Conflicts(c echo.Context) error {
	cl := callerFrom(c)
	tableID, err := parseID(c, "id")
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
	found, err := h.Service.FindConflicts(c.Request().Context(), cl.TenantID, tableID, model.NewInterval(*start, *end), exclude)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": found})
}

// List handles GET /v1/table-reservations.  Customers only see their own.
func (h *TableReservationHandler) List(c echo.Context) error {
	cl := callerFrom(c)
	f := model.TableReservationFilter{TenantID: cl.TenantID}
	var err error
	if f.TableID, err = queryUint(c, "table_id"); err != nil {
		return writeError(c, h.log, err)
	}
	if f.CustomerID, err = queryUint(c, "customer_id"); err != nil {
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
		f.CustomerID = cl.UserID
	}
	page, err := h.Service.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *TableReservationHandler) load(c echo.Context, cl caller) (model.TableReservation, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return model.TableReservation{}, err
	}
	res, err := h.Service.Get(c.Request().Context(), cl.TenantID, id)
	if err != nil {
		return model.TableReservation{}, err
	}
	if !cl.canSee(res.CustomerID) {
		return model.TableReservation{}, errs.ErrNotFound
	}
	return res, nil
}

// Get handles GET /v1/table-reservations/:id.
func (h *TableReservationHandler) Get(c echo.Context) error {
	res, err := h.load(c, callerFrom(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Transition handles POST /v1/table-reservations/:id/:action.
func (h *TableReservationHandler) Transition(c echo.Context) error {
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

// Reschedule handles PUT /v1/table-reservations/:id/schedule.  A zero
// number_of_people keeps the current party size.
func (h *TableReservationHandler) Reschedule(c echo.Context) error {
	cl := callerFrom(c)
	var req rescheduleTableRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, h.log, err)
	}
	cur, err := h.load(c, cl)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.Service.Reschedule(c.Request().Context(), cl.TenantID, cur.ID, service.TableReschedule{
		Window:          model.NewInterval(*req.RequestedTime, *req.EstimatedArrivalTime),
		NumberOfPeople:  req.NumberOfPeople,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Delete handles DELETE /v1/table-reservations/:id.  Staff only.
func (h *TableReservationHandler) Delete(c echo.Context) error {
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
