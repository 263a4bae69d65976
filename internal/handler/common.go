// Package handler exposes the reservation engine over HTTP.  Handlers take
// the tenant and caller from the JWT claims placed in the context by
// middleware.JWTAuth and never from the request body.
package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tenant-booking/internal/errs"
	"github.com/iliyamo/tenant-booking/internal/middleware"
	"github.com/iliyamo/tenant-booking/internal/model"
	"github.com/iliyamo/tenant-booking/internal/utils"
)

// staffRoles may confirm, reject, complete and delete reservations and see
// every reservation of the tenant.
var staffRoles = map[string]bool{utils.RoleAdmin: true, utils.RoleStaff: true}

// Validator adapts validator/v10 to echo.Validator.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a validator that reports JSON field names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			return errs.Invalid(ve[0].Field(), "failed "+ve[0].Tag())
		}
		return errs.Invalid("body", err.Error())
	}
	return nil
}

// bind decodes the body into req and validates it.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errs.Invalid("body", "malformed request body")
	}
	return c.Validate(req)
}

// writeError maps an engine error to a JSON response.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	switch errs.Kind(err) {
	case errs.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
	case errs.ErrValidation:
		body := echo.Map{"error": "validation_failed"}
		var ve *errs.ValidationError
		if errors.As(err, &ve) {
			body["field"] = ve.Field
			body["reason"] = ve.Reason
		}
		return c.JSON(http.StatusBadRequest, body)
	case errs.ErrConflict:
		body := echo.Map{"error": "conflict"}
		var ce *errs.ConflictError
		if errors.As(err, &ce) {
			body["reservation_ids"] = ce.ReservationIDs
		}
		return c.JSON(http.StatusConflict, body)
	case errs.ErrInvalidTransition:
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid_transition", "message": err.Error()})
	}
	log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// caller is the authenticated identity of a request.
type caller struct {
	TenantID uint64
	UserID   uint64
	Staff    bool
}

func callerFrom(c echo.Context) caller {
	return caller{
		TenantID: middleware.TenantID(c),
		UserID:   middleware.UserID(c),
		Staff:    middleware.HasRole(c, staffRoles),
	}
}

// canSee reports whether the caller may read or change a reservation owned
// by ownerID.  Customers only see their own bookings.
func (cl caller) canSee(ownerID uint64) bool {
	return cl.Staff || cl.UserID == ownerID
}

func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Invalid(name, "must be a positive integer")
	}
	return id, nil
}

func queryUint(c echo.Context, name string) (uint64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errs.Invalid(name, "must be a positive integer")
	}
	return n, nil
}

func queryTime(c echo.Context, name string, required bool) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		if required {
			return nil, errs.Invalid(name, "is required")
		}
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, errs.Invalid(name, "must be an RFC 3339 timestamp")
	}
	t = t.UTC()
	return &t, nil
}

func queryStatus(c echo.Context) (model.Status, error) {
	raw := c.QueryParam("status")
	if raw == "" {
		return "", nil
	}
	st, ok := model.ParseStatus(raw)
	if !ok {
		return "", errs.Invalid("status", "unknown status")
	}
	return st, nil
}

func queryDateRange(c echo.Context) (model.DateRange, error) {
	from, err := queryTime(c, "from", false)
	if err != nil {
		return model.DateRange{}, err
	}
	to, err := queryTime(c, "to", false)
	if err != nil {
		return model.DateRange{}, err
	}
	return model.DateRange{From: from, To: to}, nil
}

func queryPagination(c echo.Context) (model.Pagination, error) {
	var p model.Pagination
	for name, dst := range map[string]*int{"page": &p.Page, "page_size": &p.PageSize} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return p, errs.Invalid(name, "must be a non-negative integer")
		}
		*dst = n
	}
	return p.Normalize(), nil
}

// parseAction accepts the HTTP-visible actions.  Expiry is left to the
// background sweeper.
func parseAction(c echo.Context) (model.Action, error) {
	action, ok := model.ParseAction(c.Param("action"))
	if !ok || action == model.ActionExpire {
		return "", errs.Invalid("action", "unsupported action")
	}
	return action, nil
}

// staffOnly reports whether action needs a staff role.
func staffOnly(action model.Action) bool {
	return action != model.ActionCancel
}
