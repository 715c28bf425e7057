package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/internal/services"
	xhttp "github.com/nimasrn/reservation-hub/pkg/http"
	"github.com/nimasrn/reservation-hub/pkg/logger"
	"github.com/nimasrn/reservation-hub/pkg/pg"
)

const userValueKey = "auth.user"

// requestContext binds the authenticated user, when there is one, so audit
// columns are stamped with its id.
func requestContext(ctx *xhttp.RequestCtx) context.Context {
	if u := currentUser(ctx); u != nil {
		return pg.WithActor(ctx, u.ID)
	}
	return ctx
}

func currentUser(ctx *xhttp.RequestCtx) *model.User {
	u, _ := ctx.UserValue(userValueKey).(*model.User)
	return u
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	return json.Unmarshal(ctx.PostBody(), dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	xhttp.WriteJSON(ctx, status, v)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	xhttp.WriteError(ctx, status, msg)
}

// respondError renders err with the status its kind maps to.
func respondError(ctx *xhttp.RequestCtx, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		writeJSON(ctx, xhttp.StatusBadRequest, verr)
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrStoreNotFound),
		errors.Is(err, services.ErrCustomerNotFound),
		errors.Is(err, services.ErrReservationNotFound),
		errors.Is(err, services.ErrRevenueNotFound),
		errors.Is(err, services.ErrRevenueTypeNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrComplimentNotFound),
		errors.Is(err, services.ErrTargetNotFound),
		errors.Is(err, services.ErrPublicLookupNotFound):
		writeError(ctx, xhttp.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrReferenceNotFound):
		writeError(ctx, xhttp.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUserExists),
		errors.Is(err, services.ErrCustomerCodeTaken),
		errors.Is(err, services.ErrRevenueTypeExists),
		errors.Is(err, services.ErrRevenueTypeInUse),
		errors.Is(err, services.ErrTargetExists),
		errors.Is(err, services.ErrStatusTransition),
		errors.Is(err, services.ErrDuplicateCode):
		writeError(ctx, xhttp.StatusConflict, err.Error())
	case errors.Is(err, services.ErrCodeGenerationExhausted):
		writeError(ctx, xhttp.StatusServiceUnavailable, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(ctx, xhttp.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		writeError(ctx, xhttp.StatusForbidden, err.Error())
	default:
		logger.Error("request failed", "path", string(ctx.Path()), "error", err)
		writeError(ctx, xhttp.StatusInternalServerError, xhttp.StatusText(xhttp.StatusInternalServerError))
	}
}

// pathID reads a numeric route parameter. On failure it answers 400 and
// returns false.
func pathID(ctx *xhttp.RequestCtx, name string) (int64, bool) {
	raw, _ := ctx.UserValue(name).(string)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeJSON(ctx, xhttp.StatusBadRequest, model.NewValidationError(name, "invalid "+name))
		return 0, false
	}
	return id, true
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return strings.TrimSpace(string(ctx.QueryArgs().Peek(key)))
}

func queryInt64(ctx *xhttp.RequestCtx, key string) (*int64, error) {
	v := query(ctx, key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, model.NewValidationError(key, "invalid "+key)
	}
	return &n, nil
}

func queryInt(ctx *xhttp.RequestCtx, key string) (int, error) {
	v := query(ctx, key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, model.NewValidationError(key, "invalid "+key)
	}
	return n, nil
}

func queryTime(ctx *xhttp.RequestCtx, key string) (*time.Time, error) {
	v := query(ctx, key)
	if v == "" {
		return nil, nil
	}
	t, err := parseTime(v)
	if err != nil {
		return nil, model.NewValidationError(key, "invalid "+key)
	}
	return &t, nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// inputLocation is the zone offset-free request times are read in.
var inputLocation = time.UTC

// SetLocation makes offset-free request times wall-clock times in loc.
func SetLocation(loc *time.Location) {
	if loc != nil {
		inputLocation = loc
	}
}

// parseTime accepts RFC3339, an HTML datetime-local value or a bare date.
// Values without an offset are read in inputLocation.
func parseTime(s string) (time.Time, error) {
	var err error
	for _, layout := range timeLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, inputLocation); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// Timestamp is a JSON time accepting every layout parseTime does.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := parseTime(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t *Timestamp) Ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

func badJSON(ctx *xhttp.RequestCtx, err error) {
	writeError(ctx, xhttp.StatusBadRequest, "invalid JSON: "+err.Error())
}
