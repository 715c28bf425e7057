package handlers

import (
	"context"
	"slices"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/internal/services"
	xhttp "github.com/nimasrn/reservation-hub/pkg/http"
)

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
}

// Guard checks HTTP Basic credentials against the users table and the
// caller's role against the roles a route accepts.
type Guard struct {
	auth Authenticator
}

var (
	// Staff may manage stores, revenue types, analytics and delete records.
	Staff = []model.Role{model.RoleAdmin, model.RoleOperator}
	// Editors may create and edit day-to-day records.
	Editors = []model.Role{model.RoleAdmin, model.RoleOperator, model.RoleContributor}
	Admins  = []model.Role{model.RoleAdmin}
	// AnyUser accepts every authenticated user, Guests included.
	AnyUser []model.Role
)

func NewGuard(auth Authenticator) *Guard {
	return &Guard{auth: auth}
}

// Require wraps next so it only runs for users holding one of roles. An
// empty roles list admits any authenticated user.
func (g *Guard) Require(roles []model.Role, next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		username, password, ok := xhttp.BasicAuthCredentials(ctx)
		if !ok {
			ctx.Response.Header.Set("WWW-Authenticate", `Basic realm="reservation-hub"`)
			writeError(ctx, xhttp.StatusUnauthorized, "authentication required")
			return
		}
		user, err := g.auth.Authenticate(ctx, username, password)
		if err != nil {
			respondError(ctx, err)
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, user.Role) {
			respondError(ctx, services.ErrForbidden)
			return
		}
		ctx.SetUserValue(userValueKey, user)
		next(ctx)
	}
}
