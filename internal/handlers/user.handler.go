package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/reservation-hub/internal/model"
	xhttp "github.com/nimasrn/reservation-hub/pkg/http"
)

type UserService interface {
	Create(ctx context.Context, req model.UserCreateRequest) (*model.User, error)
	ChangePassword(ctx context.Context, userID int64, req model.PasswordChangeRequest) error
	UpdateRole(ctx context.Context, userID int64, role model.Role) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}

type UserHandler struct {
	svc UserService
}

func RegisterUserRoutes(e *router.Group, h *UserHandler, g *Guard) {
	e.GET("/users", g.Require(Admins, h.ListUsers))
	e.POST("/users", g.Require(Admins, h.CreateUser))
	e.PUT("/me/password", g.Require(AnyUser, h.ChangePassword))
	e.PUT("/users/{id}/role", g.Require(Admins, h.UpdateRole))
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

type createUserRequest struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

type roleRequest struct {
	Role model.Role `json:"role"`
}

type passwordRequest struct {
	OldPassword     string `json:"old_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *UserHandler) ListUsers(ctx *xhttp.RequestCtx) {
	users, err := h.svc.List(requestContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, users)
}

func (h *UserHandler) CreateUser(ctx *xhttp.RequestCtx) {
	var req createUserRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	user, err := h.svc.Create(requestContext(ctx), model.UserCreateRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, user)
}

func (h *UserHandler) UpdateRole(ctx *xhttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req roleRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	user, err := h.svc.UpdateRole(requestContext(ctx), id, req.Role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, user)
}

// ChangePassword always acts on the caller's own account.
func (h *UserHandler) ChangePassword(ctx *xhttp.RequestCtx) {
	var req passwordRequest
	if err := readJSON(ctx, &req); err != nil {
		badJSON(ctx, err)
		return
	}
	user := currentUser(ctx)
	err := h.svc.ChangePassword(requestContext(ctx), user.ID, model.PasswordChangeRequest{
		OldPassword:     req.OldPassword,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(xhttp.StatusNoContent)
}
