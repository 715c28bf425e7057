package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nimasrn/reservation-hub/internal/model"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User, passwordHash string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Credentials(ctx context.Context, username string) (*model.User, string, error)
	PasswordHash(ctx context.Context, id int64) (string, error)
	Exists(ctx context.Context, username, email string) (bool, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateRole(ctx context.Context, id int64, role model.Role) error
	List(ctx context.Context) ([]*model.User, error)
}

type UserService struct {
	repo UserRepository
	cost int
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, cost: bcrypt.DefaultCost}
}

func (s *UserService) Create(ctx context.Context, req model.UserCreateRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Role == "" {
		req.Role = model.RoleGuest
	}
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	exists, err := s.repo.Exists(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.Create(ctx, &model.User{Username: username, Email: email, Role: req.Role}, string(hash))
}

// Authenticate checks a username and password pair. Unknown users and wrong
// passwords are indistinguishable.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, hash, err := s.repo.Credentials(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID int64, req model.PasswordChangeRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	hash, err := s.repo.PasswordHash(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.OldPassword)); err != nil {
		return model.NewValidationError("old_password", "old password is incorrect")
	}
	next, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, userID, string(next))
}

func (s *UserService) UpdateRole(ctx context.Context, userID int64, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, model.NewValidationError("role", "unknown role "+string(role))
	}
	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID)
}

func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	return s.repo.List(ctx)
}
