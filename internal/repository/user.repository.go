package repository

import (
	"context"
	"errors"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/pg"
	"gorm.io/gorm"
)

type UserRepository struct {
	*pg.DB
}

func NewUserRepository(db *pg.DB) *UserRepository {
	return &UserRepository{
		db,
	}
}

// Create stores a user with an already hashed password.
func (r *UserRepository) Create(ctx context.Context, u *model.User, passwordHash string) (*model.User, error) {
	entity := &UserEntity{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: passwordHash,
		Role:         string(u.Role),
	}
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return toUserModel(entity), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var entity UserEntity
	if err := r.Read(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserModel(&entity), nil
}

// Credentials returns the user together with its password hash.
func (r *UserRepository) Credentials(ctx context.Context, username string) (*model.User, string, error) {
	var entity UserEntity
	if err := r.Read(ctx).Where("username = ?", username).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}
	return toUserModel(&entity), entity.PasswordHash, nil
}

func (r *UserRepository) PasswordHash(ctx context.Context, id int64) (string, error) {
	var entity UserEntity
	if err := r.Read(ctx).Select("password_hash").Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return entity.PasswordHash, nil
}

// Exists reports whether username or email is already taken.
func (r *UserRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.Read(ctx).Model(&UserEntity{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.updateColumn(ctx, id, "password_hash", passwordHash)
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role model.Role) error {
	return r.updateColumn(ctx, id, "role", string(role))
}

func (r *UserRepository) updateColumn(ctx context.Context, id int64, column string, value any) error {
	result := r.Write(ctx).Model(&UserEntity{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	var entities []*UserEntity
	if err := r.Read(ctx).Order("username ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toUserModels(entities), nil
}
