package services

import (
	"context"

	"github.com/nimasrn/reservation-hub/internal/model"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) (*model.Customer, error)
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	Update(ctx context.Context, c *model.Customer) (*model.Customer, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*model.Customer, error)
}

type CustomerService struct {
	repo CustomerRepository
}

func NewCustomerService(repo CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

func (s *CustomerService) Create(ctx context.Context, c model.Customer) (*model.Customer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, &c)
}

func (s *CustomerService) Update(ctx context.Context, c model.Customer) (*model.Customer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, &c)
}

func (s *CustomerService) Get(ctx context.Context, id int64) (*model.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *CustomerService) List(ctx context.Context) ([]*model.Customer, error) {
	return s.repo.List(ctx)
}
