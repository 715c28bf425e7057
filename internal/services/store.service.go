package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nimasrn/reservation-hub/internal/model"
)

type StoreRepository interface {
	Create(ctx context.Context, s *model.Store) (*model.Store, error)
	GetByID(ctx context.Context, id int64) (*model.Store, error)
	Update(ctx context.Context, s *model.Store) (*model.Store, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*model.Store, error)
	LinkCustomer(ctx context.Context, storeID, customerID int64) error
	UnlinkCustomer(ctx context.Context, storeID, customerID int64) error
	Customers(ctx context.Context, storeID int64) ([]*model.Customer, error)
}

type StoreService struct {
	repo      StoreRepository
	customers CustomerGetter
}

type CustomerGetter interface {
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
}

func NewStoreService(repo StoreRepository, customers CustomerGetter) *StoreService {
	return &StoreService{repo: repo, customers: customers}
}

func (s *StoreService) Create(ctx context.Context, st model.Store) (*model.Store, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, &st)
}

func (s *StoreService) Update(ctx context.Context, st model.Store) (*model.Store, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, &st)
}

func (s *StoreService) Get(ctx context.Context, id int64) (*model.Store, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes a store with its reservations, revenues and targets.
func (s *StoreService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *StoreService) List(ctx context.Context) ([]*model.Store, error) {
	return s.repo.List(ctx)
}

func (s *StoreService) LinkCustomer(ctx context.Context, storeID, customerID int64) error {
	if _, err := s.repo.GetByID(ctx, storeID); err != nil {
		return err
	}
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return model.NewValidationError("customer_id", fmt.Sprintf("customer %d does not exist", customerID))
		}
		return err
	}
	return s.repo.LinkCustomer(ctx, storeID, customerID)
}

func (s *StoreService) UnlinkCustomer(ctx context.Context, storeID, customerID int64) error {
	return s.repo.UnlinkCustomer(ctx, storeID, customerID)
}

func (s *StoreService) Customers(ctx context.Context, storeID int64) ([]*model.Customer, error) {
	if _, err := s.repo.GetByID(ctx, storeID); err != nil {
		return nil, err
	}
	return s.repo.Customers(ctx, storeID)
}
