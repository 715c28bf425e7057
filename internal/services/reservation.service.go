package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/logger"
	"github.com/nimasrn/reservation-hub/pkg/prom"
)

const (
	maxCodeAttempts  = 5
	codeRetryBackoff = 2 * time.Millisecond
)

// ErrStoreClosedForPublic is returned when a store has opted out of
// unauthenticated reservations.
var ErrStoreClosedForPublic = model.NewValidationError("store_id", "store does not accept public reservations")

type ReservationRepository interface {
	Create(ctx context.Context, res *model.Reservation) (*model.Reservation, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	GetByID(ctx context.Context, id int64) (*model.ReservationDetail, error)
	GetByCode(ctx context.Context, code string) (*model.ReservationDetail, error)
	Update(ctx context.Context, id int64, columns map[string]any) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f model.ReservationFilter) ([]*model.ReservationDetail, error)
	Between(ctx context.Context, storeID int64, from, to time.Time, limit int) ([]*model.ReservationDetail, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type StoreLookup interface {
	GetByID(ctx context.Context, id int64) (*model.Store, error)
	LinkCustomer(ctx context.Context, storeID, customerID int64) error
}

type CustomerLookup interface {
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*model.Customer, error)
	Create(ctx context.Context, c *model.Customer) (*model.Customer, error)
}

// NotificationPublisher hands a notification job to the processor.
type NotificationPublisher interface {
	Publish(ctx context.Context, kind model.NotificationKind, entityID int64) error
}

// webCustomerCodePrefix marks customers created from public submissions.
const webCustomerCodePrefix = "WEB-"

type ReservationOption func(*ReservationService)

func WithCodeGenerator(g CodeGenerator) ReservationOption {
	return func(s *ReservationService) { s.codes = g }
}

func WithStatusPolicy(p StatusPolicy) ReservationOption {
	return func(s *ReservationService) { s.policy = p }
}

func WithUpcomingLimit(limit int) ReservationOption {
	return func(s *ReservationService) {
		if limit > 0 {
			s.upcomingLimit = limit
		}
	}
}

// WithLocation sets the zone reservation wall-clock times are read in. It
// decides the code's date and the month an upcoming window ends with.
func WithLocation(loc *time.Location) ReservationOption {
	return func(s *ReservationService) {
		if loc != nil {
			s.location = loc
		}
	}
}

type ReservationService struct {
	repo          ReservationRepository
	stores        StoreLookup
	customers     CustomerLookup
	publisher     NotificationPublisher
	codes         CodeGenerator
	policy        StatusPolicy
	upcomingLimit int
	location      *time.Location
	backoff       time.Duration
}

func NewReservationService(repo ReservationRepository, stores StoreLookup, customers CustomerLookup,
	publisher NotificationPublisher, opts ...ReservationOption) *ReservationService {
	s := &ReservationService{
		repo:          repo,
		stores:        stores,
		customers:     customers,
		publisher:     publisher,
		codes:         RandomCodeGenerator{},
		policy:        OpenStatusPolicy{},
		upcomingLimit: model.DefaultUpcomingLimit,
		location:      time.UTC,
		backoff:       codeRetryBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReservationService) Create(ctx context.Context, req model.ReservationCreateRequest) (*model.ReservationDetail, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	if _, err := s.checkStore(ctx, req.StoreID); err != nil {
		return nil, err
	}

	created, err := s.insertWithCode(ctx, &model.Reservation{
		CustomerID: req.CustomerID,
		StoreID:    req.StoreID,
		Datetime:   req.Datetime,
		Status:     model.ReservationStatusPending,
		Guests:     req.Guests,
		Notes:      req.Notes,
		Event:      req.Event,
		Room:       req.Room,
	})
	if err != nil {
		return nil, err
	}

	detail, err := s.repo.GetByID(ctx, created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload reservation: %w", err)
	}
	prom.IncReservationCreated("staff")
	if req.Notify {
		s.notify(ctx, created.ID)
	}
	return detail, nil
}

// insertWithCode draws codes until one inserts cleanly. A unique violation
// from a concurrent writer re-rolls instead of failing the request.
func (s *ReservationService) insertWithCode(ctx context.Context, res *model.Reservation) (*model.Reservation, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		if attempt > 0 {
			prom.IncReservationCodeRetry()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.backoff * time.Duration(1<<(attempt-1))):
			}
		}

		code := s.codes.Generate(res.Datetime.In(s.location))
		taken, err := s.repo.CodeExists(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check reservation code: %w", err)
		}
		if taken {
			logger.Debug("reservation code already taken", "code", code, "attempt", attempt+1)
			continue
		}

		res.Code = code
		var created *model.Reservation
		err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
			var err error
			created, err = s.repo.Create(ctx, res)
			return err
		})
		if err == nil {
			return created, nil
		}
		if errors.Is(err, ErrDuplicateCode) {
			logger.Warn("reservation code collided on insert", "code", code, "attempt", attempt+1)
			continue
		}
		if errors.Is(err, ErrReferenceNotFound) {
			return nil, model.NewValidationError("customer_id", "customer or store no longer exists")
		}
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil, ErrCodeGenerationExhausted
}

func (s *ReservationService) Update(ctx context.Context, id int64, patch model.ReservationPatch) (*model.ReservationDetail, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	columns := map[string]any{}
	if patch.Status != nil && *patch.Status != current.Status {
		if !s.policy.Allow(current.Status, *patch.Status) {
			return nil, fmt.Errorf("%w: %s to %s", ErrStatusTransition, current.Status, *patch.Status)
		}
		columns["status"] = string(*patch.Status)
	}
	if patch.CustomerID != nil {
		if err := s.checkCustomer(ctx, *patch.CustomerID); err != nil {
			return nil, err
		}
		columns["customer_id"] = *patch.CustomerID
	}
	if patch.StoreID != nil {
		if _, err := s.checkStore(ctx, *patch.StoreID); err != nil {
			return nil, err
		}
		columns["store_id"] = *patch.StoreID
	}
	if patch.Datetime != nil {
		columns["datetime"] = *patch.Datetime
	}
	if patch.Guests != nil {
		columns["guests"] = *patch.Guests
	}
	if patch.Notes != nil {
		columns["notes"] = *patch.Notes
	}
	if patch.Event != nil {
		columns["event"] = *patch.Event
	}
	if patch.Room != nil {
		columns["room"] = *patch.Room
	}

	if err := s.repo.Update(ctx, id, columns); err != nil {
		return nil, fmt.Errorf("failed to update reservation %d: %w", id, err)
	}
	detail, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Notify {
		s.notify(ctx, id)
	}
	return detail, nil
}

func (s *ReservationService) Get(ctx context.Context, id int64) (*model.ReservationDetail, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ReservationService) List(ctx context.Context, f model.ReservationFilter) ([]*model.ReservationDetail, error) {
	return s.repo.List(ctx, f)
}

func (s *ReservationService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Notify queues a reservation notification on demand.
func (s *ReservationService) Notify(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if s.publisher == nil {
		return nil
	}
	return s.publisher.Publish(ctx, model.NotificationReservation, id)
}

// PublicCreate books a reservation for an anonymous caller. The customer is
// matched by phone and created when unknown.
func (s *ReservationService) PublicCreate(ctx context.Context, req model.PublicReservationRequest) (*model.PublicReservationReceipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	store, err := s.checkStore(ctx, req.StoreID)
	if err != nil {
		return nil, err
	}
	if !store.AcceptsPublicReservations {
		return nil, ErrStoreClosedForPublic
	}

	phone := model.NormalizePhone(req.Phone)
	var created *model.Reservation
	err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		customer, err := s.findOrCreateCustomer(ctx, req, phone)
		if err != nil {
			return err
		}
		if err := s.stores.LinkCustomer(ctx, store.ID, customer.ID); err != nil {
			return fmt.Errorf("failed to link customer to store: %w", err)
		}
		created, err = s.insertWithCode(ctx, &model.Reservation{
			CustomerID: customer.ID,
			StoreID:    store.ID,
			Datetime:   req.Datetime,
			Status:     model.ReservationStatusPending,
			Guests:     req.Guests,
			Notes:      req.Notes,
			Event:      req.Event,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	prom.IncReservationCreated("public")

	if req.Notify {
		s.notify(ctx, created.ID)
	}
	return &model.PublicReservationReceipt{Code: created.Code, Phone: phone}, nil
}

// findOrCreateCustomer matches the caller by phone. Self-registered customers
// are unique per phone, so a concurrent submission that created the row first
// turns our insert into a duplicate and the lookup is run again.
func (s *ReservationService) findOrCreateCustomer(ctx context.Context, req model.PublicReservationRequest, phone string) (*model.Customer, error) {
	customer, err := s.customers.FindByPhone(ctx, phone)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, ErrCustomerNotFound) {
		return nil, fmt.Errorf("failed to look up customer: %w", err)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		candidate := &model.Customer{
			Name:      strings.TrimSpace(req.Name),
			Code:      webCustomerCodePrefix + strings.ToUpper(uuid.NewString()[:8]),
			Telephone: phone,
			WhatsApp:  phone,
			Email:     strings.TrimSpace(req.Email),
		}
		err = s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
			customer, err = s.customers.Create(ctx, candidate)
			return err
		})
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, ErrCustomerCodeTaken) {
			return nil, fmt.Errorf("failed to create customer: %w", err)
		}

		existing, lookupErr := s.customers.FindByPhone(ctx, phone)
		if lookupErr == nil {
			logger.Debug("customer created by a concurrent submission", "customer_id", existing.ID)
			return existing, nil
		}
		if !errors.Is(lookupErr, ErrCustomerNotFound) {
			return nil, fmt.Errorf("failed to look up customer: %w", lookupErr)
		}
	}
	return nil, ErrCodeGenerationExhausted
}

// PublicLookup returns the reservation only when both the code and the
// customer phone match. Every miss looks the same to the caller.
func (s *ReservationService) PublicLookup(ctx context.Context, code, phone string) (*model.PublicReservationView, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	phone = model.NormalizePhone(phone)
	if code == "" || phone == "" {
		return nil, ErrPublicLookupNotFound
	}

	detail, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return nil, ErrPublicLookupNotFound
		}
		return nil, err
	}
	if model.NormalizePhone(detail.CustomerTelephone) != phone {
		return nil, ErrPublicLookupNotFound
	}

	return &model.PublicReservationView{
		Code:      detail.Code,
		StoreName: detail.StoreName,
		Name:      detail.CustomerName,
		Datetime:  detail.Datetime,
		Status:    detail.Status,
		Guests:    detail.Guests,
		Notes:     detail.Notes,
		Event:     detail.Event,
	}, nil
}

// Upcoming lists a store's reservations from `from` up to the first instant
// of the next month in the service location, oldest first. A zero from
// starts at the beginning of today.
func (s *ReservationService) Upcoming(ctx context.Context, storeID int64, from time.Time, limit int) ([]*model.ReservationDetail, error) {
	if limit <= 0 {
		limit = s.upcomingLimit
	}
	if from.IsZero() {
		now := time.Now().In(s.location)
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
	}
	local := from.In(s.location)
	until := time.Date(local.Year(), local.Month()+1, 1, 0, 0, 0, 0, s.location)
	list, err := s.repo.Between(ctx, storeID, from, until, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming reservations: %w", err)
	}
	if list == nil {
		list = []*model.ReservationDetail{}
	}
	return list, nil
}

func (s *ReservationService) checkCustomer(ctx context.Context, id int64) error {
	if _, err := s.customers.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrCustomerNotFound) {
			return model.NewValidationError("customer_id", fmt.Sprintf("customer %d does not exist", id))
		}
		return err
	}
	return nil
}

func (s *ReservationService) checkStore(ctx context.Context, id int64) (*model.Store, error) {
	store, err := s.stores.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return nil, model.NewValidationError("store_id", fmt.Sprintf("store %d does not exist", id))
		}
		return nil, err
	}
	return store, nil
}

func (s *ReservationService) notify(ctx context.Context, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, model.NotificationReservation, id); err != nil {
		logger.Error("failed to publish reservation notification", "reservation_id", id, "error", err)
	}
}
