package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/nimasrn/reservation-hub/pkg/logger"
	"github.com/shopspring/decimal"
)

type RevenueRepository interface {
	CreateType(ctx context.Context, t *model.RevenueType) (*model.RevenueType, error)
	GetType(ctx context.Context, id int64) (*model.RevenueType, error)
	UpdateType(ctx context.Context, t *model.RevenueType) (*model.RevenueType, error)
	DeleteType(ctx context.Context, id int64) error
	ListTypes(ctx context.Context) ([]*model.RevenueType, error)

	Create(ctx context.Context, rev *model.Revenue) (*model.Revenue, error)
	Update(ctx context.Context, rev *model.Revenue) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*model.Revenue, error)
	GetDetail(ctx context.Context, id int64) (*model.RevenueDetail, error)
	List(ctx context.Context, f model.RevenueFilter) ([]*model.Revenue, error)
	Items(ctx context.Context, revenueID int64) ([]*model.RevenueItem, error)
	AddItem(ctx context.Context, revenueID, typeID int64, amount decimal.Decimal) (*model.RevenueItem, error)
	DeleteItem(ctx context.Context, id int64) error
	AddCompliment(ctx context.Context, c *model.RevenueCompliment) (*model.RevenueCompliment, error)
	DeleteCompliment(ctx context.Context, id int64) error
	Nets(ctx context.Context, storeIDs []int64, from, to time.Time) ([]*model.RevenueNet, error)
}

type TargetRepository interface {
	Create(ctx context.Context, t *model.StoreRevenueTarget) (*model.StoreRevenueTarget, error)
	GetByID(ctx context.Context, id int64) (*model.StoreRevenueTarget, error)
	Find(ctx context.Context, storeID int64, month, year int) (*model.StoreRevenueTarget, error)
	UpdateAmount(ctx context.Context, id int64, amount decimal.Decimal) (*model.StoreRevenueTarget, error)
	Delete(ctx context.Context, id int64) error
	ListByStore(ctx context.Context, storeID int64) ([]*model.StoreRevenueTarget, error)
}

type StoreGetter interface {
	GetByID(ctx context.Context, id int64) (*model.Store, error)
}

type RevenueService struct {
	repo      RevenueRepository
	targets   TargetRepository
	stores    StoreGetter
	publisher NotificationPublisher
}

func NewRevenueService(repo RevenueRepository, targets TargetRepository, stores StoreGetter, publisher NotificationPublisher) *RevenueService {
	return &RevenueService{
		repo:      repo,
		targets:   targets,
		stores:    stores,
		publisher: publisher,
	}
}

func (s *RevenueService) CreateType(ctx context.Context, t model.RevenueType) (*model.RevenueType, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return s.repo.CreateType(ctx, &t)
}

func (s *RevenueService) UpdateType(ctx context.Context, t model.RevenueType) (*model.RevenueType, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return s.repo.UpdateType(ctx, &t)
}

// DeleteType refuses to remove a type any item still points at.
func (s *RevenueService) DeleteType(ctx context.Context, id int64) error {
	return s.repo.DeleteType(ctx, id)
}

func (s *RevenueService) ListTypes(ctx context.Context) ([]*model.RevenueType, error) {
	return s.repo.ListTypes(ctx)
}

func (s *RevenueService) Create(ctx context.Context, rev model.Revenue) (*model.Revenue, error) {
	if err := rev.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkStore(ctx, rev.StoreID); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, &rev)
	if err != nil {
		return nil, fmt.Errorf("failed to create revenue: %w", err)
	}
	return created, nil
}

func (s *RevenueService) Update(ctx context.Context, rev model.Revenue) (*model.RevenueDetail, error) {
	if err := rev.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkStore(ctx, rev.StoreID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &rev); err != nil {
		return nil, err
	}
	return s.repo.GetDetail(ctx, rev.ID)
}

func (s *RevenueService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *RevenueService) Get(ctx context.Context, id int64) (*model.RevenueDetail, error) {
	return s.repo.GetDetail(ctx, id)
}

func (s *RevenueService) List(ctx context.Context, f model.RevenueFilter) ([]*model.Revenue, error) {
	return s.repo.List(ctx, f)
}

func (s *RevenueService) AddItem(ctx context.Context, revenueID int64, req model.RevenueItemRequest) (*model.RevenueItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, revenueID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetType(ctx, req.RevenueTypeID); err != nil {
		if errors.Is(err, ErrRevenueTypeNotFound) {
			return nil, model.NewValidationError("revenue_type_id", fmt.Sprintf("revenue type %d does not exist", req.RevenueTypeID))
		}
		return nil, err
	}
	return s.repo.AddItem(ctx, revenueID, req.RevenueTypeID, req.Amount)
}

func (s *RevenueService) DeleteItem(ctx context.Context, id int64) error {
	return s.repo.DeleteItem(ctx, id)
}

func (s *RevenueService) AddCompliment(ctx context.Context, revenueID int64, c model.RevenueCompliment) (*model.RevenueCompliment, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, revenueID); err != nil {
		return nil, err
	}
	c.RevenueID = revenueID
	return s.repo.AddCompliment(ctx, &c)
}

func (s *RevenueService) DeleteCompliment(ctx context.Context, id int64) error {
	return s.repo.DeleteCompliment(ctx, id)
}

// NetTotal sums the persisted items of a revenue. Totals are never stored.
func (s *RevenueService) NetTotal(ctx context.Context, revenueID int64) (model.RevenueTotals, error) {
	if _, err := s.repo.Get(ctx, revenueID); err != nil {
		return model.RevenueTotals{}, err
	}
	items, err := s.repo.Items(ctx, revenueID)
	if err != nil {
		return model.RevenueTotals{}, fmt.Errorf("failed to load revenue items: %w", err)
	}
	return model.SumItems(items), nil
}

// Report sets a revenue against its month's target.
func (s *RevenueService) Report(ctx context.Context, revenueID int64) (*model.RevenueReport, error) {
	detail, err := s.repo.GetDetail(ctx, revenueID)
	if err != nil {
		return nil, err
	}
	report := &model.RevenueReport{Revenue: detail}

	date := detail.Date
	monthStart := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	nets, err := s.repo.Nets(ctx, []int64{detail.StoreID}, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to accumulate month: %w", err)
	}
	accumulated := decimal.Zero
	for _, n := range nets {
		accumulated = accumulated.Add(n.Net)
	}
	report.MonthlyAccumulated = accumulated
	report.DaysRemaining = monthEnd.Day() - date.Day()

	overlay, err := targetOverlay(ctx, s.targets, detail.StoreID, int(date.Month()), date.Year())
	if err != nil {
		return nil, err
	}
	target := overlay.Amount
	if target == nil {
		return report, nil
	}
	report.Target = target

	if target.IsPositive() {
		report.AchievementPercent = accumulated.Div(*target).Mul(decimal.NewFromInt(100)).Round(2)
	}
	remaining := target.Sub(accumulated)
	report.RemainingTarget = &remaining
	report.TargetAchieved = !remaining.IsPositive()

	if report.DaysRemaining > 0 {
		required := remaining.Div(decimal.NewFromInt(int64(report.DaysRemaining))).Round(2)
		report.RequiredDaily = &required
		dailyAverage := accumulated.Div(decimal.NewFromInt(int64(date.Day())))
		if remaining.IsPositive() && required.GreaterThan(dailyAverage) {
			gap := required.Sub(dailyAverage).Round(2)
			report.DailyGap = &gap
		}
	}
	return report, nil
}

// Notify queues the revenue report for the store's WhatsApp.
func (s *RevenueService) Notify(ctx context.Context, revenueID int64) error {
	if _, err := s.repo.Get(ctx, revenueID); err != nil {
		return err
	}
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, model.NotificationRevenue, revenueID); err != nil {
		logger.Error("failed to publish revenue notification", "revenue_id", revenueID, "error", err)
		return err
	}
	return nil
}

func (s *RevenueService) CreateTarget(ctx context.Context, t model.StoreRevenueTarget) (*model.StoreRevenueTarget, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkStore(ctx, t.StoreID); err != nil {
		return nil, err
	}
	return s.targets.Create(ctx, &t)
}

func (s *RevenueService) UpdateTarget(ctx context.Context, id int64, amount decimal.Decimal) (*model.StoreRevenueTarget, error) {
	if err := model.ValidateAmount("amount", amount); err != nil {
		return nil, err
	}
	return s.targets.UpdateAmount(ctx, id, amount)
}

func (s *RevenueService) DeleteTarget(ctx context.Context, id int64) error {
	return s.targets.Delete(ctx, id)
}

func (s *RevenueService) Targets(ctx context.Context, storeID int64) ([]*model.StoreRevenueTarget, error) {
	if _, err := s.stores.GetByID(ctx, storeID); err != nil {
		return nil, err
	}
	return s.targets.ListByStore(ctx, storeID)
}

func (s *RevenueService) checkStore(ctx context.Context, id int64) error {
	if _, err := s.stores.GetByID(ctx, id); err != nil {
		if errors.Is(err, ErrStoreNotFound) {
			return model.NewValidationError("store_id", fmt.Sprintf("store %d does not exist", id))
		}
		return err
	}
	return nil
}
