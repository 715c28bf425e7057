package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
	"github.com/shopspring/decimal"
)

type RevenueNetSource interface {
	Nets(ctx context.Context, storeIDs []int64, from, to time.Time) ([]*model.RevenueNet, error)
}

type StoreLister interface {
	ListByIDs(ctx context.Context, ids []int64) ([]*model.Store, error)
}

type TargetFinder interface {
	Find(ctx context.Context, storeID int64, month, year int) (*model.StoreRevenueTarget, error)
}

// AnalyticsService turns revenue nets into chart series.
type AnalyticsService struct {
	nets    RevenueNetSource
	stores  StoreLister
	targets TargetFinder
}

func NewAnalyticsService(nets RevenueNetSource, stores StoreLister, targets TargetFinder) *AnalyticsService {
	return &AnalyticsService{
		nets:    nets,
		stores:  stores,
		targets: targets,
	}
}

// Aggregate buckets the net totals of the selected stores between two dates.
// Buckets are contiguous and zero-filled. An empty store set selects every
// store.
func (s *AnalyticsService) Aggregate(ctx context.Context, q model.AggregateQuery) (*model.AggregateResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	from := startOfDay(q.DateFrom)
	to := startOfDay(q.DateTo)

	stores, err := s.stores.ListByIDs(ctx, q.StoreIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load stores: %w", err)
	}
	nets, err := s.nets.Nets(ctx, q.StoreIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue nets: %w", err)
	}

	starts := bucketStarts(from, to, q.GroupBy)
	result := &model.AggregateResult{
		GroupBy:    q.GroupBy,
		Cumulative: q.Cumulative,
		ChartType:  q.ChartType,
	}

	if q.SplitByStore {
		byStore := make(map[int64]*model.Series, len(stores))
		for _, st := range stores {
			id := st.ID
			series := newSeries(starts, q.GroupBy)
			series.StoreID = &id
			series.StoreName = st.Name
			byStore[id] = series
			result.Series = append(result.Series, series)
		}
		for _, n := range nets {
			if series, ok := byStore[n.StoreID]; ok {
				addToBucket(series, n, q.GroupBy)
			}
		}
	} else {
		series := newSeries(starts, q.GroupBy)
		for _, n := range nets {
			addToBucket(series, n, q.GroupBy)
		}
		result.Series = []*model.Series{series}
	}
	if result.Series == nil {
		result.Series = []*model.Series{}
	}

	if q.Cumulative {
		for _, series := range result.Series {
			accumulate(series)
		}
	}

	if q.IncludeTargets {
		targets, err := s.overlays(ctx, stores, from, to)
		if err != nil {
			return nil, err
		}
		result.Targets = targets
	}
	return result, nil
}

// TargetOverlay returns the raw monthly target of a store, nil when unset.
func (s *AnalyticsService) TargetOverlay(ctx context.Context, storeID int64, month, year int) (*model.TargetOverlay, error) {
	return targetOverlay(ctx, s.targets, storeID, month, year)
}

// targetOverlay is the one target lookup shared by charts and revenue
// reports. A missing target leaves Amount nil.
func targetOverlay(ctx context.Context, targets TargetFinder, storeID int64, month, year int) (*model.TargetOverlay, error) {
	if month < 1 || month > 12 {
		return nil, model.NewValidationError("month", "month must be between 1 and 12")
	}
	overlay := &model.TargetOverlay{StoreID: storeID, Month: month, Year: year}
	target, err := targets.Find(ctx, storeID, month, year)
	if err != nil {
		if errors.Is(err, ErrTargetNotFound) {
			return overlay, nil
		}
		return nil, fmt.Errorf("failed to load target: %w", err)
	}
	amount := target.Amount
	overlay.Amount = &amount
	return overlay, nil
}

func (s *AnalyticsService) overlays(ctx context.Context, stores []*model.Store, from, to time.Time) ([]*model.TargetOverlay, error) {
	overlays := []*model.TargetOverlay{}
	for _, st := range stores {
		for m := bucketStart(from, model.GroupByMonth); !m.After(to); m = m.AddDate(0, 1, 0) {
			overlay, err := s.TargetOverlay(ctx, st.ID, int(m.Month()), m.Year())
			if err != nil {
				return nil, err
			}
			overlays = append(overlays, overlay)
		}
	}
	return overlays, nil
}

func newSeries(starts []time.Time, g model.GroupBy) *model.Series {
	buckets := make([]*model.Bucket, len(starts))
	for i, start := range starts {
		buckets[i] = &model.Bucket{Start: start, Label: bucketLabel(start, g), Value: decimal.Zero}
	}
	return &model.Series{Buckets: buckets}
}

func addToBucket(series *model.Series, n *model.RevenueNet, g model.GroupBy) {
	start := bucketStart(n.Date, g)
	for _, b := range series.Buckets {
		if b.Start.Equal(start) {
			b.Value = b.Value.Add(n.Net)
			return
		}
	}
}

func accumulate(series *model.Series) {
	running := decimal.Zero
	for _, b := range series.Buckets {
		running = running.Add(b.Value)
		b.Value = running
	}
}

// startOfDay keeps the calendar date t carries in its own zone, the way
// revenue dates are stored.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// bucketStart returns the first day of the bucket containing t. Weeks start
// on Monday.
func bucketStart(t time.Time, g model.GroupBy) time.Time {
	day := startOfDay(t)
	switch g {
	case model.GroupByWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case model.GroupByMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

func nextBucket(t time.Time, g model.GroupBy) time.Time {
	switch g {
	case model.GroupByWeek:
		return t.AddDate(0, 0, 7)
	case model.GroupByMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

func bucketStarts(from, to time.Time, g model.GroupBy) []time.Time {
	var starts []time.Time
	last := bucketStart(to, g)
	for b := bucketStart(from, g); !b.After(last); b = nextBucket(b, g) {
		starts = append(starts, b)
	}
	return starts
}

func bucketLabel(start time.Time, g model.GroupBy) string {
	switch g {
	case model.GroupByWeek:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case model.GroupByMonth:
		return start.Format("2006-01")
	default:
		return start.Format("2006-01-02")
	}
}
