package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

func (g GroupBy) Valid() bool {
	return g == GroupByDay || g == GroupByWeek || g == GroupByMonth
}

type AggregateQuery struct {
	StoreIDs       []int64
	DateFrom       time.Time
	DateTo         time.Time
	GroupBy        GroupBy
	Cumulative     bool
	SplitByStore   bool
	ChartType      string
	IncludeTargets bool
}

func (q AggregateQuery) Validate() error {
	if q.DateFrom.IsZero() {
		return NewValidationError("date_from", "date_from is required")
	}
	if q.DateTo.IsZero() {
		return NewValidationError("date_to", "date_to is required")
	}
	if q.DateFrom.After(q.DateTo) {
		return NewValidationError("date_from", "date_from must not be after date_to")
	}
	if !q.GroupBy.Valid() {
		return NewValidationError("group_by", "group_by must be day, week or month")
	}
	return nil
}

type Bucket struct {
	Start time.Time       `json:"start"`
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// Series is one chart line. StoreID is nil for the combined series.
type Series struct {
	StoreID   *int64    `json:"store_id,omitempty"`
	StoreName string    `json:"store_name,omitempty"`
	Buckets   []*Bucket `json:"buckets"`
}

// TargetOverlay carries the raw monthly target, Amount is nil when none is set.
type TargetOverlay struct {
	StoreID int64            `json:"store_id"`
	Month   int              `json:"month"`
	Year    int              `json:"year"`
	Amount  *decimal.Decimal `json:"amount"`
}

type AggregateResult struct {
	GroupBy    GroupBy          `json:"group_by"`
	Cumulative bool             `json:"cumulative"`
	ChartType  string           `json:"chart_type,omitempty"`
	Series     []*Series        `json:"series"`
	Targets    []*TargetOverlay `json:"targets,omitempty"`
}

// RevenueReport summarises one revenue entry against its store's monthly target.
type RevenueReport struct {
	Revenue            *RevenueDetail   `json:"revenue"`
	Target             *decimal.Decimal `json:"target,omitempty"`
	MonthlyAccumulated decimal.Decimal  `json:"monthly_accumulated"`
	AchievementPercent decimal.Decimal  `json:"achievement_percent"`
	DaysRemaining      int              `json:"days_remaining"`
	RemainingTarget    *decimal.Decimal `json:"remaining_target,omitempty"`
	RequiredDaily      *decimal.Decimal `json:"required_daily,omitempty"`
	DailyGap           *decimal.Decimal `json:"daily_gap,omitempty"`
	TargetAchieved     bool             `json:"target_achieved"`
}

// RevenueNet is the computed net of one revenue entry.
type RevenueNet struct {
	RevenueID int64
	StoreID   int64
	Date      time.Time
	Net       decimal.Decimal
}
