package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nimasrn/reservation-hub/internal/model"
)

type ReservationSource interface {
	Get(ctx context.Context, id int64) (*model.ReservationDetail, error)
	Upcoming(ctx context.Context, storeID int64, from time.Time, limit int) ([]*model.ReservationDetail, error)
}

type RevenueSource interface {
	Report(ctx context.Context, revenueID int64) (*model.RevenueReport, error)
}

type StoreSource interface {
	GetByID(ctx context.Context, id int64) (*model.Store, error)
}

// Message is a composed notification. Destination is empty when the store
// has no WhatsApp number.
type Message struct {
	Destination string
	Text        string
}

// Composer renders WhatsApp texts for reservations and revenue reports.
type Composer struct {
	reservations  ReservationSource
	revenues      RevenueSource
	stores        StoreSource
	location      *time.Location
	upcomingLimit int
}

func NewComposer(reservations ReservationSource, revenues RevenueSource, stores StoreSource, location *time.Location, upcomingLimit int) *Composer {
	if location == nil {
		location = time.UTC
	}
	if upcomingLimit <= 0 {
		upcomingLimit = model.DefaultUpcomingLimit
	}
	return &Composer{
		reservations:  reservations,
		revenues:      revenues,
		stores:        stores,
		location:      location,
		upcomingLimit: upcomingLimit,
	}
}

func (c *Composer) Compose(ctx context.Context, job model.NotificationJob) (*Message, error) {
	switch job.Kind {
	case model.NotificationReservation:
		return c.Reservation(ctx, job.EntityID)
	case model.NotificationRevenue:
		return c.Revenue(ctx, job.EntityID)
	}
	return nil, fmt.Errorf("unknown notification kind %q", job.Kind)
}

// Reservation describes one reservation followed by the store's other
// reservations from that day to the end of the month.
func (c *Composer) Reservation(ctx context.Context, id int64) (*Message, error) {
	res, err := c.reservations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	store, err := c.stores.GetByID(ctx, res.StoreID)
	if err != nil {
		return nil, err
	}

	at := res.Datetime.In(c.location)
	var b strings.Builder
	b.WriteString("Hello, here are the reservation details:\n\n")
	fmt.Fprintf(&b, "Customer: %s\n", res.CustomerName)
	fmt.Fprintf(&b, "Telephone: %s\n", dash(res.CustomerTelephone))
	fmt.Fprintf(&b, "Store: %s\n", store.Name)
	fmt.Fprintf(&b, "Code: %s\n", res.Code)
	fmt.Fprintf(&b, "Date: %s\n", at.Format("02 January 2006"))
	fmt.Fprintf(&b, "Time: %s\n", at.Format("15:04"))
	fmt.Fprintf(&b, "Status: %s\n", res.Status)
	if res.Event != nil && *res.Event != "" {
		fmt.Fprintf(&b, "Event: %s\n", *res.Event)
	}
	if res.Room != nil && *res.Room != "" {
		fmt.Fprintf(&b, "Room: %s\n", *res.Room)
	}
	if res.Guests != nil && *res.Guests > 0 {
		fmt.Fprintf(&b, "Guests: %d\n", *res.Guests)
	}
	if res.Notes != nil && *res.Notes != "" {
		fmt.Fprintf(&b, "Notes:\n%s\n", *res.Notes)
	}

	dayStart := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, c.location)
	upcoming, err := c.reservations.Upcoming(ctx, res.StoreID, dayStart, c.upcomingLimit)
	if err != nil {
		return nil, err
	}
	others := make([]*model.ReservationDetail, 0, len(upcoming))
	for _, u := range upcoming {
		if u.ID != res.ID {
			others = append(others, u)
		}
	}

	if len(others) == 0 {
		b.WriteString("\nNo other reservations this month.\n")
	} else {
		b.WriteString("\nUpcoming reservations:\n")
		for i, u := range others {
			guests := "?"
			if u.Guests != nil && *u.Guests > 0 {
				guests = fmt.Sprint(*u.Guests)
			}
			fmt.Fprintf(&b, "%d. %s - %s - %s guests\n", i+1, u.Datetime.In(c.location).Format("02/01 15:04"), u.CustomerName, guests)
		}
		if len(upcoming) >= c.upcomingLimit {
			b.WriteString("\nThere are more reservations this month, check the dashboard for the full list.\n")
		}
	}
	b.WriteString("\nThank you.")

	return &Message{Destination: destination(store), Text: b.String()}, nil
}

// Revenue renders a revenue entry with its items, compliments and the
// store's progress against the monthly target.
func (c *Composer) Revenue(ctx context.Context, id int64) (*Message, error) {
	report, err := c.revenues.Report(ctx, id)
	if err != nil {
		return nil, err
	}
	rev := report.Revenue
	store, err := c.stores.GetByID(ctx, rev.StoreID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("*Revenue Report*\n\n")
	fmt.Fprintf(&b, "*Store:* %s\n", store.Name)
	fmt.Fprintf(&b, "*Date:* %s\n", rev.Date.Format("02 January 2006"))
	guests := "-"
	if rev.Guests != nil {
		guests = fmt.Sprint(*rev.Guests)
	}
	fmt.Fprintf(&b, "*Guests:* %s\n", guests)
	notes := "-"
	if rev.Notes != nil && *rev.Notes != "" {
		notes = *rev.Notes
	}
	fmt.Fprintf(&b, "*Notes:* %s\n\n", notes)

	if report.Target != nil {
		b.WriteString("*Target Achievement*\n")
		fmt.Fprintf(&b, "- Target: %s\n", FormatRupiah(*report.Target))
		fmt.Fprintf(&b, "- Month to date: %s\n", FormatRupiah(report.MonthlyAccumulated))
		fmt.Fprintf(&b, "- Achieved: %s%%\n\n", report.AchievementPercent.StringFixed(2))
	}

	if len(rev.Items) > 0 {
		b.WriteString("*Items*\n")
		for _, it := range rev.Items {
			symbol := "+"
			if it.Category == model.RevenueCategoryDeduction {
				symbol = "-"
			}
			fmt.Fprintf(&b, "%s %s: %s\n", symbol, it.TypeName, FormatRupiah(it.Amount))
		}
		b.WriteString("\n")
	}

	b.WriteString("*Summary*\n")
	fmt.Fprintf(&b, "- Additions: %s\n", FormatRupiah(rev.Totals.Additions))
	fmt.Fprintf(&b, "- Deductions: %s\n", FormatRupiah(rev.Totals.Deductions))
	fmt.Fprintf(&b, "- *Net: %s*\n\n", FormatRupiah(rev.Totals.Net))

	if len(rev.Compliments) > 0 {
		b.WriteString("*Compliments*\n")
		for _, cm := range rev.Compliments {
			fmt.Fprintf(&b, "- %s (for: %s)\n", cm.Description, dash(cm.For))
		}
		b.WriteString("\n")
	}

	if report.Target != nil {
		if report.DaysRemaining > 0 && report.RequiredDaily != nil {
			b.WriteString("*Performance Notes*\n")
			fmt.Fprintf(&b, "- Days remaining: %d\n", report.DaysRemaining)
			fmt.Fprintf(&b, "- Remaining target: %s\n", FormatRupiah(*report.RemainingTarget))
			fmt.Fprintf(&b, "- Required daily: %s/day\n", FormatRupiah(*report.RequiredDaily))
		}
		switch {
		case report.DailyGap != nil:
			fmt.Fprintf(&b, "- Behind pace by %s per day\n", FormatRupiah(*report.DailyGap))
		case report.TargetAchieved:
			b.WriteString("- Target achieved\n")
		}
	}
	b.WriteString("\nThank you.")

	return &Message{Destination: destination(store), Text: b.String()}, nil
}

func destination(store *model.Store) string {
	if !store.HasWhatsApp() {
		return ""
	}
	return strings.TrimSpace(*store.WhatsApp)
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
