package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_NoEvents(t *testing.T) {
	svc := NewDashboardService(&MockEventRepository{}, &MockBookingRepository{}, nil)

	resp, err := svc.Organizer(context.Background(), "organizer-1")

	require.NoError(t, err)
	assert.Zero(t, resp.Stats.TotalRevenue)
	assert.Zero(t, resp.Stats.TotalEventsActive)
	assert.NotNil(t, resp.SalesChart)
	assert.Empty(t, resp.SalesChart)
	assert.Empty(t, resp.TopEvents)
	assert.Empty(t, resp.RecentSales)
}

func TestDashboardService_Aggregates(t *testing.T) {
	events := []*domain.Event{
		{ID: "e-1", Title: "Concert", MaxSlots: 3},
		{ID: "e-2", Title: "Workshop", MaxSlots: 0},
	}
	for i := 3; i <= 7; i++ {
		events = append(events, &domain.Event{ID: fmt.Sprintf("e-%d", i), Title: fmt.Sprintf("Quiet %d", i), MaxSlots: 10})
	}

	sales := []*domain.SaleRecord{
		{BookingID: "b-1", EventID: "e-1", AmountTotal: 5000, CreatedAt: testNow.Add(-1 * time.Hour), BuyerName: "Ada", BuyerEmail: "ada@example.com"},
		{BookingID: "b-2", EventID: "e-1", AmountTotal: 5000, CreatedAt: testNow.Add(-26 * time.Hour)},
		{BookingID: "b-3", EventID: "e-2", AmountTotal: 1250, CreatedAt: testNow.Add(-40 * 24 * time.Hour)},
	}
	// 11 more small sales so only ten recent rows come back
	for i := 0; i < 11; i++ {
		sales = append(sales, &domain.SaleRecord{BookingID: fmt.Sprintf("old-%d", i), EventID: "e-3", AmountTotal: 100, CreatedAt: testNow.Add(-50 * 24 * time.Hour)})
	}

	var gotIDs []string
	svc := NewDashboardService(
		&MockEventRepository{ListByOrganizerFunc: func(ctx context.Context, userID string) ([]*domain.Event, error) { return events, nil }},
		&MockBookingRepository{ListPaidSalesFunc: func(ctx context.Context, ids []string) ([]*domain.SaleRecord, error) {
			gotIDs = ids
			return sales, nil
		}},
		clock.NewManual(testNow),
	)

	resp, err := svc.Organizer(context.Background(), "organizer-1")
	require.NoError(t, err)

	assert.Len(t, gotIDs, 7)
	assert.InDelta(t, 123.5, resp.Stats.TotalRevenue, 0.0001)
	assert.Equal(t, 14, resp.Stats.TotalTicketsSold)
	assert.Equal(t, 7, resp.Stats.TotalEventsActive)

	require.Len(t, resp.TopEvents, 5)
	assert.Equal(t, "Concert", resp.TopEvents[0].EventTitle)
	assert.Equal(t, 100.0, resp.TopEvents[0].Revenue)
	assert.Equal(t, 66.7, resp.TopEvents[0].OccupancyRate)
	assert.Equal(t, "Workshop", resp.TopEvents[1].EventTitle)
	assert.Zero(t, resp.TopEvents[1].OccupancyRate)

	require.Len(t, resp.SalesChart, 30)
	last := resp.SalesChart[29]
	assert.Equal(t, "2026-03-01", last.Date)
	assert.Equal(t, 50.0, last.DailyRevenue)
	assert.Equal(t, 1, last.TicketsSold)
	assert.Equal(t, "2026-02-28", resp.SalesChart[28].Date)
	assert.Equal(t, 1, resp.SalesChart[28].TicketsSold)
	assert.Equal(t, "2026-01-31", resp.SalesChart[0].Date)

	require.Len(t, resp.RecentSales, 10)
	assert.Equal(t, "Ada", resp.RecentSales[0].BuyerName)
	assert.Equal(t, "Concert", resp.RecentSales[0].EventTitle)
	assert.Equal(t, 50.0, resp.RecentSales[0].Amount)
	assert.Equal(t, "Unknown", resp.RecentSales[1].BuyerName)
	assert.Equal(t, "Hidden", resp.RecentSales[1].BuyerEmail)
}
