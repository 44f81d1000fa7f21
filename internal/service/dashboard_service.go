package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/Goh0809/Eventora-Backend/internal/dto"
	"github.com/Goh0809/Eventora-Backend/internal/repository"
	"github.com/Goh0809/Eventora-Backend/pkg/clock"
	"github.com/Goh0809/Eventora-Backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	salesChartDays  = 30
	topEventsLimit  = 5
	recentSaleLimit = 10
)

// DashboardService defines the interface for organizer analytics
type DashboardService interface {
	// Organizer aggregates sales across every event the user created
	Organizer(ctx context.Context, userID string) (*dto.DashboardResponse, error)
}

type dashboardService struct {
	eventRepo   repository.EventRepository
	bookingRepo repository.BookingRepository
	clock       clock.Clock
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(eventRepo repository.EventRepository, bookingRepo repository.BookingRepository, clk clock.Clock) DashboardService {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &dashboardService{eventRepo: eventRepo, bookingRepo: bookingRepo, clock: clk}
}

func emptyDashboard() *dto.DashboardResponse {
	return &dto.DashboardResponse{
		SalesChart:  []dto.SalesChartPoint{},
		TopEvents:   []dto.EventPerformance{},
		RecentSales: []dto.RecentSale{},
	}
}

type dailyStat struct {
	revenue float64
	tickets int
}

func (s *dashboardService) Organizer(ctx context.Context, userID string) (*dto.DashboardResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.dashboard.organizer")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	events, err := s.eventRepo.ListByOrganizer(ctx, userID)
	if err != nil {
		telemetry.FailSpan(span, err, "list events failed")
		return nil, err
	}
	if len(events) == 0 {
		span.SetStatus(codes.Ok, "")
		return emptyDashboard(), nil
	}

	byID := make(map[string]*domain.Event, len(events))
	ids := make([]string, len(events))
	for i, e := range events {
		byID[e.ID] = e
		ids[i] = e.ID
	}

	sales, err := s.bookingRepo.ListPaidSales(ctx, ids)
	if err != nil {
		telemetry.FailSpan(span, err, "list sales failed")
		return nil, err
	}

	resp := emptyDashboard()
	revenueByEvent := make(map[string]float64, len(events))
	ticketsByEvent := make(map[string]int, len(events))
	daily := make(map[string]*dailyStat)

	for _, sale := range sales {
		amount := domain.FromMinorUnits(sale.AmountTotal)
		resp.Stats.TotalRevenue += amount
		revenueByEvent[sale.EventID] += amount
		ticketsByEvent[sale.EventID]++

		day := sale.CreatedAt.UTC().Format(time.DateOnly)
		stat, ok := daily[day]
		if !ok {
			stat = &dailyStat{}
			daily[day] = stat
		}
		stat.revenue += amount
		stat.tickets++
	}
	resp.Stats.TotalTicketsSold = len(sales)
	resp.Stats.TotalEventsActive = len(events)

	for _, e := range events {
		tickets := ticketsByEvent[e.ID]
		occupancy := 0.0
		if e.MaxSlots > 0 {
			occupancy = math.Round(float64(tickets)/float64(e.MaxSlots)*100*10) / 10
		}
		resp.TopEvents = append(resp.TopEvents, dto.EventPerformance{
			EventTitle:    e.Title,
			Revenue:       revenueByEvent[e.ID],
			TicketsSold:   tickets,
			OccupancyRate: occupancy,
		})
	}
	sort.SliceStable(resp.TopEvents, func(i, j int) bool {
		return resp.TopEvents[i].Revenue > resp.TopEvents[j].Revenue
	})
	if len(resp.TopEvents) > topEventsLimit {
		resp.TopEvents = resp.TopEvents[:topEventsLimit]
	}

	now := s.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for i := salesChartDays - 1; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format(time.DateOnly)
		point := dto.SalesChartPoint{Date: day}
		if stat, ok := daily[day]; ok {
			point.DailyRevenue = stat.revenue
			point.TicketsSold = stat.tickets
		}
		resp.SalesChart = append(resp.SalesChart, point)
	}

	for i, sale := range sales {
		if i == recentSaleLimit {
			break
		}
		title := ""
		if e, ok := byID[sale.EventID]; ok {
			title = e.Title
		}
		resp.RecentSales = append(resp.RecentSales, dto.RecentSale{
			BookingID:  sale.BookingID,
			EventTitle: title,
			BuyerName:  orDefault(sale.BuyerName, "Unknown"),
			BuyerEmail: orDefault(sale.BuyerEmail, "Hidden"),
			Amount:     domain.FromMinorUnits(sale.AmountTotal),
			CreatedAt:  sale.CreatedAt,
		})
	}

	span.SetAttributes(attribute.Int("events", len(events)), attribute.Int("sales", len(sales)))
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
