package dto

import "time"

// DashboardStats are organizer wide totals
type DashboardStats struct {
	TotalRevenue      float64 `json:"total_revenue"`
	TotalTicketsSold  int     `json:"total_tickets_sold"`
	TotalEventsActive int     `json:"total_events_active"`
}

// SalesChartPoint is one UTC day of sales
type SalesChartPoint struct {
	Date         string  `json:"date"`
	DailyRevenue float64 `json:"daily_revenue"`
	TicketsSold  int     `json:"tickets_sold"`
}

// EventPerformance is the rollup of one event
type EventPerformance struct {
	EventTitle    string  `json:"event_title"`
	Revenue       float64 `json:"revenue"`
	TicketsSold   int     `json:"tickets_sold"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

// RecentSale is one paid booking
type RecentSale struct {
	BookingID  string    `json:"booking_id"`
	EventTitle string    `json:"event_title"`
	BuyerName  string    `json:"buyer_name"`
	BuyerEmail string    `json:"buyer_email"`
	Amount     float64   `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}

// DashboardResponse is the organizer analytics view
type DashboardResponse struct {
	Stats       DashboardStats     `json:"stats"`
	SalesChart  []SalesChartPoint  `json:"sales_chart"`
	TopEvents   []EventPerformance `json:"top_events"`
	RecentSales []RecentSale       `json:"recent_sales"`
}
