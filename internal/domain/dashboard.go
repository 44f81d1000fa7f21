package domain

import "time"

// SaleRecord is a paid booking with its buyer, as aggregated for the organizer
type SaleRecord struct {
	BookingID   string
	EventID     string
	AmountTotal int64
	CreatedAt   time.Time
	BuyerName   string
	BuyerEmail  string
}
