package dto

// CheckoutRequest represents a request to book an event
type CheckoutRequest struct {
	EventID    string `json:"event_id" binding:"required"`
	SuccessURL string `json:"success_url,omitempty"`
	CancelURL  string `json:"cancel_url,omitempty"`
}

// WebhookResponse acknowledges a processed payment callback
type WebhookResponse struct {
	Status string `json:"status"`
}
