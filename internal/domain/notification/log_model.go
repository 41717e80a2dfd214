package notification

import "time"

// DeliveryStatus represents the final state of one attempted send.
type DeliveryStatus string

const (
	StatusPending DeliveryStatus = "pending"
	StatusSent    DeliveryStatus = "sent"
	StatusFailed  DeliveryStatus = "failed"
)

// DeliveryLog is one append-only audit record per attempted send. A record
// is written immediately after the provider call returns and is never
// updated — a resend produces a new record.
type DeliveryLog struct {
	ID           string         `json:"id"`
	Recipient    string         `json:"recipient"`
	Channel      string         `json:"channel"`
	Subject      string         `json:"subject,omitempty"`
	Body         string         `json:"body"`
	Status       DeliveryStatus `json:"status"`
	ErrorMessage string         `json:"error_message,omitempty"`
	ExternalID   string         `json:"external_id,omitempty"`

	// Linkage to the business object that triggered the send.
	CustomerID string `json:"customer_id,omitempty"`
	InvoiceID  string `json:"invoice_id,omitempty"`
	ShipmentID string `json:"shipment_id,omitempty"`
	ReleaseID  string `json:"release_id,omitempty"`
	TemplateID string `json:"template_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ListFilter defines pagination and filtering options for listing delivery
// logs.
type ListFilter struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	Status    string `form:"status"`
	Recipient string `form:"recipient"`
	Channel   string `form:"channel"`
}

// ListResponse wraps a paginated list of delivery logs.
type ListResponse struct {
	Logs     []*DeliveryLog `json:"logs"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}
