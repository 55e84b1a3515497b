package jobs

import "time"

// LowStockAlertPayload asks the worker to tell every holder of Roles that a
// product is running low. Keep it ID-based; the worker re-reads recipients.
type LowStockAlertPayload struct {
	ProductID   int64     `json:"productId"`
	ProductName string    `json:"productName"`
	Stock       int       `json:"stock"`
	Roles       []string  `json:"roles"`
	RequestedBy int64     `json:"requestedBy,omitempty"`
	RequestedAt time.Time `json:"requestedAt"`
	RequestID   string    `json:"requestId,omitempty"` // optional: correlation
}
