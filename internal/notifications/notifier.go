package notifications

import (
	"context"
	"time"
)

// LowStockAlertInput is one alert for one recipient.
type LowStockAlertInput struct {
	RecipientID    int64     `json:"recipientId"`
	RecipientEmail string    `json:"recipientEmail"`
	RecipientName  string    `json:"recipientName"`
	ProductID      int64     `json:"productId"`
	ProductName    string    `json:"productName"`
	Stock          int       `json:"stock"`
	SentAt         time.Time `json:"sentAt"`
}

type Notifier interface {
	SendLowStockAlert(ctx context.Context, input LowStockAlertInput) error
}
