package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier writes alerts to the structured log. It is the default driver
// for local runs.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendLowStockAlert(ctx context.Context, in LowStockAlertInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.low_stock_alert",
		"recipient_id", in.RecipientID,
		"recipient_email", in.RecipientEmail,
		"product_id", in.ProductID,
		"product_name", in.ProductName,
		"stock", in.Stock,
	)
	return nil
}
