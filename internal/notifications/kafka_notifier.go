package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of *kafka.Writer the notifier needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier produces one message per alert, keyed by product so alerts
// for the same product stay ordered on one partition.
type KafkaNotifier struct {
	writer MessageWriter
}

func NewKafkaNotifier(w MessageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: w}
}

// NewKafkaWriter builds a writer for topic with short delivery timeouts.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
}

func (n *KafkaNotifier) SendLowStockAlert(ctx context.Context, in LowStockAlertInput) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("kafka notifier: marshal: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(in.ProductID, 10)),
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte("low_stock_alert")},
		},
	}

	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka notifier: write: %w", err)
	}
	return nil
}
