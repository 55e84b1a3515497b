package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

type flakyNotifier struct {
	calls int
	err   error
}

func (f *flakyNotifier) SendLowStockAlert(ctx context.Context, _ LowStockAlertInput) error {
	f.calls++
	return f.err
}

func TestProtectedNotifier_OpensAfterThreshold(t *testing.T) {
	inner := &flakyNotifier{err: errors.New("provider down")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{
		FailureThreshold: 2,
		Cooldown:         time.Hour,
	})

	ctx := context.Background()
	_ = n.SendLowStockAlert(ctx, LowStockAlertInput{})
	_ = n.SendLowStockAlert(ctx, LowStockAlertInput{})

	if got := n.SendLowStockAlert(ctx, LowStockAlertInput{}); !errors.Is(got, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", got)
	}
	if inner.calls != 2 {
		t.Fatalf("expected inner to be called twice, got %d", inner.calls)
	}
	if n.State() != "open" {
		t.Fatalf("expected open state, got %s", n.State())
	}
}

func TestProtectedNotifier_HalfOpenSuccessCloses(t *testing.T) {
	inner := &flakyNotifier{err: errors.New("provider down")}
	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{
		FailureThreshold: 1,
		Cooldown:         time.Millisecond,
	})

	ctx := context.Background()
	_ = n.SendLowStockAlert(ctx, LowStockAlertInput{})
	time.Sleep(5 * time.Millisecond)

	inner.err = nil
	if err := n.SendLowStockAlert(ctx, LowStockAlertInput{}); err != nil {
		t.Fatalf("trial call: %v", err)
	}
	if n.State() != "closed" {
		t.Fatalf("expected closed state, got %s", n.State())
	}
}

type captureWriter struct {
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestKafkaNotifier_KeysByProduct(t *testing.T) {
	w := &captureWriter{}
	n := NewKafkaNotifier(w)

	err := n.SendLowStockAlert(context.Background(), LowStockAlertInput{
		RecipientEmail: "admin@example.com",
		ProductID:      42,
		ProductName:    "Lamp",
		Stock:          5,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "42" {
		t.Fatalf("expected key 42, got %q", w.msgs[0].Key)
	}

	var got LowStockAlertInput
	if err := json.Unmarshal(w.msgs[0].Value, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ProductName != "Lamp" || got.Stock != 5 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestLogNotifier_RespectsCancelledContext(t *testing.T) {
	n := NewLogNotifier(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := n.SendLowStockAlert(ctx, LowStockAlertInput{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
