package jobs

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/geocoder89/catalogadmin/internal/domain/job"
)

func TestEncodeDecode_LowStockAlert(t *testing.T) {
	payload := LowStockAlertPayload{
		ProductID:   42,
		ProductName: "Desk Lamp",
		Stock:       5,
		Roles:       []string{"super_admin", "product_manager"},
		RequestedAt: time.Now().UTC(),
	}

	b, err := EncodePayload(JobLowStockAlert, payload)
	if err != nil {
		t.Fatalf("EncodePayload error: %v", err)
	}

	j := job.New(job.CreateRequest{Type: string(JobLowStockAlert), Payload: b})

	decoded, err := DecodePayload(j)
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	p, ok := decoded.(LowStockAlertPayload)
	if !ok {
		t.Fatalf("expected LowStockAlertPayload, got %T", decoded)
	}

	if p.ProductID != payload.ProductID || p.Stock != 5 || len(p.Roles) != 2 {
		t.Fatalf("decoded payload mismatch: %+v", p)
	}
}

func TestEncodePayload_TypeMismatch(t *testing.T) {
	_, err := EncodePayload(JobLowStockAlert, map[string]string{"productId": "1"})
	if !errors.Is(err, ErrPayloadTypeMismatch) {
		t.Fatalf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestDecodePayload_UnknownType(t *testing.T) {
	j := job.New(job.CreateRequest{Type: "export_csv", Payload: []byte(`{}`)})

	if _, err := DecodePayload(j); !errors.Is(err, ErrInvalidJobType) {
		t.Fatalf("expected ErrInvalidJobType, got %v", err)
	}
}

func TestValidatePayload_RequiresProductAndRoles(t *testing.T) {
	err := ValidatePayload(JobLowStockAlert, LowStockAlertPayload{ProductID: 1, ProductName: "Lamp"})
	if !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("expected ErrInvalidJobPayload, got %v", err)
	}

	err = ValidatePayload(JobLowStockAlert, &LowStockAlertPayload{ProductID: 1, ProductName: "Lamp", Roles: []string{"super_admin"}})
	if err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
}

func TestValidatePayload_NamesOffendingField(t *testing.T) {
	tests := []struct {
		name    string
		payload LowStockAlertPayload
		field   string
	}{
		{"no product", LowStockAlertPayload{ProductName: "Lamp", Roles: []string{"super_admin"}}, "productId"},
		{"blank name", LowStockAlertPayload{ProductID: 1, ProductName: "  ", Roles: []string{"super_admin"}}, "productName"},
		{"no roles", LowStockAlertPayload{ProductID: 1, ProductName: "Lamp"}, "roles"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(JobLowStockAlert, tt.payload)

			var pe *PayloadError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *PayloadError, got %T (%v)", err, err)
			}
			if pe.Field != tt.field || pe.Type != JobLowStockAlert {
				t.Fatalf("got field %q type %q, want %q", pe.Field, pe.Type, tt.field)
			}
		})
	}
}

func TestIsPermanent(t *testing.T) {
	j := job.New(job.CreateRequest{Type: string(JobLowStockAlert), Payload: []byte(`{not json`)})
	_, decodeErr := DecodePayload(j)

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unknown type", ErrInvalidJobType, true},
		{"bad json", decodeErr, true},
		{"wrapped mismatch", fmt.Errorf("step: %w", payloadErr(JobLowStockAlert, "", ErrPayloadTypeMismatch)), true},
		{"notifier down", errors.New("notify user 3: connection refused"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPermanent(tt.err); got != tt.want {
				t.Fatalf("IsPermanent(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
