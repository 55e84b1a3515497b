package authz

import (
	"context"
	"errors"
	"testing"
)

type fakeLabels map[int64][]string

func (f fakeLabels) LabelsForUser(_ context.Context, userID int64) ([]string, error) {
	if userID < 0 {
		return nil, errors.New("boom")
	}
	return f[userID], nil
}

func TestGateAllows(t *testing.T) {
	g := NewGate(fakeLabels{
		1: {"super_admin", "delete_products"},
		2: {"product_manager"},
		3: nil,
	})

	tests := []struct {
		name     string
		userID   int64
		required []string
		want     bool
	}{
		{name: "admin_matches", userID: 1, required: []string{"product_manager", "super_admin"}, want: true},
		{name: "manager_matches", userID: 2, required: []string{"product_manager", "super_admin"}, want: true},
		{name: "permission_label", userID: 1, required: []string{"delete_products"}, want: true},
		{name: "no_roles", userID: 3, required: []string{"product_manager", "super_admin"}, want: false},
		{name: "manager_not_admin", userID: 2, required: []string{"super_admin"}, want: false},
		{name: "empty_requirement", userID: 3, required: nil, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.Allows(context.Background(), tt.userID, tt.required)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Allows = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGatePropagatesLookupErrors(t *testing.T) {
	g := NewGate(fakeLabels{})

	if _, err := g.Allows(context.Background(), -1, []string{"super_admin"}); err == nil {
		t.Fatalf("expected error")
	}
}
