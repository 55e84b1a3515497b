package authz

import (
	"context"
	"fmt"
)

// LabelSource returns every role and permission name held by a user.
type LabelSource interface {
	LabelsForUser(ctx context.Context, userID int64) ([]string, error)
}

// Gate answers "does this identity hold any of these labels". It keeps no
// state of its own; every check reads the label source.
type Gate struct {
	labels LabelSource
}

func NewGate(labels LabelSource) *Gate {
	return &Gate{labels: labels}
}

// Allows reports whether the user's labels intersect required. An empty
// required set allows any authenticated user.
func (g *Gate) Allows(ctx context.Context, userID int64, required []string) (bool, error) {
	if len(required) == 0 {
		return true, nil
	}

	held, err := g.labels.LabelsForUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("load labels for user %d: %w", userID, err)
	}

	want := make(map[string]struct{}, len(required))
	for _, r := range required {
		want[r] = struct{}{}
	}

	for _, h := range held {
		if _, ok := want[h]; ok {
			return true, nil
		}
	}
	return false, nil
}
