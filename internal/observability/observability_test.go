package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/geocoder89/catalogadmin/internal/actorctx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

func TestClassifyDBErr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, "unique_violation"},
		{"fk", &pgconn.PgError{Code: "23503"}, "foreign_key_violation"},
		{"other pg", &pgconn.PgError{Code: "42P01"}, "pg_42P01"},
		{"timeout", context.DeadlineExceeded, "timeout"},
		{"unknown", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyDBErr(tt.err); got != tt.want {
				t.Fatalf("classifyDBErr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func dbErrorCount(t *testing.T, reg *prometheus.Registry, class string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	var total float64
	for _, mf := range families {
		if mf.GetName() != "catalog_db_errors_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "class" && l.GetValue() == class {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}

func TestObserveDB_NoRowsIsNotAnError(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewProm(reg)

	err := p.ObserveDB("products.get_by_id", func() error { return pgx.ErrNoRows })
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected ErrNoRows to pass through, got %v", err)
	}
	if n := dbErrorCount(t, reg, "unknown"); n != 0 {
		t.Fatalf("expected no error series, got %v", n)
	}

	_ = p.ObserveDB("products.create", func() error { return &pgconn.PgError{Code: "23505"} })
	if n := dbErrorCount(t, reg, "unique_violation"); n != 1 {
		t.Fatalf("expected 1 unique violation, got %v", n)
	}
}

func TestJobMetrics_Snapshot(t *testing.T) {
	m := NewJobMetrics()
	m.IncClaimed()
	m.IncDone()
	m.ObserveDuration(10 * time.Millisecond)
	m.ObserveDuration(30 * time.Millisecond)

	s := m.Snapshot()
	if s.Claimed != 1 || s.Done != 1 {
		t.Fatalf("unexpected counters: %+v", s)
	}
	if s.AverageDuration != 20*time.Millisecond || s.MaxDuration != 30*time.Millisecond {
		t.Fatalf("unexpected durations: avg=%s max=%s", s.AverageDuration, s.MaxDuration)
	}
}

func TestLogger_AddsServiceAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod", "catalog-api")

	log.Debug("hidden")
	log.Info("visible")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected exactly one JSON record, got %q: %v", buf.String(), err)
	}
	if rec["service"] != "catalog-api" || rec["msg"] != "visible" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestLogger_AddsContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod", "catalog-api")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x0a, 0x0b},
		SpanID:     trace.SpanID{0x01},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = actorctx.WithUserID(ctx, 42)

	log.InfoContext(ctx, "product updated")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode record %q: %v", buf.String(), err)
	}
	if rec["trace_id"] != sc.TraceID().String() || rec["span_id"] != sc.SpanID().String() {
		t.Fatalf("missing span ids: %v", rec)
	}
	if rec["trace_sampled"] != true {
		t.Fatalf("expected trace_sampled, got %v", rec["trace_sampled"])
	}
	// JSON numbers decode as float64
	if rec["actor_id"] != float64(42) {
		t.Fatalf("expected actor_id 42, got %v", rec["actor_id"])
	}
}

func TestLogger_NoContextAttrsWithoutValues(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod", "catalog-api")

	log.With("component", "worker").InfoContext(context.Background(), "idle")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode record %q: %v", buf.String(), err)
	}
	for _, k := range []string{"trace_id", "span_id", "trace_sampled", "actor_id"} {
		if _, ok := rec[k]; ok {
			t.Fatalf("unexpected %s in %v", k, rec)
		}
	}
	if rec["component"] != "worker" {
		t.Fatalf("With attrs lost: %v", rec)
	}
}
