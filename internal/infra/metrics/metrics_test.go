//go:build !integration

package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"consulting-portal/internal/domain/model"
)

func TestTracker_CountsDecisions(t *testing.T) {
	logger := zerolog.Nop()
	tr := NewTracker(&logger)

	before := testutil.ToFloat64(checkoutDecisionsTotal.WithLabelValues("essencial", "cash"))
	tr.Track(context.Background(), model.TrackingEvent{PlanID: "ESSENCIAL", PaymentType: model.PaymentTypeCash, At: time.Now()})
	if got := testutil.ToFloat64(checkoutDecisionsTotal.WithLabelValues("essencial", "cash")); got != before+1 {
		t.Errorf("cash decisions = %v, want %v", got, before+1)
	}

	tr.Track(context.Background(), model.TrackingEvent{PlanID: "CORPORATIVO", Category: model.TrackingCategoryCorporate})
	if got := testutil.ToFloat64(checkoutDecisionsTotal.WithLabelValues("corporativo", "corporate")); got < 1 {
		t.Errorf("corporate decisions = %v", got)
	}
}

func TestObserveWebhook(t *testing.T) {
	ObserveWebhook("", "Applied", 20*time.Millisecond)
	if got := testutil.ToFloat64(webhookEventsTotal.WithLabelValues("unknown", "applied")); got < 1 {
		t.Errorf("webhook events = %v", got)
	}
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	MustRegister()
	MustRegister()
}

func TestRegisterWith_SkipsDuplicates(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := RegisterWith(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := RegisterWith(reg); err != nil {
		t.Fatalf("second register: %v", err)
	}
}

func TestObserveCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("role", "hit"))
	misses := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("role", "miss"))
	errs := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("role", "error"))

	ObserveCacheLookup("Role", true, nil)
	ObserveCacheLookup("role", false, errors.New("redis down"))

	if got := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("role", "hit")); got != hits+1 {
		t.Errorf("hits = %v, want %v", got, hits+1)
	}
	if got := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("role", "miss")); got != misses+1 {
		t.Errorf("misses = %v, want %v", got, misses+1)
	}
	if got := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("role", "error")); got != errs+1 {
		t.Errorf("errors = %v, want %v", got, errs+1)
	}
}

func TestSetBuildInfo(t *testing.T) {
	SetBuildInfo("", "abc123")
	if got := testutil.CollectAndCount(buildInfo); got != 1 {
		t.Errorf("build_info series = %d, want 1", got)
	}
}
