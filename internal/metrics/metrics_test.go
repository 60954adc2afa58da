package metrics

import (
	"context"
	"testing"
	"time"
)

func TestServeDisabledWhenAddrEmpty(t *testing.T) {
	m := New()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, "") }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve with empty addr returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}

func TestCountersIncrement(t *testing.T) {
	m := New()
	m.JobsProcessed.Inc()
	m.JobsFailed.Inc()
	m.JobsPoisoned.Inc()
	m.EngineEvaluations.Add(5)
	m.AnalysisDuration.Observe(1.5)
}
