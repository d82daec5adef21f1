package telemetry

import (
	"context"
	"testing"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := Setup(context.Background(), "arena-test", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// non-routable, nothing is exported
	shutdown, err := Setup(context.Background(), "arena-test", "http://192.0.2.1:4318")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}
