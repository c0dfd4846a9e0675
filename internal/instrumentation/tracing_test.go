package instrumentation

import (
	"context"
	"errors"
	"testing"
)

func TestStartMessageSpan(t *testing.T) {
	ctx, span := StartMessageSpan(context.Background(), "console", "user:abc")
	if span == nil {
		t.Fatal("expected span to be non-nil")
	}
	if ctx == nil {
		t.Fatal("expected ctx to be non-nil")
	}
	EndSpan(span, nil)
}

func TestStartGoogleAPISpan(t *testing.T) {
	_, span := StartGoogleAPISpan(context.Background(), "calendar", "list")
	if span == nil {
		t.Fatal("expected span to be non-nil")
	}
	EndSpan(span, errors.New("boom"))
}

func TestTraceID_NoSpan(t *testing.T) {
	if id := TraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace id, got %q", id)
	}
}
