package auth

import (
	"context"
	"errors"
	"testing"
)

func TestHeaders(t *testing.T) {
	ctx := context.Background()

	h, err := Headers(ctx, StaticSession{UserID: "user-1", Token: "tok"})
	if err != nil || h["Authorization"] != "Bearer tok" {
		t.Fatalf("expected bearer header, got %#v err=%v", h, err)
	}

	h, err = Headers(ctx, StaticSession{UserID: " user-1 "})
	if err != nil || h[DebugUserHeader] != "user-1" {
		t.Fatalf("expected debug header, got %#v err=%v", h, err)
	}

	if _, err := Headers(ctx, StaticSession{}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := Headers(ctx, nil); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for nil session, got %v", err)
	}
}
