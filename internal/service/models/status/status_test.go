package status

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	t.Run("recognized values", func(t *testing.T) {
		for _, s := range []string{"pending", "confirmed", "preparing", "ready", "served", "cancelled"} {
			got, err := ParseStatus(s)
			if err != nil {
				t.Fatalf("ParseStatus(%q): unexpected error %v", s, err)
			}
			if got.String() != s {
				t.Fatalf("ParseStatus(%q) = %q", s, got)
			}
		}
	})

	t.Run("unknown value", func(t *testing.T) {
		if _, err := ParseStatus("delivered"); !errors.Is(err, ErrUnknownStatus) {
			t.Fatalf("expected ErrUnknownStatus, got %v", err)
		}
	})

	t.Run("empty value", func(t *testing.T) {
		if _, err := ParseStatus(""); !errors.Is(err, ErrUnknownStatus) {
			t.Fatalf("expected ErrUnknownStatus, got %v", err)
		}
	})
}

func TestCanTransitionTo(t *testing.T) {
	allowed := []struct {
		from, to Status
	}{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusPreparing},
		{StatusConfirmed, StatusCancelled},
		{StatusPreparing, StatusReady},
		{StatusPreparing, StatusCancelled},
		{StatusReady, StatusServed},
		{StatusReady, StatusCancelled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct {
		from, to Status
	}{
		{StatusPending, StatusPreparing},
		{StatusPending, StatusReady},
		{StatusPending, StatusServed},
		{StatusConfirmed, StatusReady},
		{StatusPreparing, StatusServed},
		{StatusServed, StatusCancelled},
		{StatusServed, StatusPending},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusServed},
	}
	for _, tc := range forbidden {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be forbidden", tc.from, tc.to)
		}
	}

	t.Run("same status is allowed", func(t *testing.T) {
		for _, s := range []Status{StatusPending, StatusServed, StatusCancelled} {
			if !s.CanTransitionTo(s) {
				t.Errorf("expected %s -> %s to be allowed", s, s)
			}
		}
	})
}

func TestTerminal(t *testing.T) {
	if !StatusServed.Terminal() || !StatusCancelled.Terminal() {
		t.Fatal("served and cancelled must be terminal")
	}
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady} {
		if s.Terminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
}
