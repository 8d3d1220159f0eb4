package schedule

import (
	"testing"

	"github.com/zighstudio/salon-scheduler/internal/httperr"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusNoShow, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusNoShow, StatusPending, false},
	}

	for _, tc := range cases {
		err := CanTransition(tc.from, tc.to)
		if tc.ok && err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tc.from, tc.to, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("%s -> %s: expected rejection", tc.from, tc.to)
		}
	}
}

func TestCancelAlreadyCancelled(t *testing.T) {
	err := CanTransition(StatusCancelled, StatusCancelled)
	be, ok := httperr.AsBusiness(err)
	if !ok {
		t.Fatalf("expected business error, got %v", err)
	}
	if be.Code != "already_cancelled" {
		t.Fatalf("expected already_cancelled, got %s", be.Code)
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusCancelled, StatusNoShow} {
		if !IsTerminal(s) {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusPending, StatusConfirmed} {
		if IsTerminal(s) {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestInitialStatus(t *testing.T) {
	if InitialStatus(true) != StatusConfirmed {
		t.Fatal("booking with employee should start confirmed")
	}
	if InitialStatus(false) != StatusPending {
		t.Fatal("booking without employee should start pending")
	}
}

func TestIsValidStatus(t *testing.T) {
	if !IsValidStatus(StatusNoShow) {
		t.Fatal("no_show should be valid")
	}
	if IsValidStatus(Status("archived")) {
		t.Fatal("unknown status should be invalid")
	}
}
