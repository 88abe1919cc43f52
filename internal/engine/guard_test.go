package engine

import (
	"testing"
	"time"

	"github.com/abrezinsky/heatroll/internal/errors"
)

func TestEvaluateGuard(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	at := func(s string) time.Time {
		ts, err := time.ParseInLocation("2006-01-02 15:04", s, ny)
		if err != nil {
			t.Fatalf("bad time %q: %v", s, err)
		}
		return ts
	}

	base := GuardInput{Location: ny, StartDate: "2026-03-10", EndDate: "2026-03-20"}

	tests := []struct {
		name          string
		now           time.Time
		hasPrior      bool
		priorResolved bool
		want          GuardState
	}{
		{"two days early", at("2026-03-08 23:59"), false, false, GuardNotYetOpen},
		{"day before start opens", at("2026-03-09 00:00"), false, false, GuardOpen},
		{"mid heat", at("2026-03-15 12:00"), false, false, GuardOpen},
		{"last minute of end date", at("2026-03-20 23:59"), false, false, GuardOpen},
		{"day after end", at("2026-03-21 00:00"), false, false, GuardClosed},
		{"locked by unresolved prior", at("2026-03-15 12:00"), true, false, GuardLocked},
		{"prior resolved", at("2026-03-15 12:00"), true, true, GuardOpen},
		{"closed beats lock", at("2026-04-01 09:00"), true, false, GuardClosed},
		{"not yet open beats lock", at("2026-03-01 09:00"), true, false, GuardNotYetOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			in.Now = tt.now
			in.HasPrior = tt.hasPrior
			in.PriorResolved = tt.priorResolved

			res, err := EvaluateGuard(in)
			if err != nil {
				t.Fatalf("EvaluateGuard failed: %v", err)
			}
			if res.State != tt.want {
				t.Errorf("expected %s, got %s", tt.want, res.State)
			}
		})
	}
}

func TestEvaluateGuard_UsesReferenceZone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 03:00 UTC on the 21st is still the 20th in New York
	now := time.Date(2026, 3, 21, 3, 0, 0, 0, time.UTC)

	res, err := EvaluateGuard(GuardInput{Now: now, Location: ny, StartDate: "2026-03-10", EndDate: "2026-03-20"})
	if err != nil {
		t.Fatalf("EvaluateGuard failed: %v", err)
	}
	if res.State != GuardOpen {
		t.Errorf("expected open in the reference zone, got %s", res.State)
	}

	res, _ = EvaluateGuard(GuardInput{Now: now, Location: time.UTC, StartDate: "2026-03-10", EndDate: "2026-03-20"})
	if res.State != GuardClosed {
		t.Errorf("expected closed in UTC, got %s", res.State)
	}
}

func TestEvaluateGuard_BadDate(t *testing.T) {
	_, err := EvaluateGuard(GuardInput{Now: time.Now(), StartDate: "March 10", EndDate: "2026-03-20"})
	if err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestGuardResult_Err(t *testing.T) {
	tests := []struct {
		state  GuardState
		reason string
	}{
		{GuardNotYetOpen, errors.ReasonHeatNotOpen},
		{GuardLocked, errors.ReasonHeatLocked},
		{GuardClosed, errors.ReasonHeatClosed},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			err := GuardResult{State: tt.state}.Err()
			var appErr *errors.Error
			if !asAppError(err, &appErr) || appErr.Kind != errors.ErrPreconditionFailed {
				t.Fatalf("expected PreconditionFailed, got %v", err)
			}
			if appErr.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, appErr.Reason)
			}
		})
	}

	if err := (GuardResult{State: GuardOpen}).Err(); err != nil {
		t.Errorf("expected nil for open heat, got %v", err)
	}
}

func asAppError(err error, target **errors.Error) bool {
	e, ok := err.(*errors.Error)
	if ok {
		*target = e
	}
	return ok
}
