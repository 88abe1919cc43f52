package errors

import (
	"errors"
	"fmt"
	"testing"
)

// =============================================================================
// Constructors
// =============================================================================

func TestConstructors_SetKindAndMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     *Error
		kind    Kind
		message string
	}{
		{"NotFound", NotFound("heat not found"), ErrNotFound, "heat not found"},
		{"NotFoundf", NotFoundf("heat %d not found", 7), ErrNotFound, "heat 7 not found"},
		{"Validation", Validation("bad status"), ErrValidation, "bad status"},
		{"Conflictf", Conflictf("roll %d is the pick", 3), ErrConflict, "roll 3 is the pick"},
		{"InvalidInput", InvalidInput("missing roll_id"), ErrInvalidInput, "missing roll_id"},
		{"QuotaMismatch", QuotaMismatch("pool is full"), ErrQuotaMismatch, "pool is full"},
		{"QuotaMismatchf", QuotaMismatchf("unknown platform %d", 9), ErrQuotaMismatch, "unknown platform 9"},
		{"NoEligibleItems", NoEligibleItems("no games"), ErrNoEligibleItems, "no games"},
		{"NoEligibleItemsf", NoEligibleItemsf("no games on %s", "NES"), ErrNoEligibleItems, "no games on NES"},
		{"InvariantViolation", InvariantViolation("foreign roll"), ErrInvariantViolation, "foreign roll"},
		{"Internalf", Internalf("boom %d", 1), ErrInternal, "boom 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, tt.err.Kind)
			}
			if tt.err.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, tt.err.Message)
			}
			if tt.err.Error() != tt.message {
				t.Errorf("expected Error() %q, got %q", tt.message, tt.err.Error())
			}
		})
	}
}

func TestPreconditionFailed_CarriesReason(t *testing.T) {
	err := PreconditionFailed(ReasonHeatClosed, "heat is closed")

	if err.Kind != ErrPreconditionFailed {
		t.Errorf("expected ErrPreconditionFailed, got %v", err.Kind)
	}
	if err.Reason != ReasonHeatClosed {
		t.Errorf("expected reason %q, got %q", ReasonHeatClosed, err.Reason)
	}
}

func TestSequenceConflict_WrapsCause(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed: rolls.signup_id, rolls.seq")
	err := SequenceConflict(cause)

	if err.Kind != ErrSequenceConflict {
		t.Errorf("expected ErrSequenceConflict, got %v", err.Kind)
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	want := "roll sequence conflict: " + cause.Error()
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestInternal_WrapsError(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal(cause)

	if err.Message != "internal error" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if errors.Unwrap(err) != cause {
		t.Error("expected Unwrap to return cause")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("no rows")
	err := Wrap(cause, ErrNotFound, "signup lookup")

	if err.Kind != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err.Kind)
	}
	if err.Error() != "signup lookup: no rows" {
		t.Errorf("unexpected Error(): %q", err.Error())
	}
}

// =============================================================================
// Classification helpers
// =============================================================================

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"app error", QuotaMismatch("full"), ErrQuotaMismatch},
		{"wrapped app error", fmt.Errorf("draw: %w", NoEligibleItems("none")), ErrNoEligibleItems},
		{"plain error", errors.New("plain"), ErrInternal},
		{"nil", nil, ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("veto: %w", PreconditionFailed(ReasonHeatLocked, "locked"))

	if !Is(err, ErrPreconditionFailed) {
		t.Error("expected Is to match ErrPreconditionFailed")
	}
	if Is(err, ErrConflict) {
		t.Error("expected Is not to match ErrConflict")
	}
}

func TestKind_String(t *testing.T) {
	if ErrNoEligibleItems.String() != "no_eligible_items" {
		t.Errorf("unexpected name %q", ErrNoEligibleItems.String())
	}
	if Kind(99).String() != "unknown" {
		t.Errorf("expected unknown for out-of-range kind")
	}
}
