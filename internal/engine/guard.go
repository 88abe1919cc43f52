package engine

import (
	"fmt"
	"time"

	"github.com/abrezinsky/heatroll/internal/errors"
)

// GuardState is the computed availability of a heat for one participant
type GuardState string

const (
	GuardNotYetOpen GuardState = "not_yet_open"
	GuardLocked     GuardState = "locked_by_prior_heat"
	GuardOpen       GuardState = "open"
	GuardClosed     GuardState = "closed"
)

// DateLayout is the storage format of heat start and end dates
const DateLayout = "2006-01-02"

// GuardInput carries the facts the guard needs. Dates are calendar days in
// Location.
type GuardInput struct {
	Now       time.Time
	Location  *time.Location
	StartDate string
	EndDate   string
	// HasPrior is set when the series has a heat before this one.
	HasPrior bool
	// PriorResolved is set when the participant's signup on that heat is terminal.
	PriorResolved bool
}

// GuardResult is the evaluated state plus the window it was computed from
type GuardResult struct {
	State    GuardState `json:"state"`
	OpensAt  time.Time  `json:"opens_at"`
	ClosesAt time.Time  `json:"closes_at"`
}

// EvaluateGuard computes the heat state. A heat opens at the start of the day
// before its start date and closes after the last instant of its end date.
// Closed wins over the prior-heat lock.
func EvaluateGuard(in GuardInput) (GuardResult, error) {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(DateLayout, in.StartDate, loc)
	if err != nil {
		return GuardResult{}, errors.Internalf("invalid heat start date %q", in.StartDate)
	}
	end, err := time.ParseInLocation(DateLayout, in.EndDate, loc)
	if err != nil {
		return GuardResult{}, errors.Internalf("invalid heat end date %q", in.EndDate)
	}

	res := GuardResult{
		OpensAt:  start.AddDate(0, 0, -1),
		ClosesAt: end.AddDate(0, 0, 1),
	}

	switch {
	case in.Now.Before(res.OpensAt):
		res.State = GuardNotYetOpen
	case !in.Now.Before(res.ClosesAt):
		res.State = GuardClosed
	case in.HasPrior && !in.PriorResolved:
		res.State = GuardLocked
	default:
		res.State = GuardOpen
	}
	return res, nil
}

// Err returns nil for an open heat and a PreconditionFailed error otherwise
func (r GuardResult) Err() error {
	switch r.State {
	case GuardOpen:
		return nil
	case GuardNotYetOpen:
		return errors.PreconditionFailed(errors.ReasonHeatNotOpen,
			fmt.Sprintf("heat opens at %s", r.OpensAt.Format(time.RFC3339)))
	case GuardLocked:
		return errors.PreconditionFailed(errors.ReasonHeatLocked, "finish the previous heat first")
	case GuardClosed:
		return errors.PreconditionFailed(errors.ReasonHeatClosed, "heat is closed")
	}
	return errors.Internalf("unknown guard state %q", r.State)
}
