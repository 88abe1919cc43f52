package engine

import (
	"slices"

	"github.com/abrezinsky/heatroll/internal/errors"
	"github.com/abrezinsky/heatroll/internal/models"
)

// MaxWheelSlots is the default upper bound on the reveal sequence length
const MaxWheelSlots = 30

// WheelInput is everything the wheel builder needs about one draw
type WheelInput struct {
	ChosenPlatform int64
	ChosenGame     int64
	Eligible       map[int64][]int64 // platform id -> eligible game ids
	Remaining      map[int64]int     // platform id -> remaining quota before this draw
	MaxSlots       int               // 0 means MaxWheelSlots
}

// BuildWheel arranges a shuffled, bounded reveal sequence that contains the
// chosen game exactly once and reports the index it sits at.
//
// Half the wheel (rounded up) comes from the chosen platform when it has
// enough games; the rest is filled by remaining-weighted platform picks.
// Slots hold game and platform ids only; callers fill in names.
func BuildWheel(r Rand, in WheelInput) (*models.Wheel, error) {
	maxSlots := in.MaxSlots
	if maxSlots <= 0 {
		maxSlots = MaxWheelSlots
	}

	union := make(map[int64]struct{})
	for _, games := range in.Eligible {
		for _, g := range games {
			union[g] = struct{}{}
		}
	}
	if len(union) == 0 {
		return nil, errors.NoEligibleItems("no eligible games for the wheel")
	}
	if !slices.Contains(in.Eligible[in.ChosenPlatform], in.ChosenGame) {
		return nil, errors.InvariantViolationf("game %d is not eligible on platform %d", in.ChosenGame, in.ChosenPlatform)
	}

	size := min(maxSlots, len(union))
	used := map[int64]bool{in.ChosenGame: true}
	slots := make([]models.WheelSlot, 0, size)

	queues := make(map[int64][]int64, len(in.Eligible))
	for pid, games := range in.Eligible {
		q := slices.Clone(games)
		shuffle(r, len(q), func(i, j int) { q[i], q[j] = q[j], q[i] })
		queues[pid] = q
	}

	// pop takes the next unused game off a platform queue
	pop := func(pid int64) (int64, bool) {
		q := queues[pid]
		for len(q) > 0 {
			g := q[len(q)-1]
			q = q[:len(q)-1]
			if !used[g] {
				queues[pid] = q
				return g, true
			}
		}
		queues[pid] = q
		return 0, false
	}

	seed := min((size+1)/2, size-1)
	for len(slots) < seed {
		g, ok := pop(in.ChosenPlatform)
		if !ok {
			break
		}
		used[g] = true
		slots = append(slots, models.WheelSlot{GameID: g, PlatformID: in.ChosenPlatform})
	}

	pids := make([]int64, 0, len(queues))
	for pid := range queues {
		pids = append(pids, pid)
	}
	slices.Sort(pids)

	for len(slots) < size-1 {
		var candidates []int64
		var weights []int
		total := 0
		for _, pid := range pids {
			if !hasUnused(queues[pid], used) {
				continue
			}
			w := max(1, in.Remaining[pid])
			candidates = append(candidates, pid)
			weights = append(weights, w)
			total += w
		}
		if len(candidates) == 0 {
			return nil, errors.InvariantViolationf("wheel ran out of games at %d of %d slots", len(slots)+1, size)
		}

		x := r.IntN(total)
		pid := candidates[len(candidates)-1]
		for i, w := range weights {
			if x < w {
				pid = candidates[i]
				break
			}
			x -= w
		}

		g, _ := pop(pid)
		used[g] = true
		slots = append(slots, models.WheelSlot{GameID: g, PlatformID: pid})
	}

	slots = append(slots, models.WheelSlot{GameID: in.ChosenGame, PlatformID: in.ChosenPlatform})
	shuffle(r, len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })

	landing := -1
	for i, s := range slots {
		if s.GameID == in.ChosenGame {
			landing = i
			break
		}
	}

	return &models.Wheel{Slots: slots, LandingIndex: landing}, nil
}

func hasUnused(queue []int64, used map[int64]bool) bool {
	for _, g := range queue {
		if !used[g] {
			return true
		}
	}
	return false
}
