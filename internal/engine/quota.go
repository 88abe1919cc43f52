package engine

import (
	"math"
	"slices"

	"github.com/abrezinsky/heatroll/internal/errors"
)

// PlatformWeight is a raw client-supplied weight for one platform.
// Non-positive or non-finite weights count as 1.
type PlatformWeight struct {
	PlatformID int64
	Weight     float64
}

// Quotas maps platform id to the number of draws owed to it
type Quotas map[int64]int

// Total returns the sum of all quotas
func (q Quotas) Total() int {
	total := 0
	for _, n := range q {
		total += n
	}
	return total
}

// IDs returns the platform ids in ascending order
func (q Quotas) IDs() []int64 {
	ids := make([]int64, 0, len(q))
	for id := range q {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// NormalizeQuotas turns raw weights into an integer allocation that sums to
// exactly pool. When pool is smaller than the number of platforms, the pool
// highest-weighted platforms (ties: lower id) get 1 and the rest 0; otherwise
// every platform gets at least 1.
//
// The result depends only on its inputs.
func NormalizeQuotas(weights []PlatformWeight, pool int) (Quotas, error) {
	if pool < 1 {
		return nil, errors.QuotaMismatchf("pool size must be positive, got %d", pool)
	}
	n := len(weights)
	if n == 0 {
		return nil, errors.QuotaMismatch("heat has no platforms")
	}

	ws := make([]PlatformWeight, n)
	seen := make(map[int64]bool, n)
	var maxW float64
	for i, pw := range weights {
		if seen[pw.PlatformID] {
			return nil, errors.QuotaMismatchf("platform %d listed twice", pw.PlatformID)
		}
		seen[pw.PlatformID] = true
		w := pw.Weight
		if !(w > 0) || math.IsInf(w, 0) {
			w = 1
		}
		ws[i] = PlatformWeight{PlatformID: pw.PlatformID, Weight: w}
		maxW = max(maxW, w)
	}

	quotas := make(Quotas, n)

	if pool < n {
		ranked := slices.Clone(ws)
		slices.SortFunc(ranked, func(a, b PlatformWeight) int {
			if a.Weight != b.Weight {
				if a.Weight > b.Weight {
					return -1
				}
				return 1
			}
			return compareIDs(a.PlatformID, b.PlatformID)
		})
		for i, pw := range ranked {
			if i < pool {
				quotas[pw.PlatformID] = 1
			} else {
				quotas[pw.PlatformID] = 0
			}
		}
		return quotas, nil
	}

	// Scaled weights lie in [0, 1], so the sum stays finite for any input.
	scaled := make([]float64, n)
	var sum float64
	for i, pw := range ws {
		scaled[i] = pw.Weight / maxW
		sum += scaled[i]
	}

	exact := make([]float64, n)
	vals := make([]int, n)
	total := 0
	for i := range ws {
		exact[i] = scaled[i] * float64(pool) / sum
		vals[i] = max(1, int(math.Round(exact[i])))
		total += vals[i]
	}

	limit := 4*n + 4
	for iter := 0; total != pool; iter++ {
		if iter >= limit {
			return nil, errors.InvariantViolationf("quota adjustment did not converge (pool %d, platforms %d)", pool, n)
		}
		best := -1
		var bestGap float64
		if total > pool {
			for i := range vals {
				if vals[i] <= 1 {
					continue
				}
				gap := float64(vals[i]) - exact[i]
				if best == -1 || gap > bestGap || (gap == bestGap && ws[i].PlatformID < ws[best].PlatformID) {
					best, bestGap = i, gap
				}
			}
			if best == -1 {
				return nil, errors.InvariantViolationf("no platform above 1 to decrement (pool %d)", pool)
			}
			vals[best]--
			total--
			continue
		}
		for i := range vals {
			gap := exact[i] - float64(vals[i])
			if best == -1 || gap > bestGap || (gap == bestGap && ws[i].PlatformID < ws[best].PlatformID) {
				best, bestGap = i, gap
			}
		}
		vals[best]++
		total++
	}

	for i, pw := range ws {
		quotas[pw.PlatformID] = vals[i]
	}
	return quotas, nil
}

func compareIDs(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
