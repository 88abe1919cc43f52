package engine

// Remaining returns max(0, quota-consumed)
func Remaining(quota, consumed int) int {
	return max(0, quota-consumed)
}

// RemainingQuotas returns the remaining count for every platform in quotas
func RemainingQuotas(quotas Quotas, consumed map[int64]int) map[int64]int {
	rem := make(map[int64]int, len(quotas))
	for id, q := range quotas {
		rem[id] = Remaining(q, consumed[id])
	}
	return rem
}

// PickPlatform draws the next platform with probability proportional to its
// remaining quota. It returns false iff nothing remains.
func PickPlatform(r Rand, quotas Quotas, consumed map[int64]int) (int64, bool) {
	ids := quotas.IDs()
	rem := make([]int, len(ids))
	total := 0
	for i, id := range ids {
		rem[i] = Remaining(quotas[id], consumed[id])
		total += rem[i]
	}
	if total == 0 {
		return 0, false
	}

	x := r.IntN(total)
	for i, id := range ids {
		if x < rem[i] {
			return id, true
		}
		x -= rem[i]
	}
	return 0, false
}

// MustSatisfyWestern reports whether the next draw has to be a western
// release: some requirement is still outstanding and it is at least as large
// as the number of draws left in the pool.
func MustSatisfyWestern(target, satisfied, pool, drawn int) bool {
	outstanding := max(0, target-satisfied)
	left := pool - drawn
	return outstanding > 0 && outstanding >= left
}
