package services

import (
	"context"

	"github.com/abrezinsky/heatroll/internal/engine"
	"github.com/abrezinsky/heatroll/internal/logger"
)

// EligibilityRepository defines the catalog query the resolver needs
type EligibilityRepository interface {
	ListEligibleGameIDs(ctx context.Context, platformID int64, exclude []int64, westernOnly bool) ([]int64, error)
}

// EligibilityResolver finds the games a draw may land on
type EligibilityResolver struct {
	log logger.Logger
}

// NewEligibilityResolver creates a new EligibilityResolver
func NewEligibilityResolver(log logger.Logger) *EligibilityResolver {
	return &EligibilityResolver{log: log}
}

// Resolve returns, for every platform with remaining quota, the games on that
// platform not yet drawn. With western set, a game only qualifies when its
// western flag is set for that same platform. Platforms without eligible games
// map to an empty slice; deciding whether that is fatal is up to the caller.
func (e *EligibilityResolver) Resolve(ctx context.Context, repo EligibilityRepository, quotas engine.Quotas, consumed map[int64]int, drawn []int64, western bool) (map[int64][]int64, error) {
	eligible := make(map[int64][]int64)
	for _, pid := range quotas.IDs() {
		if engine.Remaining(quotas[pid], consumed[pid]) == 0 {
			continue
		}
		ids, err := repo.ListEligibleGameIDs(ctx, pid, drawn, western)
		if err != nil {
			return nil, err
		}
		eligible[pid] = ids
	}

	e.log.Debug("Resolved eligible games", "platforms", len(eligible), "western_only", western, "excluded", len(drawn))
	return eligible, nil
}
