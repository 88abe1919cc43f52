package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/abrezinsky/heatroll/internal/models"
	"github.com/abrezinsky/heatroll/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// SeedPlatforms creates one platform per name and returns their ids in order
func SeedPlatforms(t *testing.T, repo repository.PlatformRepository, names ...string) []int64 {
	t.Helper()

	ids := make([]int64, 0, len(names))
	for _, name := range names {
		id, err := repo.CreatePlatform(context.Background(), name, name)
		if err != nil {
			t.Fatalf("CreatePlatform(%q) failed: %v", name, err)
		}
		ids = append(ids, id)
	}
	return ids
}

// SeedGames creates n games on one platform with the given western flag
func SeedGames(t *testing.T, repo repository.GameRepository, platformID int64, n int, western bool) []int64 {
	t.Helper()

	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		game := models.Game{Name: fmt.Sprintf("Game %d-%d", platformID, i+1)}
		id, err := repo.CreateGame(context.Background(), game, []models.GamePlatform{{PlatformID: platformID, Western: western}})
		if err != nil {
			t.Fatalf("CreateGame failed: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

// OpenHeat returns a heat whose window contains now in any zone
func OpenHeat(seriesID int64, position, poolSize int) models.Heat {
	now := time.Now().UTC()
	return models.Heat{
		SeriesID:  seriesID,
		Position:  position,
		Name:      fmt.Sprintf("Heat %d", position),
		StartDate: now.AddDate(0, 0, -2).Format("2006-01-02"),
		EndDate:   now.AddDate(0, 0, 7).Format("2006-01-02"),
		PoolSize:  poolSize,
	}
}

// ClosedHeat returns a heat that ended last month
func ClosedHeat(seriesID int64, position, poolSize int) models.Heat {
	h := OpenHeat(seriesID, position, poolSize)
	now := time.Now().UTC()
	h.StartDate = now.AddDate(0, -2, 0).Format("2006-01-02")
	h.EndDate = now.AddDate(0, -1, 0).Format("2006-01-02")
	return h
}

// SeedHeat creates a heat over the given platforms and returns its id
func SeedHeat(t *testing.T, repo repository.HeatRepository, heat models.Heat, platformIDs []int64) int64 {
	t.Helper()

	id, err := repo.CreateHeat(context.Background(), heat, platformIDs)
	if err != nil {
		t.Fatalf("CreateHeat failed: %v", err)
	}
	return id
}
