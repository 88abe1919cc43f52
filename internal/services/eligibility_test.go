package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/abrezinsky/heatroll/internal/engine"
	"github.com/abrezinsky/heatroll/internal/models"
	"github.com/abrezinsky/heatroll/internal/repository/mock"
	"github.com/abrezinsky/heatroll/internal/services"
	"github.com/abrezinsky/heatroll/internal/testutil"
)

func TestEligibilityResolver_Resolve(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	ctx := context.Background()

	ids := testutil.SeedPlatforms(t, repo, "NES", "SNES", "FDS")
	nes, snes, fds := ids[0], ids[1], ids[2]
	nesWestern := testutil.SeedGames(t, repo, nes, 3, true)
	nesJapan := testutil.SeedGames(t, repo, nes, 2, false)
	testutil.SeedGames(t, repo, fds, 2, false)

	// Western on SNES only; the NES release stayed in Japan
	shared, err := repo.CreateGame(ctx, models.Game{Name: "Shared"}, []models.GamePlatform{
		{PlatformID: nes, Western: false},
		{PlatformID: snes, Western: true},
	})
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}

	resolver := services.NewEligibilityResolver(testLogger())
	quotas := engine.Quotas{nes: 2, snes: 1, fds: 1}

	tests := []struct {
		name     string
		consumed map[int64]int
		drawn    []int64
		western  bool
		want     map[int64]int // platform -> eligible count; absent = no remaining quota
	}{
		{"fresh", nil, nil, false, map[int64]int{nes: 6, snes: 1, fds: 2}},
		{"drawn excluded everywhere", map[int64]int{nes: 1}, []int64{shared}, false, map[int64]int{nes: 5, snes: 0, fds: 2}},
		{"exhausted platform omitted", map[int64]int{nes: 2}, nil, false, map[int64]int{snes: 1, fds: 2}},
		{"western scoped per platform", nil, nil, true, map[int64]int{nes: 3, snes: 1, fds: 0}},
		{"western with exclusions", nil, nesWestern[:2], true, map[int64]int{nes: 1, snes: 1, fds: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumed := tt.consumed
			if consumed == nil {
				consumed = map[int64]int{}
			}
			got, err := resolver.Resolve(ctx, repo, quotas, consumed, tt.drawn, tt.western)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d platforms, got %d (%v)", len(tt.want), len(got), got)
			}
			for pid, n := range tt.want {
				games, ok := got[pid]
				if !ok {
					t.Errorf("platform %d missing", pid)
					continue
				}
				if len(games) != n {
					t.Errorf("platform %d: expected %d games, got %d", pid, n, len(games))
				}
			}
		})
	}

	got, _ := resolver.Resolve(ctx, repo, quotas, map[int64]int{}, nil, true)
	for _, id := range got[nes] {
		for _, jp := range append(nesJapan, shared) {
			if id == jp {
				t.Errorf("game %d is not western on NES", id)
			}
		}
	}
}

func TestEligibilityResolver_RepositoryError(t *testing.T) {
	repo := mock.NewRepository(testutil.NewTestRepository(t))
	boom := stderrors.New("boom")
	repo.ListEligibleGameIDsError = boom

	resolver := services.NewEligibilityResolver(testLogger())
	_, err := resolver.Resolve(context.Background(), repo, engine.Quotas{1: 1}, map[int64]int{}, nil, false)
	if err != boom {
		t.Errorf("expected boom, got %v", err)
	}
}
