package repository

import (
	"context"

	"github.com/abrezinsky/heatroll/internal/models"
)

// PlatformRepository defines platform data operations
type PlatformRepository interface {
	CreatePlatform(ctx context.Context, name, abbreviation string) (int64, error)
	ListPlatforms(ctx context.Context) ([]models.Platform, error)
}

// HeatRepository defines heat data operations
type HeatRepository interface {
	CreateHeat(ctx context.Context, heat models.Heat, platformIDs []int64) (int64, error)
	GetHeat(ctx context.Context, id int64) (*models.Heat, error)
	GetPriorHeat(ctx context.Context, seriesID int64, position int) (*models.Heat, error)
	ListHeats(ctx context.Context) ([]models.Heat, error)
	GetHeatStats(ctx context.Context, heatID int64) (*models.HeatStats, error)
}

// GameRepository defines catalog data operations
type GameRepository interface {
	CreateGame(ctx context.Context, game models.Game, platforms []models.GamePlatform) (int64, error)
	CountGames(ctx context.Context) (int, error)
	GetGame(ctx context.Context, id int64) (*models.Game, error)
	GetGamesByIDs(ctx context.Context, ids []int64) (map[int64]*models.Game, error)
	ListEligibleGameIDs(ctx context.Context, platformID int64, exclude []int64, westernOnly bool) ([]int64, error)
}

// SignupRepository defines signup data operations
type SignupRepository interface {
	GetSignup(ctx context.Context, heatID int64, participantID string) (*models.Signup, error)
	GetSignupByID(ctx context.Context, id int64) (*models.Signup, error)
	ListSignups(ctx context.Context, heatID int64) ([]models.Signup, error)
	CreateSignup(ctx context.Context, heatID int64, participantID string) (int64, error)
	LockQuotas(ctx context.Context, signupID int64, quotas map[int64]int, westernRequired int) error
	SetPick(ctx context.Context, signupID int64, gameID *int64) error
	SetSignupStatus(ctx context.Context, signupID int64, status models.Status) error
	ResetSignup(ctx context.Context, signupID int64) error
}

// RollRepository defines roll data operations
type RollRepository interface {
	ListRolls(ctx context.Context, signupID int64) ([]models.Roll, error)
	GetRoll(ctx context.Context, id int64) (*models.Roll, error)
	MaxRollSeq(ctx context.Context, signupID int64) (int, error)
	InsertRoll(ctx context.Context, roll models.Roll) (int64, error)
	DeleteRoll(ctx context.Context, id int64) error
	DeleteRolls(ctx context.Context, signupID int64) error
}

// AdminRepository defines maintenance operations
type AdminRepository interface {
	ClearTable(ctx context.Context, table string) error
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	PlatformRepository
	HeatRepository
	GameRepository
	SignupRepository
	RollRepository
	AdminRepository

	// WithTx runs fn in a transaction bound to the repository it receives
	WithTx(ctx context.Context, fn func(FullRepository) error) error
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
