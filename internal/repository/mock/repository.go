package mock

import (
	"context"

	"github.com/abrezinsky/heatroll/internal/models"
	"github.com/abrezinsky/heatroll/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// Injected errors also apply inside WithTx: the transaction-bound repository
// handed to the callback is wrapped with the same settings.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.InsertRollConflicts = 1
//	svc := services.NewLedgerService(log, mockRepo, heats, resolver, rng, 30)
//	_, err := svc.Draw(ctx, req)
//	// the first insert reports a duplicate and the draw retries
type Repository struct {
	repository.FullRepository

	// root holds the injected settings when this is a transaction-bound view
	root *Repository

	// ===== Transaction Errors =====
	WithTxError error

	// ===== Heat Errors =====
	GetHeatError      error
	GetPriorHeatError error
	ListHeatsError    error
	CreateHeatError   error
	GetHeatStatsError error

	// ===== Platform Errors =====
	CreatePlatformError error
	ListPlatformsError  error

	// ===== Game Errors =====
	CreateGameError          error
	CountGamesError          error
	GetGameError             error
	GetGamesByIDsError       error
	ListEligibleGameIDsError error

	// ===== Signup Errors =====
	GetSignupError       error
	GetSignupByIDError   error
	ListSignupsError     error
	CreateSignupError    error
	LockQuotasError      error
	SetPickError         error
	SetSignupStatusError error
	ResetSignupError     error

	// ===== Roll Errors =====
	ListRollsError   error
	GetRollError     error
	MaxRollSeqError  error
	InsertRollError  error
	DeleteRollError  error
	DeleteRollsError error

	// InsertRollConflicts makes the next N InsertRoll calls report a duplicate
	InsertRollConflicts int

	// CreateSignupRace makes the next CreateSignup report a duplicate after
	// inserting the row, as if a concurrent request won the race
	CreateSignupRace bool

	// ===== Admin Errors =====
	ClearTableError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

func (m *Repository) cfg() *Repository {
	if m.root != nil {
		return m.root
	}
	return m
}

// ===== Transaction =====

func (m *Repository) WithTx(ctx context.Context, fn func(repository.FullRepository) error) error {
	if err := m.cfg().WithTxError; err != nil {
		return err
	}
	return m.FullRepository.WithTx(ctx, func(tx repository.FullRepository) error {
		return fn(&Repository{FullRepository: tx, root: m.cfg()})
	})
}

// ===== Heat Methods =====

func (m *Repository) GetHeat(ctx context.Context, id int64) (*models.Heat, error) {
	if err := m.cfg().GetHeatError; err != nil {
		return nil, err
	}
	return m.FullRepository.GetHeat(ctx, id)
}

func (m *Repository) GetPriorHeat(ctx context.Context, seriesID int64, position int) (*models.Heat, error) {
	if err := m.cfg().GetPriorHeatError; err != nil {
		return nil, err
	}
	return m.FullRepository.GetPriorHeat(ctx, seriesID, position)
}

func (m *Repository) ListHeats(ctx context.Context) ([]models.Heat, error) {
	if err := m.cfg().ListHeatsError; err != nil {
		return nil, err
	}
	return m.FullRepository.ListHeats(ctx)
}

func (m *Repository) CreateHeat(ctx context.Context, heat models.Heat, platformIDs []int64) (int64, error) {
	if err := m.cfg().CreateHeatError; err != nil {
		return 0, err
	}
	return m.FullRepository.CreateHeat(ctx, heat, platformIDs)
}

func (m *Repository) GetHeatStats(ctx context.Context, heatID int64) (*models.HeatStats, error) {
	if err := m.cfg().GetHeatStatsError; err != nil {
		return nil, err
	}
	return m.FullRepository.GetHeatStats(ctx, heatID)
}

// ===== Platform Methods =====

func (m *Repository) CreatePlatform(ctx context.Context, name, abbreviation string) (int64, error) {
	if err := m.cfg().CreatePlatformError; err != nil {
		return 0, err
	}
	return m.FullRepository.CreatePlatform(ctx, name, abbreviation)
}

func (m *Repository) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	if err := m.cfg().ListPlatformsError; err != nil {
		return nil, err
	}
	return m.FullRepository.ListPlatforms(ctx)
}

// ===== Game Methods =====

func (m *Repository) CreateGame(ctx context.Context, game models.Game, platforms []models.GamePlatform) (int64, error) {
	if err := m.cfg().CreateGameError; err != nil {
		return 0, err
	}
	return m.FullRepository.CreateGame(ctx, game, platforms)
}

func (m *Repository) CountGames(ctx context.Context) (int, error) {
	if err := m.cfg().CountGamesError; err != nil {
		return 0, err
	}
	return m.FullRepository.CountGames(ctx)
}

func (m *Repository) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	if err := m.cfg().GetGameError; err != nil {
		return nil, err
	}
	return m.FullRepository.GetGame(ctx, id)
}

func (m *Repository) GetGamesByIDs(ctx context.Context, ids []int64) (map[int64]*models.Game, error) {
	if err := m.cfg().GetGamesByIDsError; err != nil {
		return nil, err
	}
	return m.FullRepository.GetGamesByIDs(ctx, ids)
}

func (m *Repository) ListEligibleGameIDs(ctx context.Context, platformID int64, exclude []int64, westernOnly bool) ([]int64, error) {
	if err := m.cfg().ListEligibleGameIDsError; err != nil {
		return nil, err
	}
	return m.FullRepository.ListEligibleGameIDs(ctx, platformID, exclude, westernOnly)
}

// ===== Signup Methods =====

func (m *Repository) GetSignup(ctx context.Context, heatID int64, participantID string) (*models.Signup, error) {
	if err := m.cfg().GetSignupError; err != nil {
		return nil, err
	}
	return m.FullRepository.GetSignup(ctx, heatID, participantID)
}

func (m *Repository) GetSignupByID(ctx context.Context, id int64) (*models.Signup, error) {
	if err := m.cfg().GetSignupByIDError; err != nil {
		return nil, err
	}
	return m.FullRepository.GetSignupByID(ctx, id)
}

func (m *Repository) ListSignups(ctx context.Context, heatID int64) ([]models.Signup, error) {
	if err := m.cfg().ListSignupsError; err != nil {
		return nil, err
	}
	return m.FullRepository.ListSignups(ctx, heatID)
}

func (m *Repository) CreateSignup(ctx context.Context, heatID int64, participantID string) (int64, error) {
	c := m.cfg()
	if err := c.CreateSignupError; err != nil {
		return 0, err
	}
	if c.CreateSignupRace {
		c.CreateSignupRace = false
		if _, err := m.FullRepository.CreateSignup(ctx, heatID, participantID); err != nil {
			return 0, err
		}
		return 0, repository.ErrDuplicate
	}
	return m.FullRepository.CreateSignup(ctx, heatID, participantID)
}

func (m *Repository) LockQuotas(ctx context.Context, signupID int64, quotas map[int64]int, westernRequired int) error {
	if err := m.cfg().LockQuotasError; err != nil {
		return err
	}
	return m.FullRepository.LockQuotas(ctx, signupID, quotas, westernRequired)
}

func (m *Repository) SetPick(ctx context.Context, signupID int64, gameID *int64) error {
	if err := m.cfg().SetPickError; err != nil {
		return err
	}
	return m.FullRepository.SetPick(ctx, signupID, gameID)
}

func (m *Repository) SetSignupStatus(ctx context.Context, signupID int64, status models.Status) error {
	if err := m.cfg().SetSignupStatusError; err != nil {
		return err
	}
	return m.FullRepository.SetSignupStatus(ctx, signupID, status)
}

func (m *Repository) ResetSignup(ctx context.Context, signupID int64) error {
	if err := m.cfg().ResetSignupError; err != nil {
		return err
	}
	return m.FullRepository.ResetSignup(ctx, signupID)
}

// ===== Roll Methods =====

func (m *Repository) ListRolls(ctx context.Context, signupID int64) ([]models.Roll, error) {
	if err := m.cfg().ListRollsError; err != nil {
		return nil, err
	}
	return m.FullRepository.ListRolls(ctx, signupID)
}

func (m *Repository) GetRoll(ctx context.Context, id int64) (*models.Roll, error) {
	if err := m.cfg().GetRollError; err != nil {
		return nil, err
	}
	return m.FullRepository.GetRoll(ctx, id)
}

func (m *Repository) MaxRollSeq(ctx context.Context, signupID int64) (int, error) {
	if err := m.cfg().MaxRollSeqError; err != nil {
		return 0, err
	}
	return m.FullRepository.MaxRollSeq(ctx, signupID)
}

func (m *Repository) InsertRoll(ctx context.Context, roll models.Roll) (int64, error) {
	c := m.cfg()
	if err := c.InsertRollError; err != nil {
		return 0, err
	}
	if c.InsertRollConflicts > 0 {
		c.InsertRollConflicts--
		return 0, repository.ErrDuplicate
	}
	return m.FullRepository.InsertRoll(ctx, roll)
}

func (m *Repository) DeleteRoll(ctx context.Context, id int64) error {
	if err := m.cfg().DeleteRollError; err != nil {
		return err
	}
	return m.FullRepository.DeleteRoll(ctx, id)
}

func (m *Repository) DeleteRolls(ctx context.Context, signupID int64) error {
	if err := m.cfg().DeleteRollsError; err != nil {
		return err
	}
	return m.FullRepository.DeleteRolls(ctx, signupID)
}

// ===== Admin Methods =====

func (m *Repository) ClearTable(ctx context.Context, table string) error {
	if err := m.cfg().ClearTableError; err != nil {
		return err
	}
	return m.FullRepository.ClearTable(ctx, table)
}

// Ensure Repository implements FullRepository
var _ repository.FullRepository = (*Repository)(nil)
