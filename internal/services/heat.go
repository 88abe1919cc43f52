package services

import (
	"context"
	"fmt"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/heatroll/internal/engine"
	"github.com/abrezinsky/heatroll/internal/errors"
	"github.com/abrezinsky/heatroll/internal/logger"
	"github.com/abrezinsky/heatroll/internal/models"
	"github.com/abrezinsky/heatroll/internal/repository"
)

// GuardRepository defines the reads the round guard needs
type GuardRepository interface {
	GetPriorHeat(ctx context.Context, seriesID int64, position int) (*models.Heat, error)
	GetSignup(ctx context.Context, heatID int64, participantID string) (*models.Signup, error)
}

// HeatServiceRepository defines the repository methods needed by HeatService
type HeatServiceRepository interface {
	repository.HeatRepository
	GuardRepository
}

// HeatService handles heat lookup and window evaluation
type HeatService struct {
	log     logger.Logger
	repo    HeatServiceRepository
	loc     *time.Location
	baseURL string
	now     func() time.Time
}

// NewHeatService creates a new HeatService. Heat dates are calendar days in loc.
func NewHeatService(log logger.Logger, repo HeatServiceRepository, loc *time.Location, baseURL string) *HeatService {
	if loc == nil {
		loc = time.UTC
	}
	return &HeatService{
		log:     log,
		repo:    repo,
		loc:     loc,
		baseURL: baseURL,
		now:     time.Now,
	}
}

// SetClock replaces the time source
func (s *HeatService) SetClock(now func() time.Time) {
	s.now = now
}

// HeatState is a heat together with its guard state for one participant
type HeatState struct {
	Heat  *models.Heat       `json:"heat"`
	Guard engine.GuardResult `json:"guard"`
}

// GetHeat returns a heat with its platforms
func (s *HeatService) GetHeat(ctx context.Context, heatID int64) (*models.Heat, error) {
	heat, err := s.repo.GetHeat(ctx, heatID)
	if err != nil {
		return nil, notFound(err, "heat %d not found", heatID)
	}
	return heat, nil
}

// ListHeats returns all heats
func (s *HeatService) ListHeats(ctx context.Context) ([]models.Heat, error) {
	return s.repo.ListHeats(ctx)
}

// GetHeatState evaluates the guard for a participant without mutating anything
func (s *HeatService) GetHeatState(ctx context.Context, heatID int64, participantID string) (*HeatState, error) {
	heat, err := s.GetHeat(ctx, heatID)
	if err != nil {
		return nil, err
	}
	guard, err := s.Guard(ctx, s.repo, heat, participantID)
	if err != nil {
		return nil, err
	}
	return &HeatState{Heat: heat, Guard: guard}, nil
}

// Guard evaluates the round guard for participantID using repo, which may be
// bound to the caller's transaction.
func (s *HeatService) Guard(ctx context.Context, repo GuardRepository, heat *models.Heat, participantID string) (engine.GuardResult, error) {
	if repo == nil {
		repo = s.repo
	}

	in := engine.GuardInput{
		Now:       s.now(),
		Location:  s.loc,
		StartDate: heat.StartDate,
		EndDate:   heat.EndDate,
	}

	prior, err := repo.GetPriorHeat(ctx, heat.SeriesID, heat.Position)
	switch {
	case err == repository.ErrNotFound:
	case err != nil:
		return engine.GuardResult{}, err
	default:
		in.HasPrior = true
		signup, err := repo.GetSignup(ctx, prior.ID, participantID)
		if err != nil && err != repository.ErrNotFound {
			return engine.GuardResult{}, err
		}
		in.PriorResolved = signup != nil && signup.Status.Terminal()
	}

	return engine.EvaluateGuard(in)
}

// GetStats returns signup progress for a heat
func (s *HeatService) GetStats(ctx context.Context, heatID int64) (*models.HeatStats, error) {
	if _, err := s.GetHeat(ctx, heatID); err != nil {
		return nil, err
	}
	return s.repo.GetHeatStats(ctx, heatID)
}

// GenerateHeatQR renders a PNG QR code linking to the heat
func (s *HeatService) GenerateHeatQR(ctx context.Context, heatID int64) ([]byte, error) {
	if _, err := s.GetHeat(ctx, heatID); err != nil {
		return nil, err
	}
	if s.baseURL == "" {
		return nil, errors.Validation("base url not configured")
	}
	heatURL := fmt.Sprintf("%s/heats/%d", s.baseURL, heatID)
	return qrcode.Encode(heatURL, qrcode.Medium, 256)
}
