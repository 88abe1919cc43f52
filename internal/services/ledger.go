package services

import (
	"context"

	"github.com/abrezinsky/heatroll/internal/engine"
	"github.com/abrezinsky/heatroll/internal/errors"
	"github.com/abrezinsky/heatroll/internal/logger"
	"github.com/abrezinsky/heatroll/internal/models"
	"github.com/abrezinsky/heatroll/internal/repository"
)

// Guarder evaluates the round guard against a (possibly transaction-bound) repository
type Guarder interface {
	Guard(ctx context.Context, repo GuardRepository, heat *models.Heat, participantID string) (engine.GuardResult, error)
}

// LedgerService owns signups and their roll history
type LedgerService struct {
	log         logger.Logger
	repo        repository.FullRepository
	guard       Guarder
	resolver    *EligibilityResolver
	rng         engine.Rand
	wheelSize   int
	broadcaster Broadcaster
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(log logger.Logger, repo repository.FullRepository, guard Guarder, resolver *EligibilityResolver, rng engine.Rand, wheelSize int) *LedgerService {
	if wheelSize <= 0 {
		wheelSize = engine.MaxWheelSlots
	}
	return &LedgerService{
		log:       log,
		repo:      repo,
		guard:     guard,
		resolver:  resolver,
		rng:       rng,
		wheelSize: wheelSize,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *LedgerService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// DrawRequest carries a participant's draw. Weights and WesternRequired are
// only read by the first draw of a signup.
type DrawRequest struct {
	HeatID          int64
	ParticipantID   string
	Weights         map[int64]float64
	WesternRequired int
}

// DrawResult is the persisted roll plus the wheel to reveal it with
type DrawResult struct {
	Roll               *models.Roll  `json:"roll"`
	Wheel              *models.Wheel `json:"wheel"`
	Signup             *SignupView   `json:"signup"`
	MustSatisfyWestern bool          `json:"must_satisfy_western"`
}

// SignupView is a signup with its rolls and derived counters
type SignupView struct {
	HeatID           int64          `json:"heat_id"`
	ParticipantID    string         `json:"participant_id"`
	PoolSize         int            `json:"pool_size"`
	Signup           *models.Signup `json:"signup"`
	Rolls            []models.Roll  `json:"rolls"`
	Remaining        map[int64]int  `json:"remaining,omitempty"`
	WesternSatisfied int            `json:"western_satisfied"`
}

func newSignupView(heat *models.Heat, participantID string, signup *models.Signup, rolls []models.Roll) *SignupView {
	if rolls == nil {
		rolls = []models.Roll{}
	}
	view := &SignupView{
		HeatID:        heat.ID,
		ParticipantID: participantID,
		PoolSize:      heat.PoolSize,
		Signup:        signup,
		Rolls:         rolls,
	}
	consumed, _, satisfied := tally(rolls)
	view.WesternSatisfied = satisfied
	if signup != nil && signup.QuotasLocked() {
		view.Remaining = engine.RemainingQuotas(signup.Quotas, consumed)
	}
	return view
}

// tally counts rolls per platform, collects drawn game ids and counts rolls
// that satisfy the western requirement.
func tally(rolls []models.Roll) (consumed map[int64]int, drawn []int64, western int) {
	consumed = make(map[int64]int)
	drawn = make([]int64, 0, len(rolls))
	for _, r := range rolls {
		consumed[r.PlatformID]++
		drawn = append(drawn, r.GameID)
		if r.Western {
			western++
		}
	}
	return consumed, drawn, western
}

// Draw runs one draw for the participant: guard, quota lock on the first
// draw, platform pick, eligibility, wheel, and a sequenced insert.
func (s *LedgerService) Draw(ctx context.Context, req DrawRequest) (*DrawResult, error) {
	var result *DrawResult
	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		heat, err := s.checkGuard(ctx, tx, req.HeatID, req.ParticipantID)
		if err != nil {
			return err
		}

		signup, err := s.getOrCreateSignup(ctx, tx, heat.ID, req.ParticipantID)
		if err != nil {
			return err
		}

		rolls, err := tx.ListRolls(ctx, signup.ID)
		if err != nil {
			return err
		}
		if len(rolls) >= heat.PoolSize {
			return errors.QuotaMismatchf("pool is full: %d of %d games drawn", len(rolls), heat.PoolSize)
		}

		if !signup.QuotasLocked() {
			if err := s.lockQuotas(ctx, tx, heat, signup, req); err != nil {
				return err
			}
		}

		quotas := engine.Quotas(signup.Quotas)
		consumed, drawn, satisfied := tally(rolls)
		target := 0
		if signup.WesternRequired != nil {
			target = *signup.WesternRequired
		}
		mustWestern := engine.MustSatisfyWestern(target, satisfied, heat.PoolSize, len(rolls))

		platformID, ok := engine.PickPlatform(s.rng, quotas, consumed)
		if !ok {
			return errors.QuotaMismatch("no quota remaining")
		}

		eligible, err := s.resolver.Resolve(ctx, tx, quotas, consumed, drawn, mustWestern)
		if err != nil {
			return err
		}
		candidates := eligible[platformID]
		if len(candidates) == 0 {
			if mustWestern {
				return errors.NoEligibleItemsf("no western releases left on platform %d", platformID)
			}
			return errors.NoEligibleItemsf("no eligible games left on platform %d", platformID)
		}
		gameID := candidates[s.rng.IntN(len(candidates))]

		wheel, err := engine.BuildWheel(s.rng, engine.WheelInput{
			ChosenPlatform: platformID,
			ChosenGame:     gameID,
			Eligible:       eligible,
			Remaining:      engine.RemainingQuotas(quotas, consumed),
			MaxSlots:       s.wheelSize,
		})
		if err != nil {
			return err
		}

		roll := models.Roll{SignupID: signup.ID, PlatformID: platformID, GameID: gameID}
		if err := s.insertRoll(ctx, tx, &roll); err != nil {
			return err
		}
		if err := s.labelWheel(ctx, tx, wheel); err != nil {
			return err
		}

		view, err := s.loadView(ctx, tx, heat, signup.ID, req.ParticipantID)
		if err != nil {
			return err
		}
		for i := range view.Rolls {
			if view.Rolls[i].ID == roll.ID {
				roll = view.Rolls[i]
				break
			}
		}

		result = &DrawResult{Roll: &roll, Wheel: wheel, Signup: view, MustSatisfyWestern: mustWestern}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Roll recorded", "heat_id", req.HeatID, "participant", req.ParticipantID,
		"seq", result.Roll.Seq, "platform_id", result.Roll.PlatformID, "game_id", result.Roll.GameID,
		"western_forced", result.MustSatisfyWestern)
	s.broadcast(models.EventRollCreated, models.LedgerEvent{
		HeatID:        req.HeatID,
		SignupID:      result.Roll.SignupID,
		ParticipantID: req.ParticipantID,
		Roll:          result.Roll,
	})
	return result, nil
}

// lockQuotas normalizes the request weights over the heat's platforms and
// stores them with the clamped western target.
func (s *LedgerService) lockQuotas(ctx context.Context, tx repository.FullRepository, heat *models.Heat, signup *models.Signup, req DrawRequest) error {
	onHeat := make(map[int64]bool, len(heat.Platforms))
	for _, pid := range heat.PlatformIDs() {
		onHeat[pid] = true
	}
	for pid := range req.Weights {
		if !onHeat[pid] {
			return errors.QuotaMismatchf("platform %d is not part of heat %d", pid, heat.ID)
		}
	}

	weights := make([]engine.PlatformWeight, 0, len(heat.Platforms))
	for _, pid := range heat.PlatformIDs() {
		w, ok := req.Weights[pid]
		if !ok {
			w = 1
		}
		weights = append(weights, engine.PlatformWeight{PlatformID: pid, Weight: w})
	}

	quotas, err := engine.NormalizeQuotas(weights, heat.PoolSize)
	if err != nil {
		return err
	}
	western := min(max(req.WesternRequired, 0), heat.PoolSize)

	if err := tx.LockQuotas(ctx, signup.ID, quotas, western); err != nil {
		return err
	}
	signup.Quotas = quotas
	signup.WesternRequired = &western

	s.log.Info("Quotas locked", "signup_id", signup.ID, "quotas", quotas, "western_required", western)
	return nil
}

// insertRoll assigns max(seq)+1 and inserts. A duplicate sequence is retried
// once with a fresh maximum; a second one is a SequenceConflict. A repeated
// game is never retried.
func (s *LedgerService) insertRoll(ctx context.Context, tx repository.FullRepository, roll *models.Roll) error {
	err := s.tryInsertRoll(ctx, tx, roll)
	if err == repository.ErrDuplicateGame {
		return errors.InvariantViolationf("game %d already drawn for signup %d", roll.GameID, roll.SignupID)
	}
	if err == repository.ErrDuplicate {
		s.log.Warn("Roll sequence conflict, retrying", "signup_id", roll.SignupID, "seq", roll.Seq)
		err = s.tryInsertRoll(ctx, tx, roll)
		if err == repository.ErrDuplicate {
			return errors.SequenceConflict(err)
		}
	}
	return err
}

func (s *LedgerService) tryInsertRoll(ctx context.Context, tx repository.FullRepository, roll *models.Roll) error {
	maxSeq, err := tx.MaxRollSeq(ctx, roll.SignupID)
	if err != nil {
		return err
	}
	roll.Seq = maxSeq + 1
	id, err := tx.InsertRoll(ctx, *roll)
	if err != nil {
		return err
	}
	roll.ID = id
	return nil
}

// labelWheel fills in game names and cover refs for display
func (s *LedgerService) labelWheel(ctx context.Context, tx repository.FullRepository, wheel *models.Wheel) error {
	ids := make([]int64, len(wheel.Slots))
	for i, slot := range wheel.Slots {
		ids[i] = slot.GameID
	}
	games, err := tx.GetGamesByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range wheel.Slots {
		if g, ok := games[wheel.Slots[i].GameID]; ok {
			wheel.Slots[i].Name = g.Name
			wheel.Slots[i].CoverRef = g.CoverRef
		}
	}
	return nil
}

// Veto deletes one of the participant's rolls. Sequence numbers and quotas
// are left untouched.
func (s *LedgerService) Veto(ctx context.Context, heatID int64, participantID string, rollID int64) (*SignupView, error) {
	var view *SignupView
	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		heat, signup, err := s.openSignup(ctx, tx, heatID, participantID)
		if err != nil {
			return err
		}

		roll, err := tx.GetRoll(ctx, rollID)
		if err != nil {
			return notFound(err, "roll %d not found", rollID)
		}
		if roll.SignupID != signup.ID {
			return errors.NotFoundf("roll %d not found", rollID)
		}
		if signup.PickGameID != nil && *signup.PickGameID == roll.GameID {
			return errors.Conflictf("roll %d holds the finalized pick; undo the pick first", rollID)
		}

		if err := tx.DeleteRoll(ctx, rollID); err != nil {
			return err
		}
		view, err = s.loadView(ctx, tx, heat, signup.ID, participantID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Roll vetoed", "heat_id", heatID, "participant", participantID, "roll_id", rollID)
	s.broadcast(models.EventRollVetoed, models.LedgerEvent{
		HeatID:        heatID,
		SignupID:      view.Signup.ID,
		ParticipantID: participantID,
		RollID:        rollID,
	})
	return view, nil
}

// FinalizePick commits the participant to the game of one of their rolls.
// Re-selecting the current pick is a no-op; selecting another roll overwrites.
func (s *LedgerService) FinalizePick(ctx context.Context, heatID int64, participantID string, rollID int64) (*SignupView, error) {
	var view *SignupView
	changed := false
	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		heat, signup, err := s.openSignup(ctx, tx, heatID, participantID)
		if err != nil {
			return err
		}

		rolls, err := tx.ListRolls(ctx, signup.ID)
		if err != nil {
			return err
		}
		if len(rolls) < heat.PoolSize {
			return errors.Validationf("pool is not full: %d of %d games drawn", len(rolls), heat.PoolSize)
		}

		roll, err := tx.GetRoll(ctx, rollID)
		if err != nil {
			return notFound(err, "roll %d not found", rollID)
		}
		if roll.SignupID != signup.ID {
			return errors.InvariantViolationf("roll %d belongs to another signup", rollID)
		}

		if signup.PickGameID == nil || *signup.PickGameID != roll.GameID {
			gameID := roll.GameID
			if err := tx.SetPick(ctx, signup.ID, &gameID); err != nil {
				return err
			}
			changed = true
		}

		view, err = s.loadView(ctx, tx, heat, signup.ID, participantID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("Pick finalized", "heat_id", heatID, "participant", participantID, "game_id", *view.Signup.PickGameID)
		s.broadcast(models.EventPickChanged, models.LedgerEvent{
			HeatID:        heatID,
			SignupID:      view.Signup.ID,
			ParticipantID: participantID,
			PickGameID:    view.Signup.PickGameID,
		})
	}
	return view, nil
}

// UndoPick clears the finalized pick
func (s *LedgerService) UndoPick(ctx context.Context, heatID int64, participantID string) (*SignupView, error) {
	var view *SignupView
	changed := false
	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		heat, signup, err := s.openSignup(ctx, tx, heatID, participantID)
		if err != nil {
			return err
		}

		if signup.PickGameID != nil {
			if err := tx.SetPick(ctx, signup.ID, nil); err != nil {
				return err
			}
			changed = true
		}

		view, err = s.loadView(ctx, tx, heat, signup.ID, participantID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("Pick cleared", "heat_id", heatID, "participant", participantID)
		s.broadcast(models.EventPickChanged, models.LedgerEvent{
			HeatID:        heatID,
			SignupID:      view.Signup.ID,
			ParticipantID: participantID,
		})
	}
	return view, nil
}

// SetStatus records the outcome of the heat. A terminal status needs a
// finalized pick and can only be replaced through an admin reset.
func (s *LedgerService) SetStatus(ctx context.Context, heatID int64, participantID string, status models.Status) (*SignupView, error) {
	if !status.Valid() {
		return nil, errors.Validationf("invalid status %q", status)
	}

	var view *SignupView
	changed := false
	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		heat, err := s.checkGuard(ctx, tx, heatID, participantID)
		if err != nil {
			return err
		}
		signup, err := s.getOrCreateSignup(ctx, tx, heat.ID, participantID)
		if err != nil {
			return err
		}

		if signup.Status != status {
			if signup.Status.Terminal() {
				return errors.PreconditionFailed(errors.ReasonSignupResolved,
					"signup is already resolved; an admin reset is required to change it")
			}
			if status.Terminal() && signup.PickGameID == nil {
				return errors.Validation("finalize a pick before resolving the heat")
			}
			if err := tx.SetSignupStatus(ctx, signup.ID, status); err != nil {
				return err
			}
			changed = true
		}

		view, err = s.loadView(ctx, tx, heat, signup.ID, participantID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("Status updated", "heat_id", heatID, "participant", participantID, "status", status)
		s.broadcast(models.EventStatusChanged, models.LedgerEvent{
			HeatID:        heatID,
			SignupID:      view.Signup.ID,
			ParticipantID: participantID,
			Status:        status,
		})
	}
	return view, nil
}

// AdminReset deletes every roll of a signup and clears its quotas, western
// target, pick and status. It bypasses the round guard; callers must enforce
// admin privileges.
func (s *LedgerService) AdminReset(ctx context.Context, signupID int64) (*SignupView, error) {
	var view *SignupView
	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		signup, err := tx.GetSignupByID(ctx, signupID)
		if err != nil {
			return notFound(err, "signup %d not found", signupID)
		}
		heat, err := tx.GetHeat(ctx, signup.HeatID)
		if err != nil {
			return err
		}

		if err := tx.DeleteRolls(ctx, signupID); err != nil {
			return err
		}
		if err := tx.ResetSignup(ctx, signupID); err != nil {
			return err
		}

		view, err = s.loadView(ctx, tx, heat, signupID, signup.ParticipantID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Signup reset", "signup_id", signupID, "heat_id", view.HeatID, "participant", view.ParticipantID)
	s.broadcast(models.EventSignupReset, models.LedgerEvent{
		HeatID:        view.HeatID,
		SignupID:      signupID,
		ParticipantID: view.ParticipantID,
		Status:        models.StatusUnresolved,
	})
	return view, nil
}

// GetSignup returns the participant's signup and rolls. It is allowed in any
// guard state; Signup is nil before the participant's first interaction.
func (s *LedgerService) GetSignup(ctx context.Context, heatID int64, participantID string) (*SignupView, error) {
	heat, err := s.repo.GetHeat(ctx, heatID)
	if err != nil {
		return nil, notFound(err, "heat %d not found", heatID)
	}

	signup, err := s.repo.GetSignup(ctx, heatID, participantID)
	if err == repository.ErrNotFound {
		return newSignupView(heat, participantID, nil, nil), nil
	}
	if err != nil {
		return nil, err
	}

	rolls, err := s.repo.ListRolls(ctx, signup.ID)
	if err != nil {
		return nil, err
	}
	return newSignupView(heat, participantID, signup, rolls), nil
}

// ListSignups returns every signup of a heat
func (s *LedgerService) ListSignups(ctx context.Context, heatID int64) ([]models.Signup, error) {
	if _, err := s.repo.GetHeat(ctx, heatID); err != nil {
		return nil, notFound(err, "heat %d not found", heatID)
	}
	return s.repo.ListSignups(ctx, heatID)
}

// checkGuard loads the heat and rejects unless the guard is open
func (s *LedgerService) checkGuard(ctx context.Context, tx repository.FullRepository, heatID int64, participantID string) (*models.Heat, error) {
	if participantID == "" {
		return nil, errors.InvalidInput("participant id is required")
	}
	heat, err := tx.GetHeat(ctx, heatID)
	if err != nil {
		return nil, notFound(err, "heat %d not found", heatID)
	}
	guard, err := s.guard.Guard(ctx, tx, heat, participantID)
	if err != nil {
		return nil, err
	}
	if err := guard.Err(); err != nil {
		return nil, err
	}
	return heat, nil
}

// openSignup passes the guard and returns an existing, unresolved signup
func (s *LedgerService) openSignup(ctx context.Context, tx repository.FullRepository, heatID int64, participantID string) (*models.Heat, *models.Signup, error) {
	heat, err := s.checkGuard(ctx, tx, heatID, participantID)
	if err != nil {
		return nil, nil, err
	}
	signup, err := tx.GetSignup(ctx, heatID, participantID)
	if err != nil {
		return nil, nil, notFound(err, "no signup for heat %d", heatID)
	}
	if signup.Status.Terminal() {
		return nil, nil, errors.PreconditionFailed(errors.ReasonSignupResolved, "signup is already resolved")
	}
	return heat, signup, nil
}

// getOrCreateSignup is idempotent under a concurrent create: losing the
// unique race re-reads the winner's row.
func (s *LedgerService) getOrCreateSignup(ctx context.Context, tx repository.FullRepository, heatID int64, participantID string) (*models.Signup, error) {
	signup, err := tx.GetSignup(ctx, heatID, participantID)
	if err != repository.ErrNotFound {
		return signup, err
	}

	if _, err := tx.CreateSignup(ctx, heatID, participantID); err != nil {
		if err != repository.ErrDuplicate {
			return nil, err
		}
		s.log.Debug("Signup created concurrently, re-reading", "heat_id", heatID, "participant", participantID)
	}
	return tx.GetSignup(ctx, heatID, participantID)
}

func (s *LedgerService) loadView(ctx context.Context, tx repository.FullRepository, heat *models.Heat, signupID int64, participantID string) (*SignupView, error) {
	signup, err := tx.GetSignupByID(ctx, signupID)
	if err != nil {
		return nil, err
	}
	rolls, err := tx.ListRolls(ctx, signupID)
	if err != nil {
		return nil, err
	}
	return newSignupView(heat, participantID, signup, rolls), nil
}

func (s *LedgerService) broadcast(eventType string, ev models.LedgerEvent) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastLedgerEvent(eventType, ev)
	}
}
