package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/heatroll/internal/models"
)

// querier is the subset of *sql.DB and *sql.Tx the repository needs
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repository provides data access methods
type Repository struct {
	db   *sql.DB
	q    querier
	inTx bool
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// Single connection: sqlite serializes writers anyway, and every
	// transaction below runs on this one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := newWithDB(db)

	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

func newWithDB(db *sql.DB) *Repository {
	return &Repository{db: db, q: db}
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// WithTx runs fn inside a transaction. The repository passed to fn is bound
// to the transaction; fn must not use the outer repository. Calls nested in
// an existing transaction reuse it.
func (r *Repository) WithTx(ctx context.Context, fn func(FullRepository) error) error {
	if r.inTx {
		return fn(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Repository{db: r.db, q: tx, inTx: true}); err != nil {
		return err
	}
	return tx.Commit()
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS platforms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			abbreviation TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS heats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			series_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			pool_size INTEGER NOT NULL CHECK (pool_size > 0),
			UNIQUE(series_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS heat_platforms (
			heat_id INTEGER NOT NULL,
			platform_id INTEGER NOT NULL,
			PRIMARY KEY (heat_id, platform_id),
			FOREIGN KEY (heat_id) REFERENCES heats(id) ON DELETE CASCADE,
			FOREIGN KEY (platform_id) REFERENCES platforms(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			slug TEXT,
			cover_ref TEXT,
			release_date TEXT,
			release_ts INTEGER,
			has_western BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS game_platforms (
			game_id INTEGER NOT NULL,
			platform_id INTEGER NOT NULL,
			western BOOLEAN NOT NULL DEFAULT 0,
			PRIMARY KEY (game_id, platform_id),
			FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE,
			FOREIGN KEY (platform_id) REFERENCES platforms(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS signups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			heat_id INTEGER NOT NULL,
			participant_id TEXT NOT NULL,
			quotas TEXT,
			western_required INTEGER,
			pick_game_id INTEGER,
			status TEXT NOT NULL DEFAULT 'unresolved',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (heat_id) REFERENCES heats(id) ON DELETE CASCADE,
			FOREIGN KEY (pick_game_id) REFERENCES games(id) ON DELETE SET NULL,
			UNIQUE(heat_id, participant_id)
		)`,
		`CREATE TABLE IF NOT EXISTS rolls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			signup_id INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			platform_id INTEGER NOT NULL,
			game_id INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (signup_id) REFERENCES signups(id) ON DELETE CASCADE,
			FOREIGN KEY (platform_id) REFERENCES platforms(id),
			FOREIGN KEY (game_id) REFERENCES games(id),
			UNIQUE(signup_id, seq),
			UNIQUE(signup_id, game_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_game_platforms_platform ON game_platforms(platform_id, western)`,
		`CREATE INDEX IF NOT EXISTS idx_signups_participant ON signups(participant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_rolls_signup ON rolls(signup_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// isUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY constraint
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// placeholders returns "?, ?, ..." with n markers
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// ==================== Platform Methods ====================

// CreatePlatform inserts a platform and returns its id
func (r *Repository) CreatePlatform(ctx context.Context, name, abbreviation string) (int64, error) {
	result, err := r.q.ExecContext(ctx, `INSERT INTO platforms (name, abbreviation) VALUES (?, ?)`, name, abbreviation)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// ListPlatforms returns all platforms ordered by id
func (r *Repository) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, name, abbreviation FROM platforms ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var platforms []models.Platform
	for rows.Next() {
		var p models.Platform
		if err := rows.Scan(&p.ID, &p.Name, &p.Abbreviation); err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}

// ==================== Heat Methods ====================

// CreateHeat inserts a heat with its platform set
func (r *Repository) CreateHeat(ctx context.Context, heat models.Heat, platformIDs []int64) (int64, error) {
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO heats (series_id, position, name, start_date, end_date, pool_size)
		VALUES (?, ?, ?, ?, ?, ?)
	`, heat.SeriesID, heat.Position, heat.Name, heat.StartDate, heat.EndDate, heat.PoolSize)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, pid := range platformIDs {
		if _, err := r.q.ExecContext(ctx,
			`INSERT INTO heat_platforms (heat_id, platform_id) VALUES (?, ?)`, id, pid); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// GetHeat returns a heat with its platforms
func (r *Repository) GetHeat(ctx context.Context, id int64) (*models.Heat, error) {
	var h models.Heat
	err := r.q.QueryRowContext(ctx, `
		SELECT id, series_id, position, name, start_date, end_date, pool_size
		FROM heats WHERE id = ?
	`, id).Scan(&h.ID, &h.SeriesID, &h.Position, &h.Name, &h.StartDate, &h.EndDate, &h.PoolSize)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	platforms, err := r.heatPlatforms(ctx, h.ID)
	if err != nil {
		return nil, err
	}
	h.Platforms = platforms
	return &h, nil
}

func (r *Repository) heatPlatforms(ctx context.Context, heatID int64) ([]models.Platform, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT p.id, p.name, p.abbreviation
		FROM heat_platforms hp
		JOIN platforms p ON p.id = hp.platform_id
		WHERE hp.heat_id = ?
		ORDER BY p.id
	`, heatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	platforms := []models.Platform{}
	for rows.Next() {
		var p models.Platform
		if err := rows.Scan(&p.ID, &p.Name, &p.Abbreviation); err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}

// GetPriorHeat returns the heat immediately before position in the same
// series, or ErrNotFound when position is the first.
func (r *Repository) GetPriorHeat(ctx context.Context, seriesID int64, position int) (*models.Heat, error) {
	var id int64
	err := r.q.QueryRowContext(ctx, `
		SELECT id FROM heats
		WHERE series_id = ? AND position < ?
		ORDER BY position DESC
		LIMIT 1
	`, seriesID, position).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetHeat(ctx, id)
}

// ListHeats returns all heats ordered by series and position, without platforms
func (r *Repository) ListHeats(ctx context.Context) ([]models.Heat, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, series_id, position, name, start_date, end_date, pool_size
		FROM heats
		ORDER BY series_id, position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var heats []models.Heat
	for rows.Next() {
		var h models.Heat
		if err := rows.Scan(&h.ID, &h.SeriesID, &h.Position, &h.Name, &h.StartDate, &h.EndDate, &h.PoolSize); err != nil {
			return nil, err
		}
		heats = append(heats, h)
	}
	return heats, rows.Err()
}

// ==================== Game Methods ====================

// CreateGame inserts a game and its platform links. has_western is derived
// from the links.
func (r *Repository) CreateGame(ctx context.Context, game models.Game, platforms []models.GamePlatform) (int64, error) {
	hasWestern := false
	for _, gp := range platforms {
		hasWestern = hasWestern || gp.Western
	}

	result, err := r.q.ExecContext(ctx, `
		INSERT INTO games (name, slug, cover_ref, release_date, release_ts, has_western)
		VALUES (?, ?, ?, ?, ?, ?)
	`, game.Name, game.Slug, game.CoverRef, game.ReleaseDate, game.ReleaseTS, hasWestern)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, gp := range platforms {
		if _, err := r.q.ExecContext(ctx,
			`INSERT INTO game_platforms (game_id, platform_id, western) VALUES (?, ?, ?)`,
			id, gp.PlatformID, gp.Western); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// CountGames returns the number of games in the catalog
func (r *Repository) CountGames(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&count)
	return count, err
}

// GetGame returns a single game with its platform ids
func (r *Repository) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	games, err := r.GetGamesByIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	g, ok := games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

// GetGamesByIDs loads the given games keyed by id. Unknown ids are skipped.
func (r *Repository) GetGamesByIDs(ctx context.Context, ids []int64) (map[int64]*models.Game, error) {
	games := make(map[int64]*models.Game, len(ids))
	if len(ids) == 0 {
		return games, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT g.id, g.name, g.slug, g.cover_ref, g.release_date, g.release_ts, g.has_western, gp.platform_id
		FROM games g
		LEFT JOIN game_platforms gp ON gp.game_id = g.id
		WHERE g.id IN (`+placeholders(len(ids))+`)
		ORDER BY g.id, gp.platform_id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var g models.Game
		var slug, coverRef, releaseDate sql.NullString
		var releaseTS, platformID sql.NullInt64
		if err := rows.Scan(&g.ID, &g.Name, &slug, &coverRef, &releaseDate, &releaseTS, &g.HasWestern, &platformID); err != nil {
			return nil, err
		}

		existing, ok := games[g.ID]
		if !ok {
			g.Slug = slug.String
			g.CoverRef = coverRef.String
			g.ReleaseDate = releaseDate.String
			if releaseTS.Valid {
				ts := releaseTS.Int64
				g.ReleaseTS = &ts
			}
			existing = &g
			games[g.ID] = existing
		}
		if platformID.Valid {
			existing.PlatformIDs = append(existing.PlatformIDs, platformID.Int64)
		}
	}
	return games, rows.Err()
}

// ListEligibleGameIDs returns the ids of games on platformID, minus exclude.
// With westernOnly set, only games whose western flag is set for that
// specific platform qualify.
func (r *Repository) ListEligibleGameIDs(ctx context.Context, platformID int64, exclude []int64, westernOnly bool) ([]int64, error) {
	query := `SELECT game_id FROM game_platforms WHERE platform_id = ?`
	args := []any{platformID}
	if westernOnly {
		query += ` AND western = 1`
	}
	if len(exclude) > 0 {
		query += ` AND game_id NOT IN (` + placeholders(len(exclude)) + `)`
		for _, id := range exclude {
			args = append(args, id)
		}
	}
	query += ` ORDER BY game_id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ==================== Signup Methods ====================

const signupColumns = `id, heat_id, participant_id, quotas, western_required, pick_game_id, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSignup(row rowScanner) (*models.Signup, error) {
	var s models.Signup
	var quotas sql.NullString
	var westernRequired, pickGameID sql.NullInt64
	var status string
	if err := row.Scan(&s.ID, &s.HeatID, &s.ParticipantID, &quotas, &westernRequired, &pickGameID,
		&status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Status = models.Status(status)
	if quotas.Valid && quotas.String != "" {
		if err := json.Unmarshal([]byte(quotas.String), &s.Quotas); err != nil {
			return nil, err
		}
	}
	if westernRequired.Valid {
		w := int(westernRequired.Int64)
		s.WesternRequired = &w
	}
	if pickGameID.Valid {
		g := pickGameID.Int64
		s.PickGameID = &g
	}
	return &s, nil
}

// GetSignup returns the participant's signup for a heat
func (r *Repository) GetSignup(ctx context.Context, heatID int64, participantID string) (*models.Signup, error) {
	s, err := scanSignup(r.q.QueryRowContext(ctx,
		`SELECT `+signupColumns+` FROM signups WHERE heat_id = ? AND participant_id = ?`, heatID, participantID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return s, err
}

// GetSignupByID returns a signup by its id
func (r *Repository) GetSignupByID(ctx context.Context, id int64) (*models.Signup, error) {
	s, err := scanSignup(r.q.QueryRowContext(ctx, `SELECT `+signupColumns+` FROM signups WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return s, err
}

// ListSignups returns every signup for a heat ordered by id
func (r *Repository) ListSignups(ctx context.Context, heatID int64) ([]models.Signup, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+signupColumns+` FROM signups WHERE heat_id = ? ORDER BY id`, heatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signups []models.Signup
	for rows.Next() {
		s, err := scanSignup(rows)
		if err != nil {
			return nil, err
		}
		signups = append(signups, *s)
	}
	return signups, rows.Err()
}

// CreateSignup inserts an empty signup. Returns ErrDuplicate when the
// participant already has one for the heat.
func (r *Repository) CreateSignup(ctx context.Context, heatID int64, participantID string) (int64, error) {
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO signups (heat_id, participant_id) VALUES (?, ?)`, heatID, participantID)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return result.LastInsertId()
}

// LockQuotas stores the quotas and western target fixed by the first draw
func (r *Repository) LockQuotas(ctx context.Context, signupID int64, quotas map[int64]int, westernRequired int) error {
	b, err := json.Marshal(quotas)
	if err != nil {
		return err
	}
	return r.updateSignup(ctx, `quotas = ?, western_required = ?`, signupID, string(b), westernRequired)
}

// SetPick sets or clears (nil) the finalized pick
func (r *Repository) SetPick(ctx context.Context, signupID int64, gameID *int64) error {
	return r.updateSignup(ctx, `pick_game_id = ?`, signupID, gameID)
}

// SetSignupStatus updates the resolution status
func (r *Repository) SetSignupStatus(ctx context.Context, signupID int64, status models.Status) error {
	return r.updateSignup(ctx, `status = ?`, signupID, string(status))
}

// ResetSignup clears quotas, western target, pick and status. Rolls are
// deleted separately.
func (r *Repository) ResetSignup(ctx context.Context, signupID int64) error {
	return r.updateSignup(ctx, `quotas = NULL, western_required = NULL, pick_game_id = NULL, status = ?`,
		signupID, string(models.StatusUnresolved))
}

func (r *Repository) updateSignup(ctx context.Context, set string, signupID int64, args ...any) error {
	args = append(args, time.Now().UTC(), signupID)
	result, err := r.q.ExecContext(ctx, `UPDATE signups SET `+set+`, updated_at = ? WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ==================== Roll Methods ====================

// ListRolls returns a signup's rolls in sequence order with their games.
// Western is the per-(game, platform) flag of the platform the roll was drawn for.
func (r *Repository) ListRolls(ctx context.Context, signupID int64) ([]models.Roll, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT r.id, r.signup_id, r.seq, r.platform_id, r.game_id, r.created_at, COALESCE(gp.western, 0),
		       g.name, g.slug, g.cover_ref, g.release_date, g.release_ts, g.has_western
		FROM rolls r
		JOIN games g ON g.id = r.game_id
		LEFT JOIN game_platforms gp ON gp.game_id = r.game_id AND gp.platform_id = r.platform_id
		WHERE r.signup_id = ?
		ORDER BY r.seq
	`, signupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rolls := []models.Roll{}
	for rows.Next() {
		var roll models.Roll
		var g models.Game
		var slug, coverRef, releaseDate sql.NullString
		var releaseTS sql.NullInt64
		if err := rows.Scan(&roll.ID, &roll.SignupID, &roll.Seq, &roll.PlatformID, &roll.GameID, &roll.CreatedAt,
			&roll.Western, &g.Name, &slug, &coverRef, &releaseDate, &releaseTS, &g.HasWestern); err != nil {
			return nil, err
		}
		g.ID = roll.GameID
		g.Slug = slug.String
		g.CoverRef = coverRef.String
		g.ReleaseDate = releaseDate.String
		if releaseTS.Valid {
			ts := releaseTS.Int64
			g.ReleaseTS = &ts
		}
		roll.Game = &g
		rolls = append(rolls, roll)
	}
	return rolls, rows.Err()
}

// GetRoll returns a roll by id without its game
func (r *Repository) GetRoll(ctx context.Context, id int64) (*models.Roll, error) {
	var roll models.Roll
	err := r.q.QueryRowContext(ctx, `
		SELECT r.id, r.signup_id, r.seq, r.platform_id, r.game_id, r.created_at, COALESCE(gp.western, 0)
		FROM rolls r
		LEFT JOIN game_platforms gp ON gp.game_id = r.game_id AND gp.platform_id = r.platform_id
		WHERE r.id = ?
	`, id).Scan(&roll.ID, &roll.SignupID, &roll.Seq, &roll.PlatformID, &roll.GameID, &roll.CreatedAt, &roll.Western)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &roll, nil
}

// MaxRollSeq returns the highest sequence number for a signup, 0 if none
func (r *Repository) MaxRollSeq(ctx context.Context, signupID int64) (int, error) {
	var seq int
	err := r.q.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM rolls WHERE signup_id = ?`, signupID).Scan(&seq)
	return seq, err
}

// InsertRoll persists a roll. Returns ErrDuplicate when the sequence number
// is already taken and ErrDuplicateGame when the game is.
func (r *Repository) InsertRoll(ctx context.Context, roll models.Roll) (int64, error) {
	result, err := r.q.ExecContext(ctx, `
		INSERT INTO rolls (signup_id, seq, platform_id, game_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, roll.SignupID, roll.Seq, roll.PlatformID, roll.GameID, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "rolls.game_id") {
				return 0, ErrDuplicateGame
			}
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return result.LastInsertId()
}

// DeleteRoll removes a single roll
func (r *Repository) DeleteRoll(ctx context.Context, id int64) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM rolls WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRolls removes every roll of a signup
func (r *Repository) DeleteRolls(ctx context.Context, signupID int64) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM rolls WHERE signup_id = ?`, signupID)
	return err
}

// ==================== Stats Methods ====================

// GetHeatStats returns signup progress counters for one heat
func (r *Repository) GetHeatStats(ctx context.Context, heatID int64) (*models.HeatStats, error) {
	stats := &models.HeatStats{HeatID: heatID}

	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(pick_game_id),
		       COALESCE(SUM(CASE WHEN status != 'unresolved' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'resolved_success' THEN 1 ELSE 0 END), 0)
		FROM signups WHERE heat_id = ?
	`, heatID).Scan(&stats.Signups, &stats.Picks, &stats.Resolved, &stats.Succeeded)
	if err != nil {
		return nil, err
	}

	if err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM rolls r JOIN signups s ON s.id = r.signup_id WHERE s.heat_id = ?
	`, heatID).Scan(&stats.Rolls); err != nil {
		return nil, err
	}

	if err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT s.id FROM signups s
			JOIN heats h ON h.id = s.heat_id
			JOIN rolls r ON r.signup_id = s.id
			WHERE s.heat_id = ?
			GROUP BY s.id, h.pool_size
			HAVING COUNT(r.id) >= h.pool_size
		)
	`, heatID).Scan(&stats.PoolsFilled); err != nil {
		return nil, err
	}

	return stats, nil
}

// ==================== Database Management Methods ====================

// validTables defines which tables can be safely cleared
var validTables = map[string]bool{
	"rolls": true, "signups": true, "heats": true, "games": true, "platforms": true,
}

// ClearTable clears all data from a table.
// Only whitelisted tables can be cleared.
func (r *Repository) ClearTable(ctx context.Context, table string) error {
	if !validTables[table] {
		return ErrInvalidTable
	}
	_, err := r.q.ExecContext(ctx, "DELETE FROM "+table)
	return err
}
