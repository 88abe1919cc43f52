package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/abrezinsky/heatroll/internal/errors"
	"github.com/abrezinsky/heatroll/internal/logger"
	"github.com/abrezinsky/heatroll/internal/models"
	"github.com/abrezinsky/heatroll/internal/repository"
	"github.com/abrezinsky/heatroll/pkg/catalog"
)

// CatalogService handles platforms, games and their covers
type CatalogService struct {
	log    logger.Logger
	repo   repository.FullRepository
	client catalog.Client
	loc    *time.Location
	now    func() time.Time
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(log logger.Logger, repo repository.FullRepository, client catalog.Client, loc *time.Location) *CatalogService {
	if loc == nil {
		loc = time.UTC
	}
	return &CatalogService{
		log:    log,
		repo:   repo,
		client: client,
		loc:    loc,
		now:    time.Now,
	}
}

// SetClock replaces the time source used to date seeded heats
func (s *CatalogService) SetClock(now func() time.Time) {
	s.now = now
}

// CoverData is a cover image ready to serve
type CoverData struct {
	Data        []byte
	ContentType string
}

// SeedResult reports what SeedMockData created
type SeedResult struct {
	Platforms int     `json:"platforms"`
	Games     int     `json:"games"`
	Heats     []int64 `json:"heats"`
}

// ResetTablesResult contains the result of a database reset
type ResetTablesResult struct {
	Tables  []string
	Message string
}

// tableOrder lists resettable tables children first
var tableOrder = []string{"rolls", "signups", "heats", "games", "platforms"}

// ListPlatforms returns all platforms
func (s *CatalogService) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	return s.repo.ListPlatforms(ctx)
}

// GetGame returns a game with its platform ids
func (s *CatalogService) GetGame(ctx context.Context, id int64) (*models.Game, error) {
	game, err := s.repo.GetGame(ctx, id)
	if err != nil {
		return nil, notFound(err, "game %d not found", id)
	}
	return game, nil
}

// GetCover fetches a game's cover from the catalog
func (s *CatalogService) GetCover(ctx context.Context, gameID int64) (*CoverData, error) {
	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.CoverRef == "" {
		return nil, errors.NotFoundf("game %d has no cover", gameID)
	}

	cover, err := s.client.FetchCover(ctx, game.CoverRef)
	if stderrors.Is(err, catalog.ErrCoverNotFound) {
		return nil, errors.NotFoundf("cover %s not found", game.CoverRef)
	}
	if err != nil {
		s.log.Warn("Cover fetch failed", "game_id", gameID, "cover_ref", game.CoverRef, "error", err)
		return nil, err
	}
	return &CoverData{Data: cover.Data, ContentType: cover.ContentType}, nil
}

type mockGame struct {
	name    string
	cover   string
	release string
	western bool
}

type mockPlatform struct {
	name  string
	abbr  string
	games []mockGame
}

func mockCatalog() []mockPlatform {
	return []mockPlatform{
		{"Nintendo Entertainment System", "NES", []mockGame{
			{"Blaster Master", "co1nes01", "1988-11-01", true},
			{"Crystalis", "co1nes02", "1990-07-01", true},
			{"Faxanadu", "co1nes03", "1989-08-01", true},
			{"Gimmick!", "co1nes04", "1992-01-31", false},
			{"Little Samson", "co1nes05", "1992-06-26", true},
			{"Kabuki Quantum Fighter", "co1nes06", "1990-12-01", true},
			{"Moon Crystal", "co1nes07", "1992-08-28", false},
			{"Shatterhand", "co1nes08", "1991-12-01", true},
			{"StarTropics", "co1nes09", "1990-12-01", true},
			{"Vice: Project Doom", "co1nes10", "1991-11-01", true},
		}},
		{"Super Nintendo Entertainment System", "SNES", []mockGame{
			{"ActRaiser", "co1sfc01", "1990-12-16", true},
			{"Demon's Crest", "co1sfc02", "1994-10-21", true},
			{"Front Mission", "co1sfc03", "1995-02-24", false},
			{"Illusion of Gaia", "co1sfc04", "1993-11-27", true},
			{"Terranigma", "co1sfc05", "1995-10-20", true},
			{"Pocky & Rocky", "co1sfc06", "1992-12-22", true},
			{"Rockman & Forte", "co1sfc07", "1998-04-24", false},
			{"Soul Blazer", "co1sfc08", "1992-01-31", true},
			{"Wild Guns", "co1sfc09", "1994-08-12", true},
			{"Umihara Kawase", "co1sfc10", "1994-12-23", false},
		}},
		{"Sega Genesis", "GEN", []mockGame{
			{"Alisia Dragoon", "co1gen01", "1992-04-24", true},
			{"Gunstar Heroes", "co1gen02", "1993-09-09", true},
			{"Landstalker", "co1gen03", "1992-10-30", true},
			{"Ristar", "co1gen04", "1995-02-16", true},
			{"Rent-A-Hero", "co1gen05", "1991-09-20", false},
			{"Shinobi III", "co1gen06", "1993-07-23", true},
			{"Sparkster", "co1gen07", "1994-09-15", true},
			{"Yu Yu Hakusho Makyou Toitsusen", "co1gen08", "1994-09-30", false},
		}},
		{"Famicom Disk System", "FDS", []mockGame{
			{"Akumajou Dracula", "co1fds01", "1986-09-26", false},
			{"Ai Senshi Nicol", "co1fds02", "1987-04-14", false},
			{"Bio Miracle Bokutte Upa", "co1fds03", "1988-04-19", false},
			{"Nazo no Murasame Jou", "co1fds04", "1986-04-14", false},
			{"Yume Koujou: Doki Doki Panic", "co1fds05", "1987-07-10", false},
		}},
	}
}

// SeedMockData fills an empty catalog with platforms, games and a series of
// three consecutive heats starting the current week.
func (s *CatalogService) SeedMockData(ctx context.Context) (*SeedResult, error) {
	count, err := s.repo.CountGames(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCatalogSeeded
	}

	result := &SeedResult{}
	err = s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		var platformIDs []int64
		for _, p := range mockCatalog() {
			pid, err := tx.CreatePlatform(ctx, p.name, p.abbr)
			if err != nil {
				return fmt.Errorf("failed to create platform %s: %w", p.abbr, err)
			}
			platformIDs = append(platformIDs, pid)
			result.Platforms++

			for _, g := range p.games {
				game := models.Game{
					Name:        g.name,
					Slug:        slugify(g.name),
					CoverRef:    g.cover,
					ReleaseDate: g.release,
				}
				if ts, err := time.Parse("2006-01-02", g.release); err == nil {
					unix := ts.Unix()
					game.ReleaseTS = &unix
				}
				if _, err := tx.CreateGame(ctx, game, []models.GamePlatform{{PlatformID: pid, Western: g.western}}); err != nil {
					return fmt.Errorf("failed to create game %q: %w", g.name, err)
				}
				result.Games++
			}
		}

		start := startOfWeek(s.now().In(s.loc))
		heats := []struct {
			pool      int
			platforms []int64
		}{
			{5, platformIDs[:2]},
			{5, platformIDs[1:3]},
			{4, platformIDs},
		}
		for i, h := range heats {
			from := start.AddDate(0, 0, 7*i)
			heat := models.Heat{
				SeriesID:  1,
				Position:  i + 1,
				Name:      fmt.Sprintf("Heat %d", i+1),
				StartDate: from.Format("2006-01-02"),
				EndDate:   from.AddDate(0, 0, 6).Format("2006-01-02"),
				PoolSize:  h.pool,
			}
			id, err := tx.CreateHeat(ctx, heat, h.platforms)
			if err != nil {
				return fmt.Errorf("failed to create heat %d: %w", i+1, err)
			}
			result.Heats = append(result.Heats, id)
		}
		return nil
	})
	if err != nil {
		s.log.Error("Seeding mock data failed", "error", err)
		return nil, err
	}

	s.log.Info("Seeded mock data", "platforms", result.Platforms, "games", result.Games, "heats", len(result.Heats))
	return result, nil
}

// startOfWeek returns the Monday on or before t
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ResetTables validates and clears the specified tables. Clearing games or
// platforms also clears rolls, which reference both.
func (s *CatalogService) ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error) {
	if len(tables) == 0 {
		return nil, ErrNoTablesSpecified
	}

	requested := make(map[string]bool, len(tables))
	for _, table := range tables {
		if !containsTable(tableOrder, table) {
			return nil, &InvalidTableError{Table: table}
		}
		requested[table] = true
	}
	if requested["games"] || requested["platforms"] {
		requested["rolls"] = true
	}

	var tablesToReset []string
	for _, table := range tableOrder {
		if requested[table] {
			tablesToReset = append(tablesToReset, table)
		}
	}

	err := s.repo.WithTx(ctx, func(tx repository.FullRepository) error {
		for _, table := range tablesToReset {
			if err := tx.ClearTable(ctx, table); err != nil {
				if err == repository.ErrInvalidTable {
					return &InvalidTableError{Table: table}
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Tables reset", "tables", tablesToReset)
	return &ResetTablesResult{
		Tables:  tablesToReset,
		Message: "Successfully deleted data from tables",
	}, nil
}

func containsTable(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
