package services

import (
	"context"

	"github.com/abrezinsky/heatroll/internal/models"
)

// HeatServicer defines the interface for heat operations
type HeatServicer interface {
	GetHeat(ctx context.Context, heatID int64) (*models.Heat, error)
	ListHeats(ctx context.Context) ([]models.Heat, error)
	GetHeatState(ctx context.Context, heatID int64, participantID string) (*HeatState, error)
	GetStats(ctx context.Context, heatID int64) (*models.HeatStats, error)
	GenerateHeatQR(ctx context.Context, heatID int64) ([]byte, error)
}

// LedgerServicer defines the interface for signup and roll operations
type LedgerServicer interface {
	Draw(ctx context.Context, req DrawRequest) (*DrawResult, error)
	Veto(ctx context.Context, heatID int64, participantID string, rollID int64) (*SignupView, error)
	FinalizePick(ctx context.Context, heatID int64, participantID string, rollID int64) (*SignupView, error)
	UndoPick(ctx context.Context, heatID int64, participantID string) (*SignupView, error)
	SetStatus(ctx context.Context, heatID int64, participantID string, status models.Status) (*SignupView, error)
	AdminReset(ctx context.Context, signupID int64) (*SignupView, error)
	GetSignup(ctx context.Context, heatID int64, participantID string) (*SignupView, error)
	ListSignups(ctx context.Context, heatID int64) ([]models.Signup, error)
	SetBroadcaster(b Broadcaster)
}

// CatalogServicer defines the interface for catalog operations
type CatalogServicer interface {
	ListPlatforms(ctx context.Context) ([]models.Platform, error)
	GetGame(ctx context.Context, id int64) (*models.Game, error)
	GetCover(ctx context.Context, gameID int64) (*CoverData, error)
	SeedMockData(ctx context.Context) (*SeedResult, error)
	ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error)
}

// Broadcaster defines the interface for pushing ledger events to clients
type Broadcaster interface {
	BroadcastLedgerEvent(eventType string, payload interface{})
}

// Ensure concrete types implement interfaces
var (
	_ HeatServicer    = (*HeatService)(nil)
	_ LedgerServicer  = (*LedgerService)(nil)
	_ CatalogServicer = (*CatalogService)(nil)
)
