package handlers

import "github.com/abrezinsky/heatroll/internal/models"

// DrawRequest is the body of a draw. Weights are keyed by platform id and
// are only read by a signup's first draw.
type DrawRequest struct {
	Weights         map[int64]float64 `json:"weights"`
	WesternRequired int               `json:"western_required"`
}

// PickRequest selects the roll to finalize as the pick
type PickRequest struct {
	RollID int64 `json:"roll_id"`
}

// StatusRequest sets a signup's resolution status
type StatusRequest struct {
	Status models.Status `json:"status"`
}

// LoginRequest is the JSON form of an admin login
type LoginRequest struct {
	Password string `json:"password"`
}

// DatabaseResetRequest represents a request to reset database tables
type DatabaseResetRequest struct {
	Tables []string `json:"tables"`
}
