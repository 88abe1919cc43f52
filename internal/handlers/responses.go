package handlers

import "github.com/abrezinsky/heatroll/internal/models"

// HeatListResponse wraps the heat list
type HeatListResponse struct {
	Heats []models.Heat `json:"heats"`
}

// PlatformListResponse wraps the platform list
type PlatformListResponse struct {
	Platforms []models.Platform `json:"platforms"`
}

// SignupListResponse wraps the signups of one heat
type SignupListResponse struct {
	HeatID  int64           `json:"heat_id"`
	Signups []models.Signup `json:"signups"`
}

// SeedResponse reports what seeding created
type SeedResponse struct {
	Message   string  `json:"message"`
	Platforms int     `json:"platforms"`
	Games     int     `json:"games"`
	HeatIDs   []int64 `json:"heat_ids"`
}

// ResetResponse lists the tables a reset cleared
type ResetResponse struct {
	Message string   `json:"message"`
	Tables  []string `json:"tables"`
}
