package models

import "time"

// Status is the resolution state of a signup
type Status string

const (
	StatusUnresolved      Status = "unresolved"
	StatusResolvedSuccess Status = "resolved_success"
	StatusResolvedFail    Status = "resolved_fail"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusUnresolved, StatusResolvedSuccess, StatusResolvedFail:
		return true
	}
	return false
}

// Terminal reports whether s can only be cleared by an admin reset
func (s Status) Terminal() bool {
	return s == StatusResolvedSuccess || s == StatusResolvedFail
}

// Platform is a weighted bucket games belong to
type Platform struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// Heat is one time-boxed round within a series
type Heat struct {
	ID        int64      `json:"id"`
	SeriesID  int64      `json:"series_id"`
	Position  int        `json:"position"`
	Name      string     `json:"name"`
	StartDate string     `json:"start_date"` // YYYY-MM-DD in the reference zone
	EndDate   string     `json:"end_date"`
	PoolSize  int        `json:"pool_size"`
	Platforms []Platform `json:"platforms"`
}

// PlatformIDs returns the ids of the heat's platforms in stored order
func (h *Heat) PlatformIDs() []int64 {
	ids := make([]int64, len(h.Platforms))
	for i, p := range h.Platforms {
		ids[i] = p.ID
	}
	return ids
}

// Game is the drawable unit
type Game struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug,omitempty"`
	CoverRef    string  `json:"cover_ref,omitempty"`
	ReleaseDate string  `json:"release_date,omitempty"`
	ReleaseTS   *int64  `json:"release_ts,omitempty"`
	HasWestern  bool    `json:"has_western"`
	PlatformIDs []int64 `json:"platform_ids,omitempty"`
}

// GamePlatform links a game to a platform with its per-platform western flag
type GamePlatform struct {
	PlatformID int64 `json:"platform_id"`
	Western    bool  `json:"western"`
}

// Signup is a participant's per-heat state
type Signup struct {
	ID              int64         `json:"id"`
	HeatID          int64         `json:"heat_id"`
	ParticipantID   string        `json:"participant_id"`
	Quotas          map[int64]int `json:"quotas,omitempty"` // nil until the first draw locks them
	WesternRequired *int          `json:"western_required,omitempty"`
	PickGameID      *int64        `json:"pick_game_id,omitempty"`
	Status          Status        `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// QuotasLocked reports whether the first draw has already fixed the quotas
func (s *Signup) QuotasLocked() bool {
	return s.Quotas != nil
}

// Roll is one persisted draw outcome
type Roll struct {
	ID         int64     `json:"id"`
	SignupID   int64     `json:"signup_id"`
	Seq        int       `json:"seq"`
	PlatformID int64     `json:"platform_id"`
	GameID     int64     `json:"game_id"`
	Western    bool      `json:"western"` // per-(game, platform) flag at the time of the draw
	CreatedAt  time.Time `json:"created_at"`
	Game       *Game     `json:"game,omitempty"`
}

// WheelSlot is one entry of the reveal sequence
type WheelSlot struct {
	GameID     int64  `json:"game_id"`
	PlatformID int64  `json:"platform_id"`
	Name       string `json:"name,omitempty"`
	CoverRef   string `json:"cover_ref,omitempty"`
}

// Wheel is the shuffled reveal sequence with the slot the animation must stop on
type Wheel struct {
	Slots        []WheelSlot `json:"slots"`
	LandingIndex int         `json:"landing_index"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// HeatStats summarizes signup progress for one heat
type HeatStats struct {
	HeatID      int64 `json:"heat_id"`
	Signups     int   `json:"signups"`
	Rolls       int   `json:"rolls"`
	Picks       int   `json:"picks"`
	Resolved    int   `json:"resolved"`
	Succeeded   int   `json:"succeeded"`
	PoolsFilled int   `json:"pools_filled"`
}

// Ledger event types pushed to websocket clients
const (
	EventRollCreated   = "roll_created"
	EventRollVetoed    = "roll_vetoed"
	EventPickChanged   = "pick_changed"
	EventStatusChanged = "status_changed"
	EventSignupReset   = "signup_reset"
)

// LedgerEvent is the payload of a ledger websocket message
type LedgerEvent struct {
	HeatID        int64  `json:"heat_id"`
	SignupID      int64  `json:"signup_id"`
	ParticipantID string `json:"participant_id"`
	Roll          *Roll  `json:"roll,omitempty"`
	RollID        int64  `json:"roll_id,omitempty"`
	PickGameID    *int64 `json:"pick_game_id,omitempty"`
	Status        Status `json:"status,omitempty"`
}
