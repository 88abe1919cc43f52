package handlers

import (
	"fmt"
	"net/http"

	"github.com/abrezinsky/heatroll/internal/models"
)

// handleAdminResetSignup clears a signup back to a fresh state
func (h *Handlers) handleAdminResetSignup(w http.ResponseWriter, r *http.Request) {
	signupID, err := parseIDParam(r, "signupID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	view, err := h.Ledger.AdminReset(r.Context(), signupID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, view)
}

func (h *Handlers) handleListSignups(w http.ResponseWriter, r *http.Request) {
	heatID, err := parseIDParam(r, "heatID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	signups, err := h.Ledger.ListSignups(r.Context(), heatID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if signups == nil {
		signups = []models.Signup{}
	}
	respondOK(w, SignupListResponse{HeatID: heatID, Signups: signups})
}

func (h *Handlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	heatID, err := parseIDParam(r, "heatID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	stats, err := h.Heat.GetStats(r.Context(), heatID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, stats)
}

func (h *Handlers) handleGetHeatQR(w http.ResponseWriter, r *http.Request) {
	heatID, err := parseIDParam(r, "heatID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	png, err := h.Heat.GenerateHeatQR(r.Context(), heatID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

// ==================== Database Management ====================

func (h *Handlers) handleResetDatabase(w http.ResponseWriter, r *http.Request) {
	var req DatabaseResetRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.Catalog.ResetTables(r.Context(), req.Tables)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, ResetResponse{Message: result.Message, Tables: result.Tables})
}

func (h *Handlers) handleSeedMockData(w http.ResponseWriter, r *http.Request) {
	result, err := h.Catalog.SeedMockData(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondOK(w, SeedResponse{
		Message:   fmt.Sprintf("Added %d platforms, %d games and %d heats", result.Platforms, result.Games, len(result.Heats)),
		Platforms: result.Platforms,
		Games:     result.Games,
		HeatIDs:   result.Heats,
	})
}
