package handlers

import (
	"net/http"

	"github.com/abrezinsky/heatroll/internal/auth"
	"github.com/abrezinsky/heatroll/internal/services"
)

func (h *Handlers) handleListHeats(w http.ResponseWriter, r *http.Request) {
	heats, err := h.Heat.ListHeats(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, HeatListResponse{Heats: heats})
}

// handleGetHeat returns the heat with the caller's guard state
func (h *Handlers) handleGetHeat(w http.ResponseWriter, r *http.Request) {
	heatID, err := parseIDParam(r, "heatID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	state, err := h.Heat.GetHeatState(r.Context(), heatID, auth.ParticipantID(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, state)
}

func (h *Handlers) handleGetSignup(w http.ResponseWriter, r *http.Request) {
	heatID, err := parseIDParam(r, "heatID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	view, err := h.Ledger.GetSignup(r.Context(), heatID, auth.ParticipantID(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, view)
}

// handleDraw records one roll and returns it with its reveal wheel
func (h *Handlers) handleDraw(w http.ResponseWriter, r *http.Request) {
	heatID, err := parseIDParam(r, "heatID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	// An empty body is a follow-up draw on already locked quotas
	var req DrawRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			h.respondError(w, r, err)
			return
		}
	}

	result, err := h.Ledger.Draw(r.Context(), services.DrawRequest{
		HeatID:          heatID,
		ParticipantID:   auth.ParticipantID(r.Context()),
		Weights:         req.Weights,
		WesternRequired: req.WesternRequired,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, result)
}

func (h *Handlers) handleVeto(w http.ResponseWriter, r *http.Request) {
	heatID, err := parseIDParam(r, "heatID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	rollID, err := parseIDParam(r, "rollID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	view, err := h.Ledger.Veto(r.Context(), heatID, auth.ParticipantID(r.Context()), rollID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, view)
}

func (h *Handlers) handleFinalizePick(w http.ResponseWriter, r *http.Request) {
	heatID, err := parseIDParam(r, "heatID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req PickRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.RollID <= 0 {
		h.respondError(w, r, BadRequest("roll_id is required"))
		return
	}

	view, err := h.Ledger.FinalizePick(r.Context(), heatID, auth.ParticipantID(r.Context()), req.RollID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, view)
}

func (h *Handlers) handleUndoPick(w http.ResponseWriter, r *http.Request) {
	heatID, err := parseIDParam(r, "heatID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	view, err := h.Ledger.UndoPick(r.Context(), heatID, auth.ParticipantID(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, view)
}

func (h *Handlers) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	heatID, err := parseIDParam(r, "heatID")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req StatusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	view, err := h.Ledger.SetStatus(r.Context(), heatID, auth.ParticipantID(r.Context()), req.Status)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, view)
}

func (h *Handlers) handleListPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.Catalog.ListPlatforms(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, PlatformListResponse{Platforms: platforms})
}
