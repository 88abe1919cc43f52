package handlers_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/abrezinsky/heatroll/internal/errors"
	"github.com/abrezinsky/heatroll/internal/handlers"
	"github.com/abrezinsky/heatroll/internal/models"
	"github.com/abrezinsky/heatroll/internal/services"
	"github.com/abrezinsky/heatroll/pkg/catalog"
)

func TestToAPIError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", errors.NotFound("heat 1 not found"), http.StatusNotFound, handlers.ErrCodeNotFound},
		{"validation", errors.Validation("bad"), http.StatusBadRequest, handlers.ErrCodeValidation},
		{"invalid input", errors.InvalidInput("bad"), http.StatusBadRequest, handlers.ErrCodeValidation},
		{"conflict", errors.Conflict("taken"), http.StatusConflict, handlers.ErrCodeConflict},
		{"heat not open", errors.PreconditionFailed(errors.ReasonHeatNotOpen, "soon"), http.StatusConflict, "HEAT_NOT_OPEN"},
		{"heat locked", errors.PreconditionFailed(errors.ReasonHeatLocked, "locked"), http.StatusConflict, "HEAT_LOCKED"},
		{"precondition without reason", errors.PreconditionFailed("", "nope"), http.StatusConflict, handlers.ErrCodeConflict},
		{"quota mismatch", errors.QuotaMismatch("full"), http.StatusConflict, handlers.ErrCodeQuotaMismatch},
		{"no eligible", errors.NoEligibleItems("empty"), http.StatusUnprocessableEntity, handlers.ErrCodeNoEligibleGames},
		{"sequence conflict", errors.SequenceConflict(stderrors.New("dup")), http.StatusConflict, handlers.ErrCodeSequenceConflict},
		{"invariant", errors.InvariantViolation("broken"), http.StatusInternalServerError, handlers.ErrCodeInvariantViolation},
		{"wrapped", fmt.Errorf("draw: %w", errors.NotFound("gone")), http.StatusNotFound, handlers.ErrCodeNotFound},
		{"internal kind", errors.Internalf("db"), http.StatusInternalServerError, handlers.ErrCodeInternalServer},
		{"seeded", services.ErrCatalogSeeded, http.StatusConflict, handlers.ErrCodeAlreadySeeded},
		{"service error", services.ErrNoTablesSpecified, http.StatusBadRequest, handlers.ErrCodeBadRequest},
		{"invalid table", &services.InvalidTableError{Table: "x"}, http.StatusBadRequest, handlers.ErrCodeValidation},
		{"plain error", stderrors.New("boom"), http.StatusInternalServerError, handlers.ErrCodeInternalServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := handlers.ToAPIError(tt.err)
			if apiErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.Status)
			}
			if apiErr.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, apiErr.Code)
			}
		})
	}
}

func TestInternalError_HidesCause(t *testing.T) {
	err := handlers.InternalError(stderrors.New("db connection failed"))

	if err.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", err.Status)
	}
	if err.Message != "Internal server error" {
		t.Errorf("expected generic message, got %q", err.Message)
	}
}

func TestRespondError_RepositoryFailure(t *testing.T) {
	s := newTestSetup(t)
	s.mock.ListHeatsError = stderrors.New("disk I/O error")

	rec := s.do(t, http.MethodGet, "/api/heats", "", nil)
	expectCode(t, rec, http.StatusInternalServerError, handlers.ErrCodeInternalServer)
	if strings.Contains(rec.Body.String(), "disk") {
		t.Errorf("expected the cause to stay server-side, got %s", rec.Body.String())
	}
}

func TestDecodeJSON_EmptyBody(t *testing.T) {
	s := newTestSetup(t)

	rec := s.do(t, http.MethodPut, fmt.Sprintf("/api/heats/%d/pick", s.heatID), "alice", nil)
	expectCode(t, rec, http.StatusBadRequest, handlers.ErrCodeBadRequest)
	if !strings.Contains(strings.ToLower(rec.Body.String()), "empty") {
		t.Errorf("expected error to mention 'empty', got %q", rec.Body.String())
	}
}

func TestParseIDParam(t *testing.T) {
	s := newTestSetup(t)

	for _, id := range []string{"abc", "0", "-3", "99999999999999999999"} {
		t.Run(id, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/api/heats/"+id+"/signup", "alice", nil)
			expectStatus(t, rec, http.StatusBadRequest)
		})
	}
}

func TestGameCover(t *testing.T) {
	s := newTestSetup(t, catalog.WithCover("co1abc", []byte("jpegdata"), "image/jpeg"))

	game, err := s.repo.CreateGame(t.Context(), models.Game{Name: "Crystalis", CoverRef: "co1abc"}, []models.GamePlatform{{PlatformID: s.nes}})
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}

	tests := []struct {
		name        string
		path        string
		contentType string
		body        string
	}{
		{"cover from catalog", fmt.Sprintf("/games/%d/cover", game), "image/jpeg", "jpegdata"},
		{"game without cover", "/games/1/cover", "image/svg+xml", "No Cover"},
		{"unknown game", "/games/9999/cover", "image/svg+xml", "No Cover"},
		{"bad id", "/games/abc/cover", "image/svg+xml", "No Cover"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.path, "", nil)
			expectStatus(t, rec, http.StatusOK)
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("expected %s, got %s", tt.contentType, ct)
			}
			if !strings.Contains(rec.Body.String(), tt.body) {
				t.Errorf("expected body to contain %q", tt.body)
			}
		})
	}
}
