package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-solo/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-solo/internal/entity"
	"github.com/rocketscienceinc/tictactoe-solo/internal/tictactoe"
)

const maxRequestSize = 64 << 10

var errPositionRequired = errors.New("position is required")

type gameManager interface {
	CreateSession(ctx context.Context) (*entity.SessionView, error)
	GetSession(ctx context.Context, sessionID string) (*entity.SessionView, error)
	PlayTurn(ctx context.Context, sessionID string, position int) (*entity.SessionView, error)
	NewGame(ctx context.Context, sessionID string) (*entity.SessionView, error)
	EndSession(ctx context.Context, sessionID string) error
}

type turnRequest struct {
	Position *int `json:"position"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handlers struct {
	logger  *slog.Logger
	manager gameManager
}

func newHandlers(logger *slog.Logger, manager gameManager) *handlers {
	return &handlers{
		logger:  logger.With("component", "rest"),
		manager: manager,
	}
}

func (that *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	view, err := that.manager.CreateSession(r.Context())
	if err != nil {
		that.writeError(w, "createSession", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, view)
}

func (that *handlers) getSession(w http.ResponseWriter, r *http.Request) {
	view, err := that.manager.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "getSession", err)
		return
	}

	that.writeJSON(w, http.StatusOK, view)
}

func (that *handlers) playTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestSize)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			that.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}

		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if req.Position == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: errPositionRequired.Error()})
		return
	}

	view, err := that.manager.PlayTurn(r.Context(), chi.URLParam(r, "id"), *req.Position)
	if err != nil {
		that.writeError(w, "playTurn", err)
		return
	}

	that.writeJSON(w, http.StatusOK, view)
}

func (that *handlers) newGame(w http.ResponseWriter, r *http.Request) {
	view, err := that.manager.NewGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "newGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, view)
}

func (that *handlers) endSession(w http.ResponseWriter, r *http.Request) {
	if err := that.manager.EndSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, "endSession", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) writeError(w http.ResponseWriter, method string, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}

	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tictactoe.ErrInvalidPosition):
		return http.StatusBadRequest
	case errors.Is(err, tictactoe.ErrCellOccupied), errors.Is(err, apperror.ErrGameFinished):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
