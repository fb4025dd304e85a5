package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-api/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
)

const (
	detailGameNotFound     = "No Game matches the given query."
	detailMovementNotFound = "Game not found."
	messageRequired        = "This field is required."
	messageMovementFailed  = "Error creating movement: Invalid movement"
)

type gameUseCase interface {
	CreateGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	ListGames(ctx context.Context) ([]*entity.Game, error)
	ListMovements(ctx context.Context, id string) ([]entity.Movement, error)
	DeleteGame(ctx context.Context, id string) error
	PlayRound(ctx context.Context, id string, x, y int) (*entity.Game, error)
}

type handlers struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
}

func newHandlers(logger *slog.Logger, gameUseCase gameUseCase) *handlers {
	return &handlers{
		logger:      logger,
		gameUseCase: gameUseCase,
	}
}

type detailResponse struct {
	Detail string `json:"detail"`
}

type movementRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

// validate - returns the field errors, keyed by field name.
func (that *movementRequest) validate() map[string][]string {
	errs := make(map[string][]string)

	for _, field := range []struct {
		name  string
		value *int
	}{{"x", that.X}, {"y", that.Y}} {
		switch {
		case field.value == nil:
			errs[field.name] = []string{messageRequired}
		case *field.value < 0 || *field.value >= entity.BoardSize:
			errs[field.name] = []string{
				fmt.Sprintf("'%s' coordinate must be a value between 0 and %d", field.name, entity.BoardSize-1),
			}
		}
	}

	return errs
}

func (that *handlers) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "CreateGame")

	game, err := that.gameUseCase.CreateGame(r.Context())
	if err != nil {
		log.Error("failed to create game", "error", err)
		that.writeError(w, err, detailGameNotFound)
		return
	}

	that.writeJSON(w, http.StatusCreated, game)
}

func (that *handlers) ListGames(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ListGames")

	games, err := that.gameUseCase.ListGames(r.Context())
	if err != nil {
		log.Error("failed to list games", "error", err)
		that.writeError(w, err, detailGameNotFound)
		return
	}

	that.writeJSON(w, http.StatusOK, games)
}

func (that *handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "GetGame")

	game, err := that.gameUseCase.GetGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		log.Debug("failed to get game", "error", err)
		that.writeError(w, err, detailGameNotFound)
		return
	}

	that.writeJSON(w, http.StatusOK, game)
}

func (that *handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "DeleteGame")

	if err := that.gameUseCase.DeleteGame(r.Context(), chi.URLParam(r, "gameID")); err != nil {
		log.Debug("failed to delete game", "error", err)
		that.writeError(w, err, detailGameNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *handlers) ListMovements(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ListMovements")

	movements, err := that.gameUseCase.ListMovements(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		log.Debug("failed to list movements", "error", err)
		that.writeError(w, err, detailMovementNotFound)
		return
	}

	that.writeJSON(w, http.StatusOK, movements)
}

// CreateMovement - plays one round and answers with the updated game.
func (that *handlers) CreateMovement(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "CreateMovement")

	gameID := chi.URLParam(r, "gameID")

	// an unknown game answers 404 before the body is looked at
	if _, err := that.gameUseCase.GetGame(r.Context(), gameID); err != nil {
		that.writeError(w, err, detailMovementNotFound)
		return
	}

	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, detailResponse{Detail: fmt.Sprintf("JSON parse error - %v", err)})
		return
	}

	if errs := req.validate(); len(errs) > 0 {
		that.writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	game, err := that.gameUseCase.PlayRound(r.Context(), gameID, *req.X, *req.Y)
	if err != nil {
		log.Info("round rejected", "gameID", gameID, "error", err)
		that.writeError(w, err, detailMovementNotFound)
		return
	}

	that.writeJSON(w, http.StatusCreated, game)
}

// writeError - maps application errors to statuses. notFound is the detail used for a missing game.
func (that *handlers) writeError(w http.ResponseWriter, err error, notFound string) {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		that.writeJSON(w, http.StatusNotFound, detailResponse{Detail: notFound})
	case errors.Is(err, apperror.ErrInvalidMove):
		that.writeJSON(w, http.StatusBadRequest, []string{messageMovementFailed})
	case errors.Is(err, apperror.ErrInvalidCoordinates):
		that.writeJSON(w, http.StatusBadRequest, detailResponse{Detail: apperror.ErrInvalidCoordinates.Error()})
	case errors.Is(err, apperror.ErrGameFinished):
		that.writeJSON(w, http.StatusConflict, detailResponse{Detail: apperror.ErrGameFinished.Error()})
	case errors.Is(err, apperror.ErrGameBusy):
		that.writeJSON(w, http.StatusConflict, detailResponse{Detail: apperror.ErrGameBusy.Error()})
	default:
		that.logger.Error("unexpected error", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, detailResponse{Detail: "internal server error"})
	}
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
