package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rocketscienceinc/tictactoe-api/internal/apperror"
)

func (that *Server) handleGameGet(ctx context.Context, gameID string, _ *Message) Payload {
	log := that.logger.With("method", "handleGameGet", "gameID", gameID)

	game, err := that.gameUseCase.GetGame(ctx, gameID)
	if err != nil {
		log.Error("failed to get game", "error", err)
		return Payload{Error: errorText(err)}
	}

	return Payload{Game: game}
}

func (that *Server) handleGameTurn(ctx context.Context, gameID string, msg *Message) Payload {
	log := that.logger.With("method", "handleGameTurn", "gameID", gameID)

	var turn turnPayload
	if err := json.Unmarshal(msg.Payload, &turn); err != nil {
		log.Debug("failed to unmarshal payload", "error", err)
		return Payload{Error: "malformed payload"}
	}

	if turn.X == nil || turn.Y == nil {
		return Payload{Error: "x and y are required"}
	}

	game, err := that.gameUseCase.PlayRound(ctx, gameID, *turn.X, *turn.Y)
	if err != nil {
		log.Info("round rejected", "error", err)
		return Payload{Error: errorText(err)}
	}

	log.Info("round played", "winner", game.Winner)

	return Payload{Game: game}
}

// errorText - the client-facing text, internal failures are not described.
func errorText(err error) string {
	for _, known := range []error{
		apperror.ErrGameNotFound,
		apperror.ErrInvalidMove,
		apperror.ErrInvalidCoordinates,
		apperror.ErrGameFinished,
		apperror.ErrGameBusy,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return "internal error"
}
