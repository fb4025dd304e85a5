package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-api/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
)

const (
	readBufferSize  = 1024
	writeBufferSize = 1024
	maxMessageSize  = 4096
)

type gameUseCase interface {
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	PlayRound(ctx context.Context, id string, x, y int) (*entity.Game, error)
}

type handlerFunc func(ctx context.Context, gameID string, msg *Message) Payload

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionGameGet] = server.handleGameGet
	server.handlers[actionGameTurn] = server.handleGameTurn

	return server
}

// Mount - registers the game socket on the router.
func (that *Server) Mount(r chi.Router) {
	r.Get("/ws/games/{gameID}", that.serveGame)
}

func (that *Server) serveGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	log := that.logger.With("method", "serveGame", "gameID", gameID)

	if _, err := that.gameUseCase.GetGame(r.Context(), gameID); err != nil {
		if errors.Is(err, apperror.ErrGameNotFound) {
			http.Error(w, `{"detail":"Game not found."}`, http.StatusNotFound)
			return
		}

		log.Error("failed to get game", "error", err)
		http.Error(w, `{"detail":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already answered the client
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)

	log.Info("WebSocket connection established")

	if err = that.handleMessages(r.Context(), conn, gameID); err != nil {
		log.Error("error handling messages", "error", err)
	}

	log.Info("WebSocket connection closed")
}

// handleMessages - processes messages from the client until it goes away.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, gameID string) error {
	log := that.logger.With("method", "handleMessages", "gameID", gameID)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Debug("failed to unmarshal message", "error", err)
			if err = that.send(conn, actionError, Payload{Error: "malformed message"}); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Debug("unknown action", "action", message.Action)
			if err = that.send(conn, actionError, Payload{Error: fmt.Sprintf("unknown action %q", message.Action)}); err != nil {
				return err
			}
			continue
		}

		if err = that.send(conn, message.Action, handler(ctx, gameID, &message)); err != nil {
			return err
		}
	}
}

func (that *Server) send(conn *websocket.Conn, action string, payload Payload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = conn.WriteJSON(Message{Action: action, Payload: raw}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}
