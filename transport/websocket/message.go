package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
)

const (
	actionGameGet  = "game:get"
	actionGameTurn = "game:turn"
	actionError    = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Game  *entity.Game `json:"game,omitempty"`
	Error string       `json:"error,omitempty"`
}

type turnPayload struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}
