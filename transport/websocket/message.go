package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

const (
	actionConnect   = "connect"
	actionGameNew   = "game:new"
	actionGameTurn  = "game:turn"
	actionGameLeave = "game:leave"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *entity.Game   `json:"game,omitempty"`
	Move   *entity.Move   `json:"move,omitempty"`

	// RedirectPolicy selects the rule for moves sent to a decided board in a new game.
	RedirectPolicy string `json:"redirect_policy,omitempty"`

	Error string `json:"error,omitempty"`
}
