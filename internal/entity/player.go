package entity

const BotPlayerID = "bot"

type Player struct {
	ID     string `json:"id"`
	Mark   Mark   `json:"mark,omitempty"`
	GameID string `json:"game_id,omitempty"`

	// MistakeRate is the AI mistake probability used in this player's games.
	MistakeRate float64 `json:"mistake_rate"`
}

func NewBotPlayer(mark Mark) *Player {
	return &Player{
		ID:   BotPlayerID,
		Mark: mark,
	}
}

func (that *Player) IsBot() bool {
	return that.ID == BotPlayerID
}

func (that *Player) LeaveGame() {
	that.Mark = Empty
	that.GameID = ""
}
