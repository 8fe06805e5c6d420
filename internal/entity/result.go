package entity

import "time"

// Outcomes of a finished game as seen by the human player.
const (
	OutcomeWin       = "win"
	OutcomeLoss      = "loss"
	OutcomeDraw      = "draw"
	OutcomeAbandoned = "abandoned"
)

type Result struct {
	GameID        string        `json:"game_id"`
	PlayerID      string        `json:"player_id"`
	Outcome       string        `json:"outcome"`
	PlayerMark    Mark          `json:"player_mark"`
	Moves         int           `json:"moves"`
	DecidedBoards int           `json:"decided_boards"`
	MistakeRate   float64       `json:"mistake_rate"`
	Duration      time.Duration `json:"duration"`
	FinishedAt    time.Time     `json:"finished_at"`
}

type Stats struct {
	PlayerID    string `json:"player_id"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`
	Draws       int    `json:"draws"`
	Abandoned   int    `json:"abandoned"`
	GamesPlayed int    `json:"games_played"`
}

// NewResult summarizes a game for the given player.
func NewResult(game *Game, player *Player, now time.Time) *Result {
	outcome := OutcomeAbandoned
	if game.IsFinished() {
		switch game.Winner {
		case player.Mark:
			outcome = OutcomeWin
		case Tie:
			outcome = OutcomeDraw
		default:
			outcome = OutcomeLoss
		}
	}

	var duration time.Duration
	if !game.StartedAt.IsZero() {
		duration = now.Sub(game.StartedAt)
	}

	return &Result{
		GameID:        game.ID,
		PlayerID:      player.ID,
		Outcome:       outcome,
		PlayerMark:    player.Mark,
		Moves:         game.MoveCount,
		DecidedBoards: game.State.DecidedBoards(),
		MistakeRate:   player.MistakeRate,
		Duration:      duration,
		FinishedAt:    now,
	}
}
