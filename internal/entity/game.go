package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
)

const (
	StatusFinished  = "finished"
	StatusOngoing   = "ongoing"
	StatusWaiting   = "waiting"
	StatusAbandoned = "abandoned"
)

const WithBotType = "bot"

var ErrUnknownGameStatus = errors.New("unknown game status")

type Game struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Winner    Mark      `json:"winner"`
	Status    string    `json:"status"`
	Players   []*Player `json:"players,omitempty"`
	Type      string    `json:"type,omitempty"`
	Redirect  string    `json:"redirect_policy,omitempty"`
	LastMove  *Move     `json:"last_move,omitempty"`
	MoveCount int       `json:"move_count"`
	StartedAt time.Time `json:"started_at"`
}

func NewGame(id, redirect string) *Game {
	return &Game{
		ID:       id,
		State:    NewState(X),
		Status:   StatusWaiting,
		Type:     WithBotType,
		Redirect: redirect,
	}
}

// Start moves a waiting game to ongoing.
func (that *Game) Start(now time.Time) error {
	if !that.IsWaiting() {
		return fmt.Errorf("%w: cannot start game in status %s", ErrUnknownGameStatus, that.Status)
	}

	that.Status = StatusOngoing
	that.StartedAt = now

	return nil
}

func (that *Game) UpdateGameState() {
	switch winner := that.State.Result(); winner {
	// one player wins
	case X, O:
		that.Winner = winner
		that.Status = StatusFinished
	// every sub-board decided without a line
	case Tie:
		that.Winner = Tie
		that.Status = StatusFinished
	default:
		that.Status = StatusOngoing
	}
}

// MakeTurn applies a move for the given mark. A rejected move leaves the game untouched.
func (that *Game) MakeTurn(mark Mark, move Move) error {
	if err := that.ConfirmOngoingState(); err != nil {
		return err
	}

	if that.State.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	next, err := that.State.Apply(move)
	if err != nil {
		return fmt.Errorf("failed to apply move %s: %w", move, err)
	}

	that.State = next
	that.LastMove = &move
	that.MoveCount++

	that.UpdateGameState()

	return nil
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) IsAbandoned() bool {
	return that.Status == StatusAbandoned
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished(), that.IsAbandoned():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}

// IsBotTurn reports whether the bot holds the mark to move in an ongoing game.
func (that *Game) IsBotTurn() bool {
	bot := that.BotPlayer()
	return that.IsOngoing() && bot != nil && bot.Mark == that.State.Turn
}

func (that *Game) BotPlayer() *Player {
	for _, player := range that.Players {
		if player.IsBot() {
			return player
		}
	}

	return nil
}

func (that *Game) HumanPlayer() *Player {
	for _, player := range that.Players {
		if !player.IsBot() {
			return player
		}
	}

	return nil
}

type intner interface {
	IntN(n int) int
}

// RandomMarks returns the marks for the human and the bot, in that order.
func RandomMarks(rng intner) (Mark, Mark) {
	if rng.IntN(2) == 0 {
		return X, O
	}

	return O, X
}
