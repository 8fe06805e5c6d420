package tictactoe

import "github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"

const (
	PolicyFreeChoice     = "free-choice"
	PolicyRandomRedirect = "random-redirect"
)

// RedirectPolicy decides what happens after a player is sent to a decided board.
type RedirectPolicy interface {
	Redirect(state entity.State) entity.State
}

// FreeChoice keeps the standard rule: the next player may pick any undecided board.
type FreeChoice struct{}

func (FreeChoice) Redirect(state entity.State) entity.State {
	return state
}

type intner interface {
	IntN(n int) int
}

// RandomRedirect replaces free choice with a uniformly drawn undecided board.
type RandomRedirect struct {
	rng intner
}

func NewRandomRedirect(rng intner) RandomRedirect {
	return RandomRedirect{rng: rng}
}

func (that RandomRedirect) Redirect(state entity.State) entity.State {
	if state.IsOver() || state.Active != entity.AnyBoard {
		return state
	}

	open := make([]int, 0, entity.BoardSize)
	for b, outcome := range state.Meta {
		if outcome == entity.Empty {
			open = append(open, b)
		}
	}

	if len(open) == 0 {
		return state
	}

	state.Active = open[that.rng.IntN(len(open))]

	return state
}
