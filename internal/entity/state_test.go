package entity

import (
	"math/rand/v2"
	"testing"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tieBoard = Board{
	X, O, X,
	X, O, O,
	O, X, X,
}

func TestNewState(t *testing.T) {
	// Given: a fresh game state
	state := NewState(X)

	// Then: it is empty, unconstrained and X moves with 81 options
	assert.Equal(t, AnyBoard, state.Active)
	assert.Equal(t, X, state.Turn)
	assert.Equal(t, Board{}, state.Meta)
	assert.Len(t, state.LegalMoves(), 81)
	assert.False(t, state.IsOver())
}

func TestState_Apply(t *testing.T) {
	t.Run("First move into the center cell sends the opponent to the center board", func(t *testing.T) {
		// Given: the start position
		state := NewState(X)

		// When: X plays the center cell of board 0
		next, err := state.Apply(Move{Board: 0, Cell: 4})
		require.NoError(t, err)

		// Then: O must play on board 4, whose nine cells are the only options
		assert.Equal(t, 4, next.Active)
		assert.Equal(t, O, next.Turn)
		assert.Equal(t, X, next.Boards[0][4])

		moves := next.LegalMoves()
		require.Len(t, moves, 9)
		for i, move := range moves {
			assert.Equal(t, Move{Board: 4, Cell: i}, move)
		}

		// And: the original state is untouched
		assert.Equal(t, Empty, state.Boards[0][4])
		assert.Equal(t, X, state.Turn)
	})

	t.Run("Completing a line decides the sub-board exactly once", func(t *testing.T) {
		// Given: X holds two cells of the top row of board 2 and must play there
		state := NewState(X)
		state.Boards[2] = Board{X, X, Empty, O, O, Empty, Empty, Empty, Empty}
		state.Active = 2

		// When: X completes the row
		next, err := state.Apply(Move{Board: 2, Cell: 2})
		require.NoError(t, err)

		// Then: the meta entry flips to X and the previous state still shows it undecided
		assert.Equal(t, X, next.Boards[2].DetermineResult())
		assert.Equal(t, X, next.Meta[2])
		assert.Equal(t, Empty, state.Meta[2])

		// And: being sent to the just-decided board 2 means free choice
		assert.Equal(t, AnyBoard, next.Active)
		assert.True(t, next.IsUnconstrained())
	})

	t.Run("Being sent to a drawn board grants free choice", func(t *testing.T) {
		// Given: board 5 is a finished tie
		state := NewState(X)
		state.Boards[5] = tieBoard
		state.Meta[5] = Tie

		// When: X plays cell 5 of board 0
		next, err := state.Apply(Move{Board: 0, Cell: 5})
		require.NoError(t, err)

		// Then: O is unconstrained and may not pick board 5
		assert.Equal(t, AnyBoard, next.Active)

		moves := next.LegalMoves()
		assert.Len(t, moves, 81-9-1)
		for _, move := range moves {
			assert.NotEqual(t, 5, move.Board)
		}
	})

	t.Run("Rejects illegal moves without changing the state", func(t *testing.T) {
		// Given: O must play on board 4, board 1 is won by X
		state := NewState(O)
		state.Active = 4
		state.Boards[1] = Board{X, X, X, O, O, Empty, Empty, Empty, Empty}
		state.Meta[1] = X
		state.Boards[4][0] = X

		cases := []struct {
			name string
			move Move
			err  error
		}{
			{"wrong board", Move{Board: 3, Cell: 0}, apperror.ErrWrongBoard},
			{"occupied cell", Move{Board: 4, Cell: 0}, apperror.ErrCellOccupied},
			{"board out of range", Move{Board: 9, Cell: 0}, ErrInvalidBoard},
			{"negative cell", Move{Board: 4, Cell: -1}, ErrInvalidCell},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				// When: the illegal move is applied
				next, err := state.Apply(tc.move)

				// Then: the matching error comes back with the original state
				require.ErrorIs(t, err, tc.err)
				assert.Equal(t, state, next)
			})
		}
	})

	t.Run("Rejects moves on a decided board even when unconstrained", func(t *testing.T) {
		// Given: board 1 is won and the turn is free
		state := NewState(O)
		state.Boards[1] = Board{X, X, X, O, O, Empty, Empty, Empty, Empty}
		state.Meta[1] = X

		// When: O tries to fill an empty cell there
		_, err := state.Apply(Move{Board: 1, Cell: 5})

		// Then: the board is reported as decided
		require.ErrorIs(t, err, apperror.ErrBoardDecided)
	})

	t.Run("Rejects moves once the meta-board is decided", func(t *testing.T) {
		// Given: X owns the meta-board top row
		state := NewState(O)
		state.Meta = Board{X, X, X, Empty, Empty, Empty, Empty, Empty, Empty}

		// When: O tries to move
		_, err := state.Apply(Move{Board: 4, Cell: 4})

		// Then: the game is finished and there are no legal moves
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Empty(t, state.LegalMoves())
	})
}

func TestState_RandomPlayoutsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 1337))

	for game := 0; game < 100; game++ {
		state := NewState(X)

		for !state.IsOver() {
			moves := state.LegalMoves()
			require.NotEmpty(t, moves)

			for _, move := range moves {
				// Then: every generated move satisfies the legality rules
				require.Equal(t, Empty, state.Boards[move.Board][move.Cell])
				require.Equal(t, Empty, state.Meta[move.Board])
				if !state.IsUnconstrained() {
					require.Equal(t, state.Active, move.Board)
				}

				next, err := state.Apply(move)
				require.NoError(t, err)

				// And: the constraint follows the cell index unless that board is decided
				if next.Meta[move.Cell] == Empty {
					require.Equal(t, move.Cell, next.Active)
				} else {
					require.Equal(t, AnyBoard, next.Active)
				}

				// And: decided meta entries never change
				for b, outcome := range state.Meta {
					if outcome != Empty {
						require.Equal(t, outcome, next.Meta[b])
					}
				}

				// And: exactly one mark was placed and the turn alternated
				require.Equal(t, state.Turn, next.Boards[move.Board][move.Cell])
				require.Equal(t, state.Turn.Opponent(), next.Turn)
				require.NoError(t, next.CheckConsistency())
			}

			state = state.Play(moves[rng.IntN(len(moves))])
		}

		assert.NotEqual(t, Empty, state.Result())
	}
}

func TestState_CheckConsistency(t *testing.T) {
	t.Run("Accepts a state produced by play", func(t *testing.T) {
		// Given: a state reached through Apply
		state, err := NewState(X).Apply(Move{Board: 3, Cell: 3})
		require.NoError(t, err)

		// Then: it is consistent
		assert.NoError(t, state.CheckConsistency())
	})

	t.Run("Rejects a meta entry not backed by its board", func(t *testing.T) {
		// Given: a meta-board claiming an empty board is won
		state := NewState(X)
		state.Meta[6] = O

		// When: checking consistency
		err := state.CheckConsistency()

		// Then: it is reported
		assert.ErrorIs(t, err, ErrInconsistentMeta)
	})

	t.Run("Rejects an out of range constraint", func(t *testing.T) {
		// Given: an active board index outside the grid
		state := NewState(X)
		state.Active = 12

		// Then: the state is rejected
		assert.ErrorIs(t, state.CheckConsistency(), ErrInvalidBoard)
	})
}
