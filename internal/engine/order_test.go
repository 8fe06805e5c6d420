package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderer_Order(t *testing.T) {
	orderer := NewOrderer(DefaultWeights(), 0, nil)

	t.Run("A sub-board win comes first", func(t *testing.T) {
		// Given: X holds two cells of the top row of board 0 and must play there
		state := entity.NewState(entity.X)
		state.Boards[0] = entity.Board{entity.X, entity.X, entity.Empty, entity.O, entity.Empty, entity.Empty, entity.Empty, entity.O}
		state.Active = 0

		// When: ordering the legal moves
		ordered := orderer.Order(state, state.LegalMoves(), entity.X)

		// Then: completing the row is first
		require.NotEmpty(t, ordered)
		assert.Equal(t, entity.Move{Board: 0, Cell: 2}, ordered[0])
	})

	t.Run("Blocking the opponent comes before quiet moves", func(t *testing.T) {
		// Given: O threatens the top row of board 0
		state := entity.NewState(entity.X)
		state.Boards[0] = entity.Board{entity.O, entity.O, entity.Empty, entity.X}
		state.Active = 0

		// When: ordering for X
		ordered := orderer.Order(state, state.LegalMoves(), entity.X)

		// Then: the block is first
		assert.Equal(t, entity.Move{Board: 0, Cell: 2}, ordered[0])
	})

	t.Run("Winning the game beats winning a board, which beats blocking", func(t *testing.T) {
		// Given: X owns boards 0 and 1, and can complete boards 2 and 5
		state := entity.NewState(entity.X)
		state = withBoard(state, 0, wonBoard(entity.X))
		state = withBoard(state, 1, wonBoard(entity.X))
		open := entity.Board{entity.X, entity.X, entity.Empty, entity.O, entity.O}
		state.Boards[2] = open
		state.Boards[5] = open

		// When: ordering all moves for X
		ordered := orderer.Order(state, state.LegalMoves(), entity.X)

		// Then: the game win leads, the plain board win follows, then the blocks
		require.Len(t, ordered, 81-18-8)
		assert.Equal(t, entity.Move{Board: 2, Cell: 2}, ordered[0])
		assert.Equal(t, entity.Move{Board: 5, Cell: 2}, ordered[1])
		assert.ElementsMatch(t, []entity.Move{{Board: 2, Cell: 5}, {Board: 5, Cell: 5}}, ordered[2:4])
	})

	t.Run("Winning a board beats blocking a board that would lose the game", func(t *testing.T) {
		// Given: O owns boards 3 and 4 and threatens board 5, X can complete board 0
		state := entity.NewState(entity.X)
		state = withBoard(state, 3, wonBoard(entity.O))
		state = withBoard(state, 4, wonBoard(entity.O))
		state.Boards[0] = entity.Board{entity.X, entity.X, entity.Empty, entity.O}
		state.Boards[5] = entity.Board{entity.O, entity.O, entity.Empty, entity.X}

		// When: ordering all moves for X
		ordered := orderer.Order(state, state.LegalMoves(), entity.X)

		// Then: the board win leads even though the block carries the meta bonus
		assert.Equal(t, entity.Move{Board: 0, Cell: 2}, ordered[0])
		assert.Equal(t, entity.Move{Board: 5, Cell: 2}, ordered[1])
	})

	t.Run("Center cells lead on an empty board", func(t *testing.T) {
		// Given: X must play on the empty center board
		state := entity.NewState(entity.X)
		state.Active = 4

		// When: ordering the moves
		ordered := orderer.Order(state, state.LegalMoves(), entity.X)

		// Then: center first, corners next, edges last
		assert.Equal(t, 4, ordered[0].Cell)
		for _, move := range ordered[1:5] {
			assert.True(t, entity.IsCorner(move.Cell))
		}
		for _, move := range ordered[5:] {
			assert.False(t, entity.IsCorner(move.Cell))
		}
	})

	t.Run("Does not modify the input", func(t *testing.T) {
		// Given: a list of moves in board order
		state := entity.NewState(entity.X)
		moves := state.LegalMoves()
		before := append([]entity.Move(nil), moves...)

		// When: ordering
		_ = orderer.Order(state, moves, entity.X)

		// Then: the caller's slice is unchanged
		assert.Equal(t, before, moves)
	})
}

func TestOrderer_JitterKeepsCriticalMovesFirst(t *testing.T) {
	state := entity.NewState(entity.X)
	state.Boards[0] = entity.Board{entity.O, entity.O, entity.Empty, entity.X, entity.X}
	state.Active = 0

	for seed := uint64(0); seed < 50; seed++ {
		// Given: an orderer with jitter far larger than any priority
		orderer := NewOrderer(DefaultWeights(), 1_000_000, rand.New(rand.NewPCG(seed, seed)))

		// When: ordering a board with a winning move and a block
		ordered := orderer.Order(state, state.LegalMoves(), entity.X)

		// Then: the win and the block stay on top
		assert.Equal(t, entity.Move{Board: 0, Cell: 5}, ordered[0], "seed %d", seed)
		assert.Equal(t, entity.Move{Board: 0, Cell: 2}, ordered[1], "seed %d", seed)
	}
}

func TestOrderer_SameSeedSameOrder(t *testing.T) {
	// Given: two orderers with the same seed
	state := entity.NewState(entity.X)
	a := NewOrderer(DefaultWeights(), 40, rand.New(rand.NewPCG(5, 5)))
	b := NewOrderer(DefaultWeights(), 40, rand.New(rand.NewPCG(5, 5)))

	// Then: they produce identical orders
	assert.Equal(t, a.Order(state, state.LegalMoves(), entity.X), b.Order(state, state.LegalMoves(), entity.X))
}
