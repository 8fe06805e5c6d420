package engine

import (
	"sort"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

type Orderer struct {
	weights Weights
	jitter  int
	rng     Random
}

// NewOrderer builds a move orderer. Jitter up to the given amount is added to
// non-critical moves only; a zero jitter or a nil rng keeps ordering deterministic.
func NewOrderer(weights Weights, jitter int, rng Random) *Orderer {
	return &Orderer{
		weights: weights,
		jitter:  jitter,
		rng:     rng,
	}
}

// Move classes, best first. Priorities only break ties inside a class.
const (
	tierQuiet = iota
	tierBlock
	tierBoardWin
	tierGameWin
)

type rankedMove struct {
	move     entity.Move
	priority int
	tier     int
}

// Order returns moves best-first for mark: game wins, then sub-board wins, then
// blocks, then the rest by priority.
func (that *Orderer) Order(state entity.State, moves []entity.Move, mark entity.Mark) []entity.Move {
	ranked := make([]rankedMove, len(moves))
	for i, move := range moves {
		ranked[i] = that.rank(state, move, mark)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].tier != ranked[j].tier {
			return ranked[i].tier > ranked[j].tier
		}

		return ranked[i].priority > ranked[j].priority
	})

	ordered := make([]entity.Move, len(ranked))
	for i, r := range ranked {
		ordered[i] = r.move
	}

	return ordered
}

func (that *Orderer) rank(state entity.State, move entity.Move, mark entity.Mark) rankedMove {
	w := that.weights
	opponent := mark.Opponent()
	board := state.Boards[move.Board]

	r := rankedMove{move: move}

	own := board
	own[move.Cell] = mark
	ownResult := own.DetermineResult()

	if ownResult == mark {
		r.tier = tierBoardWin
		r.priority += w.OrderBoardWin

		meta := state.Meta
		meta[move.Board] = mark
		if meta.DetermineResult() == mark {
			r.tier = tierGameWin
			r.priority += w.OrderGameWin
		}
	}

	theirs := board
	theirs[move.Cell] = opponent
	if theirs.DetermineResult() == opponent {
		r.tier = max(r.tier, tierBlock)
		r.priority += w.OrderBlock

		meta := state.Meta
		meta[move.Board] = opponent
		if meta.DetermineResult() == opponent {
			r.priority += w.OrderMetaBlock
		}
	}

	if gained := own.CountThreats(mark) - board.CountThreats(mark); gained > 0 {
		r.priority += gained * w.OrderThreat
	}

	r.priority += w.cellBonus(move.Cell)
	r.priority += w.Importance(move.Board) * w.OrderImportance / 100

	sentTo := state.Meta[move.Cell]
	if move.Cell == move.Board && ownResult != entity.Empty {
		sentTo = ownResult
	}

	if sentTo != entity.Empty {
		r.priority -= w.OrderFreeChoice
	}

	if r.tier == tierQuiet && that.jitter > 0 && that.rng != nil {
		r.priority += that.rng.IntN(that.jitter + 1)
	}

	return r
}
