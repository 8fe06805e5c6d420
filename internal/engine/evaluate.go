package engine

import "github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"

// Evaluate scores a position for perspective. Positive is good for perspective.
func Evaluate(state entity.State, perspective entity.Mark, weights Weights) int {
	opponent := perspective.Opponent()

	switch state.Meta.DetermineResult() {
	case perspective:
		return weights.MetaWin
	case opponent:
		return -weights.MetaWin
	case entity.Tie:
		return 0
	}

	score := (state.Meta.CountThreats(perspective) - state.Meta.CountThreats(opponent)) * weights.MetaTwoInRow

	for b, outcome := range state.Meta {
		importance := weights.Importance(b)

		switch outcome {
		case perspective:
			score += weights.MetaOwnership * importance / 100
		case opponent:
			score -= weights.MetaOwnership * importance / 100
		case entity.Empty:
			score += localScore(state.Boards[b], perspective, weights) * importance / 100
		}
	}

	return score
}

func localScore(board entity.Board, perspective entity.Mark, weights Weights) int {
	opponent := perspective.Opponent()

	switch board.DetermineResult() {
	case perspective:
		return weights.LocalWin
	case opponent:
		return -weights.LocalWin
	case entity.Tie:
		return 0
	}

	score := (board.CountThreats(perspective) - board.CountThreats(opponent)) * weights.LocalTwoInRow
	score += owner(board[entity.Center], perspective) * weights.LocalCenter

	for _, corner := range entity.Corners {
		score += owner(board[corner], perspective) * weights.LocalCorner
	}

	return score
}

// owner is +1 for perspective's mark, -1 for the opponent's and 0 otherwise.
func owner(mark, perspective entity.Mark) int {
	switch {
	case !mark.IsPlayer():
		return 0
	case mark == perspective:
		return 1
	default:
		return -1
	}
}
