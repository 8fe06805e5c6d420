package engine

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/entity"
)

var ErrInvalidWeights = errors.New("invalid weights")

// Weights is the versioned heuristic table shared by the evaluator and the
// move orderer. It is passed by value and never changed after loading.
// Importance values are percentages.
type Weights struct {
	Version string `yaml:"version" env-default:"v1"`

	MetaWin       int `yaml:"meta-win" env-default:"10000"`
	MetaTwoInRow  int `yaml:"meta-two-in-row" env-default:"500"`
	MetaOwnership int `yaml:"meta-ownership" env-default:"100"`

	LocalWin      int `yaml:"local-win" env-default:"150"`
	LocalTwoInRow int `yaml:"local-two-in-row" env-default:"20"`
	LocalCenter   int `yaml:"local-center" env-default:"8"`
	LocalCorner   int `yaml:"local-corner" env-default:"5"`

	CenterImportance int `yaml:"center-importance" env-default:"200"`
	CornerImportance int `yaml:"corner-importance" env-default:"150"`
	EdgeImportance   int `yaml:"edge-importance" env-default:"100"`

	OrderGameWin    int `yaml:"order-game-win" env-default:"10000"`
	OrderBoardWin   int `yaml:"order-board-win" env-default:"1000"`
	OrderBlock      int `yaml:"order-block" env-default:"800"`
	OrderMetaBlock  int `yaml:"order-meta-block" env-default:"400"`
	OrderThreat     int `yaml:"order-threat" env-default:"100"`
	OrderCenterCell int `yaml:"order-center-cell" env-default:"50"`
	OrderCornerCell int `yaml:"order-corner-cell" env-default:"30"`
	OrderEdgeCell   int `yaml:"order-edge-cell" env-default:"10"`
	OrderImportance int `yaml:"order-importance" env-default:"10"`
	OrderFreeChoice int `yaml:"order-free-choice" env-default:"80"`
}

func DefaultWeights() Weights {
	return Weights{
		Version: "v1",

		MetaWin:       10000,
		MetaTwoInRow:  500,
		MetaOwnership: 100,

		LocalWin:      150,
		LocalTwoInRow: 20,
		LocalCenter:   8,
		LocalCorner:   5,

		CenterImportance: 200,
		CornerImportance: 150,
		EdgeImportance:   100,

		OrderGameWin:    10000,
		OrderBoardWin:   1000,
		OrderBlock:      800,
		OrderMetaBlock:  400,
		OrderThreat:     100,
		OrderCenterCell: 50,
		OrderCornerCell: 30,
		OrderEdgeCell:   10,
		OrderImportance: 10,
		OrderFreeChoice: 80,
	}
}

// Importance returns the multiplier of a meta-board position in percent.
func (that Weights) Importance(board int) int {
	switch {
	case board == entity.Center:
		return that.CenterImportance
	case entity.IsCorner(board):
		return that.CornerImportance
	default:
		return that.EdgeImportance
	}
}

func (that Weights) cellBonus(cell int) int {
	switch {
	case cell == entity.Center:
		return that.OrderCenterCell
	case entity.IsCorner(cell):
		return that.OrderCornerCell
	default:
		return that.OrderEdgeCell
	}
}

// Validate checks the ordering the search relies on: a won game outweighs
// everything else, wins beat threats and threats beat position.
func (that Weights) Validate() error {
	if that.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidWeights)
	}

	if !descending(that.CenterImportance, that.CornerImportance, that.EdgeImportance, 0) {
		return fmt.Errorf("%w: importance must satisfy center > corner > edge > 0", ErrInvalidWeights)
	}

	if !descending(that.MetaTwoInRow, that.LocalWin, that.LocalTwoInRow, that.LocalCenter, that.LocalCorner, 0) {
		return fmt.Errorf("%w: evaluation weights must decrease from meta threats to local corners", ErrInvalidWeights)
	}

	if that.MetaOwnership <= 0 {
		return fmt.Errorf("%w: meta ownership must be positive", ErrInvalidWeights)
	}

	if that.MetaWin <= that.maxPositional() {
		return fmt.Errorf("%w: meta win %d does not dominate the positional maximum %d",
			ErrInvalidWeights, that.MetaWin, that.maxPositional())
	}

	if !descending(that.OrderGameWin, that.OrderBoardWin, that.OrderBlock, that.OrderThreat, that.OrderCenterCell) {
		return fmt.Errorf("%w: order priorities must decrease from game win to cell bonus", ErrInvalidWeights)
	}

	if !descending(that.OrderCenterCell, that.OrderCornerCell, that.OrderEdgeCell) || that.OrderEdgeCell < 0 {
		return fmt.Errorf("%w: cell bonuses must satisfy center > corner > edge >= 0", ErrInvalidWeights)
	}

	if that.OrderMetaBlock < 0 || that.OrderImportance < 0 || that.OrderFreeChoice < 0 {
		return fmt.Errorf("%w: order adjustments must not be negative", ErrInvalidWeights)
	}

	return nil
}

// maxPositional bounds every non-terminal term of Evaluate from above.
func (that Weights) maxPositional() int {
	local := len(entity.WinCombos)*that.LocalTwoInRow + that.LocalCenter + len(entity.Corners)*that.LocalCorner
	perBoard := max(local, that.LocalWin, that.MetaOwnership) * that.CenterImportance / 100

	return len(entity.WinCombos)*that.MetaTwoInRow + entity.BoardSize*perBoard
}

func descending(values ...int) bool {
	for i := 1; i < len(values); i++ {
		if values[i-1] <= values[i] {
			return false
		}
	}

	return true
}
