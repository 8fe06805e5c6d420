package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/ultimate-tictactoe-backend/internal/apperror"
)

// AnyBoard marks an unconstrained turn: the player may pick any undecided sub-board.
const AnyBoard = -1

var (
	ErrInvalidCell      = errors.New("invalid cell index")
	ErrInvalidBoard     = errors.New("invalid board index")
	ErrInvalidMark      = errors.New("invalid mark")
	ErrInconsistentMeta = errors.New("meta-board does not match sub-boards")
)

type Move struct {
	Board int `json:"board"`
	Cell  int `json:"cell"`
}

func (that Move) String() string {
	return fmt.Sprintf("(%d,%d)", that.Board, that.Cell)
}

// State is a full ultimate tic-tac-toe position. It is a value: copies never
// share cells, so transitions always return a fresh State.
type State struct {
	Boards [BoardSize]Board `json:"boards"`
	Meta   Board            `json:"meta"`
	Active int              `json:"active"`
	Turn   Mark             `json:"turn"`
}

func NewState(first Mark) State {
	return State{
		Active: AnyBoard,
		Turn:   first,
	}
}

// Result is the meta-board outcome: Empty while the game goes on.
func (that State) Result() Mark {
	return that.Meta.DetermineResult()
}

func (that State) IsOver() bool {
	return that.Result() != Empty
}

// IsUnconstrained reports whether the side to move may choose any undecided sub-board.
func (that State) IsUnconstrained() bool {
	return that.Active == AnyBoard || that.Meta[that.Active] != Empty
}

func (that State) LegalMoves() []Move {
	if that.IsOver() {
		return nil
	}

	if !that.IsUnconstrained() {
		return movesIn(that.Boards[that.Active], that.Active, nil)
	}

	var moves []Move
	for b := range that.Boards {
		if that.Meta[b] != Empty {
			continue
		}

		moves = movesIn(that.Boards[b], b, moves)
	}

	return moves
}

func movesIn(board Board, index int, moves []Move) []Move {
	for _, cell := range board.EmptyCells() {
		moves = append(moves, Move{Board: index, Cell: cell})
	}

	return moves
}

// Validate checks a move for the side to move without changing anything.
func (that State) Validate(move Move) error {
	if that.IsOver() {
		return apperror.ErrGameFinished
	}

	if !that.Turn.IsPlayer() {
		return fmt.Errorf("%w: %q", ErrInvalidMark, that.Turn)
	}

	if move.Board < 0 || move.Board >= BoardSize {
		return fmt.Errorf("%w: board %d", ErrInvalidBoard, move.Board)
	}

	if move.Cell < 0 || move.Cell >= BoardSize {
		return fmt.Errorf("%w: cell %d", ErrInvalidCell, move.Cell)
	}

	if that.Meta[move.Board] != Empty {
		return fmt.Errorf("%w: board %d", apperror.ErrBoardDecided, move.Board)
	}

	if !that.IsUnconstrained() && move.Board != that.Active {
		return fmt.Errorf("%w: expected board %d, got %d", apperror.ErrWrongBoard, that.Active, move.Board)
	}

	if that.Boards[move.Board][move.Cell] != Empty {
		return fmt.Errorf("%w: %s", apperror.ErrCellOccupied, move)
	}

	return nil
}

// Apply validates the move and returns the resulting state. The receiver is
// never modified, also when the move is rejected.
func (that State) Apply(move Move) (State, error) {
	if err := that.Validate(move); err != nil {
		return that, err
	}

	return that.transition(move), nil
}

// Play applies a move taken from LegalMoves without validating it again.
func (that State) Play(move Move) State {
	return that.transition(move)
}

func (that State) transition(move Move) State {
	next := that

	next.Boards[move.Board][move.Cell] = that.Turn

	if next.Meta[move.Board] == Empty {
		next.Meta[move.Board] = next.Boards[move.Board].DetermineResult()
	}

	next.Active = move.Cell
	if next.Meta[move.Cell] != Empty {
		next.Active = AnyBoard
	}

	next.Turn = that.Turn.Opponent()

	return next
}

// DecidedBoards counts sub-boards that already have an outcome.
func (that State) DecidedBoards() int {
	n := 0
	for _, outcome := range that.Meta {
		if outcome != Empty {
			n++
		}
	}

	return n
}

// CheckConsistency verifies a state received from outside: the constraint must
// be in range and every meta entry must match its sub-board.
func (that State) CheckConsistency() error {
	if that.Active != AnyBoard && (that.Active < 0 || that.Active >= BoardSize) {
		return fmt.Errorf("%w: active board %d", ErrInvalidBoard, that.Active)
	}

	if !that.Turn.IsPlayer() {
		return fmt.Errorf("%w: %q", ErrInvalidMark, that.Turn)
	}

	for b, board := range that.Boards {
		for c, cell := range board {
			if cell != Empty && !cell.IsPlayer() {
				return fmt.Errorf("%w: board %d cell %d holds %q", ErrInvalidMark, b, c, cell)
			}
		}

		if result := board.DetermineResult(); that.Meta[b] != result {
			return fmt.Errorf("%w: board %d is %q, meta says %q", ErrInconsistentMeta, b, result, that.Meta[b])
		}
	}

	return nil
}
