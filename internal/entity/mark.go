package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Mark is the content of a cell or, on the meta-board, the outcome of a sub-board.
type Mark uint8

const (
	Empty Mark = iota
	X
	O
	// Tie is only ever stored on the meta-board.
	Tie
)

const (
	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""
)

var ErrUnknownMark = errors.New("unknown mark")

func (that Mark) String() string {
	switch that {
	case X:
		return PlayerX
	case O:
		return PlayerO
	case Tie:
		return PlayerTie
	default:
		return EmptyCell
	}
}

// IsPlayer reports whether the mark belongs to one of the two players.
func (that Mark) IsPlayer() bool {
	return that == X || that == O
}

// Opponent returns the other player's mark. Non-player marks are returned unchanged.
func (that Mark) Opponent() Mark {
	switch that {
	case X:
		return O
	case O:
		return X
	default:
		return that
	}
}

func ParseMark(s string) (Mark, error) {
	switch s {
	case PlayerX:
		return X, nil
	case PlayerO:
		return O, nil
	case PlayerTie:
		return Tie, nil
	case EmptyCell:
		return Empty, nil
	default:
		return Empty, fmt.Errorf("%w: %q", ErrUnknownMark, s)
	}
}

func (that Mark) MarshalJSON() ([]byte, error) {
	return json.Marshal(that.String())
}

func (that *Mark) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to unmarshal mark: %w", err)
	}

	mark, err := ParseMark(s)
	if err != nil {
		return err
	}

	*that = mark

	return nil
}
