package entity

const (
	BoardSize = 9
	Center    = 4
)

var (
	WinCombos = [][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}

	Corners = [4]int{0, 2, 6, 8}
)

// Board is a 3x3 grid in row-major order. The same type holds a sub-board
// (cells) and the meta-board (sub-board outcomes, Empty meaning undecided).
type Board [BoardSize]Mark

// DetermineResult returns the winning mark, Tie when the grid is full with no
// winner, or Empty while the grid is undecided. Every combo is checked.
func (that Board) DetermineResult() Mark {
	winner := Empty
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a.IsPlayer() && a == b && b == c && winner == Empty {
			winner = a
		}
	}

	if winner != Empty {
		return winner
	}

	if that.IsFull() {
		return Tie
	}

	return Empty
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

// CountThreats counts lines holding two of mark and one empty position.
func (that Board) CountThreats(mark Mark) int {
	threats := 0
	for _, combo := range WinCombos {
		own, empty := 0, 0
		for _, i := range combo {
			switch that[i] {
			case mark:
				own++
			case Empty:
				empty++
			}
		}

		if own == 2 && empty == 1 {
			threats++
		}
	}

	return threats
}

// EmptyCells returns the indexes of empty positions in ascending order.
func (that Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == Empty {
			cells = append(cells, i)
		}
	}

	return cells
}

func IsCorner(i int) bool {
	for _, c := range Corners {
		if c == i {
			return true
		}
	}

	return false
}
