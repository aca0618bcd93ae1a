package model

// Board is a fixed-size grid of letter stacks.
// Cells are addressed by index in row-major order; the last element of a
// stack is its top (the visible, playable letter).
type Board struct {
	Rows  int      `json:"rows"`
	Cols  int      `json:"cols"`
	Cells [][]rune `json:"cells"`
}

// NewBoard creates a board of rows x cols empty stacks
func NewBoard(rows, cols int) *Board {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	cells := make([][]rune, rows*cols)
	for i := range cells {
		cells[i] = []rune{}
	}
	return &Board{
		Rows:  rows,
		Cols:  cols,
		Cells: cells,
	}
}

// Len returns the number of cells on the board
func (b *Board) Len() int {
	return len(b.Cells)
}

// IsValidIndex returns true if the index addresses a cell
func (b *Board) IsValidIndex(idx int) bool {
	return idx >= 0 && idx < len(b.Cells)
}

// Height returns the stack height of a cell, or 0 for an invalid index
func (b *Board) Height(idx int) int {
	if !b.IsValidIndex(idx) {
		return 0
	}
	return len(b.Cells[idx])
}

// Top returns the visible letter of a cell, or 0 if the cell is empty
func (b *Board) Top(idx int) rune {
	if b.Height(idx) == 0 {
		return 0
	}
	stack := b.Cells[idx]
	return stack[len(stack)-1]
}

// Push places a letter on top of a cell and returns the new height
func (b *Board) Push(idx int, letter rune) int {
	if !b.IsValidIndex(idx) {
		return 0
	}
	b.Cells[idx] = append(b.Cells[idx], letter)
	return len(b.Cells[idx])
}

// Pop removes and returns the top letter of a cell.
// Returns false if the cell is empty.
func (b *Board) Pop(idx int) (rune, bool) {
	if b.Height(idx) == 0 {
		return 0, false
	}
	stack := b.Cells[idx]
	letter := stack[len(stack)-1]
	b.Cells[idx] = stack[:len(stack)-1]
	return letter, true
}

// IsCleared returns true if every stack is empty
func (b *Board) IsCleared() bool {
	for _, stack := range b.Cells {
		if len(stack) > 0 {
			return false
		}
	}
	return true
}

// MaxHeight returns the tallest stack height on the board
func (b *Board) MaxHeight() int {
	max := 0
	for _, stack := range b.Cells {
		if len(stack) > max {
			max = len(stack)
		}
	}
	return max
}

// Heights returns the stack height of every cell
func (b *Board) Heights() []int {
	heights := make([]int, len(b.Cells))
	for i, stack := range b.Cells {
		heights[i] = len(stack)
	}
	return heights
}

// EmptyCells returns the indices of all cells with no letters
func (b *Board) EmptyCells() []int {
	var empty []int
	for i, stack := range b.Cells {
		if len(stack) == 0 {
			empty = append(empty, i)
		}
	}
	return empty
}

// Tops returns the visible letter of every cell (0 for empty cells)
func (b *Board) Tops() []rune {
	tops := make([]rune, len(b.Cells))
	for i := range b.Cells {
		tops[i] = b.Top(i)
	}
	return tops
}

// TotalLetters returns the number of letters across all stacks
func (b *Board) TotalLetters() int {
	total := 0
	for _, stack := range b.Cells {
		total += len(stack)
	}
	return total
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	cells := make([][]rune, len(b.Cells))
	for i, stack := range b.Cells {
		cells[i] = append([]rune{}, stack...)
	}
	return &Board{
		Rows:  b.Rows,
		Cols:  b.Cols,
		Cells: cells,
	}
}
