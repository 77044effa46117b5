package tetris

import "strings"

const (
	Width  = 10
	Height = 24

	// VisibleHeight is the number of rows a presentation layer shows. The rows
	// above it are spawn space.
	VisibleHeight = 20

	SpawnColumn = 3
	SpawnRow    = Height - 1
)

// Board is the grid of locked cells. Row 0 is the bottom row. A cell holds 0
// when empty and the locked piece's kind tag otherwise.
type Board struct {
	cells [Height][Width]uint8
}

// At returns the tag stored at (column, row). Out of range coordinates read
// as empty.
func (b Board) At(column, row int) uint8 {
	if !inBounds(column, row) {
		return 0
	}
	return b.cells[row][column]
}

// With returns a copy of b with (column, row) set to tag.
func (b Board) With(column, row int, tag uint8) Board {
	if inBounds(column, row) {
		b.cells[row][column] = tag
	}
	return b
}

func inBounds(column, row int) bool {
	return column >= 0 && column < Width && row >= 0 && row < Height
}

// IsValid reports whether every cell of p is inside the board and empty.
func (b Board) IsValid(p Piece) bool {
	shape := p.Shape()
	for j, row := range shape {
		for i, v := range row {
			if v == 0 {
				continue
			}
			x, y := p.column+i, p.row-j
			if !inBounds(x, y) || b.cells[y][x] != 0 {
				return false
			}
		}
	}
	return true
}

// HardDrop moves p down while it stays valid and returns the lowest valid
// pose. An already invalid piece is returned unchanged.
func (b Board) HardDrop(p Piece) Piece {
	for {
		next := p.Simulate(CommandDown)
		if !b.IsValid(next) {
			return p
		}
		p = next
	}
}

// Integrate returns a copy of b with the cells of p written with its tag.
// Cells outside the board are dropped.
func (b Board) Integrate(p Piece) Board {
	shape := p.Shape()
	for j, row := range shape {
		for i, v := range row {
			if v == 0 {
				continue
			}
			x, y := p.column+i, p.row-j
			if inBounds(x, y) {
				b.cells[y][x] = v
			}
		}
	}
	return b
}

// IsRowFull reports whether every cell of the row is occupied.
func (b Board) IsRowFull(row int) bool {
	for _, v := range b.cells[row] {
		if v == 0 {
			return false
		}
	}
	return true
}

// ClearFullRows removes every full row, shifting the rows above each one down
// by one, and returns the resulting board with the number of rows removed.
// Rows are tested against the input grid, scanning from the top.
func (b Board) ClearFullRows() (Board, int) {
	out := b
	removed := 0
	for j := Height - 1; j >= 0; j-- {
		if !b.IsRowFull(j) {
			continue
		}
		copy(out.cells[j:Height-1], out.cells[j+1:])
		out.cells[Height-1] = [Width]uint8{}
		removed++
	}
	return out, removed
}

// String renders the visible rows top-down, '.' for empty cells and the kind
// letter otherwise.
func (b Board) String() string {
	var sb strings.Builder
	sb.Grow(VisibleHeight * (Width + 1))
	for j := VisibleHeight - 1; j >= 0; j-- {
		for _, v := range b.cells[j] {
			if v == 0 {
				sb.WriteByte('.')
			} else {
				sb.WriteString(Kind(v).String())
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
