// Package tetris implements the falling-block puzzle: pieces, the board grid,
// the 7-bag randomizer, board features and the per-tick game state machine.
//
// Every type in this package is a value. Transforms return new values and
// never mutate their receiver.
package tetris

import "image/color"

// Kind identifies one of the seven standard pieces. The zero value is not a
// valid kind; board cells use 0 for "empty" and the kind tag otherwise.
type Kind uint8

const (
	KindS Kind = iota + 1
	KindZ
	KindJ
	KindL
	KindI
	KindO
	KindT
)

// NumKinds is the number of distinct pieces in the standard set.
const NumKinds = 7

// Shape is the 4x4 occupancy mask of a single rotation. Row j of the mask
// extends downwards from the piece origin, column i to the right.
type Shape [4][4]uint8

var templates = [NumKinds][4]Shape{
	{ // S
		{{0, 1, 1, 0}, {1, 1, 0, 0}, {}, {}},
		{{0, 1, 0, 0}, {0, 1, 1, 0}, {0, 0, 1, 0}, {}},
		{{}, {0, 1, 1, 0}, {1, 1, 0, 0}, {}},
		{{1, 0, 0, 0}, {1, 1, 0, 0}, {0, 1, 0, 0}, {}},
	},
	{ // Z
		{{2, 2, 0, 0}, {0, 2, 2, 0}, {}, {}},
		{{0, 0, 2, 0}, {0, 2, 2, 0}, {0, 2, 0, 0}, {}},
		{{}, {2, 2, 0, 0}, {0, 2, 2, 0}, {}},
		{{0, 2, 0, 0}, {2, 2, 0, 0}, {2, 0, 0, 0}, {}},
	},
	{ // J
		{{3, 0, 0, 0}, {3, 3, 3, 0}, {}, {}},
		{{0, 3, 3, 0}, {0, 3, 0, 0}, {0, 3, 0, 0}, {}},
		{{}, {3, 3, 3, 0}, {0, 0, 3, 0}, {}},
		{{0, 3, 0, 0}, {0, 3, 0, 0}, {3, 3, 0, 0}, {}},
	},
	{ // L
		{{0, 0, 4, 0}, {4, 4, 4, 0}, {}, {}},
		{{0, 4, 0, 0}, {0, 4, 0, 0}, {0, 4, 4, 0}, {}},
		{{}, {4, 4, 4, 0}, {4, 0, 0, 0}, {}},
		{{4, 4, 0, 0}, {0, 4, 0, 0}, {0, 4, 0, 0}, {}},
	},
	{ // I
		{{}, {5, 5, 5, 5}, {}, {}},
		{{0, 0, 5, 0}, {0, 0, 5, 0}, {0, 0, 5, 0}, {0, 0, 5, 0}},
		{{}, {}, {5, 5, 5, 5}, {}},
		{{0, 5, 0, 0}, {0, 5, 0, 0}, {0, 5, 0, 0}, {0, 5, 0, 0}},
	},
	{ // O
		{{0, 6, 6, 0}, {0, 6, 6, 0}, {}, {}},
		{{0, 6, 6, 0}, {0, 6, 6, 0}, {}, {}},
		{{0, 6, 6, 0}, {0, 6, 6, 0}, {}, {}},
		{{0, 6, 6, 0}, {0, 6, 6, 0}, {}, {}},
	},
	{ // T
		{{0, 7, 0, 0}, {7, 7, 7, 0}, {}, {}},
		{{0, 7, 0, 0}, {0, 7, 7, 0}, {0, 7, 0, 0}, {}},
		{{}, {7, 7, 7, 0}, {0, 7, 0, 0}, {}},
		{{0, 7, 0, 0}, {7, 7, 0, 0}, {0, 7, 0, 0}, {}},
	},
}

// Green, red, blue, orange, cyan, yellow, purple.
var kindColors = [NumKinds]color.RGBA{
	{R: 0, G: 128, B: 0, A: 255},
	{R: 255, G: 0, B: 0, A: 255},
	{R: 0, G: 0, B: 255, A: 255},
	{R: 255, G: 163, B: 0, A: 255},
	{R: 0, G: 255, B: 255, A: 255},
	{R: 255, G: 255, B: 0, A: 255},
	{R: 138, G: 41, B: 224, A: 255},
}

// Valid reports whether k is one of the seven standard kinds.
func (k Kind) Valid() bool {
	return k >= KindS && k <= KindT
}

func (k Kind) String() string {
	if !k.Valid() {
		return "?"
	}
	return string("SZJLIOT"[k-1])
}

// Color is the display color for the kind. The core never uses it.
func (k Kind) Color() color.RGBA {
	if !k.Valid() {
		return color.RGBA{}
	}
	return kindColors[k-1]
}

// Command is a single-tick primitive applied to the active piece.
type Command uint8

const (
	// CommandNone is a gravity tick.
	CommandNone Command = iota
	CommandLeft
	CommandRight
	CommandDown
	CommandRotate
)

func (c Command) String() string {
	switch c {
	case CommandNone:
		return "None"
	case CommandLeft:
		return "Left"
	case CommandRight:
		return "Right"
	case CommandDown:
		return "Down"
	case CommandRotate:
		return "Rotate"
	default:
		return "Unknown"
	}
}

// Piece is a positioned, rotated piece. The shape table is shared and never
// changes; only Column, Row and Rotation differ between copies.
type Piece struct {
	kind     Kind
	column   int
	row      int
	rotation int
}

// NewPiece returns a piece of kind k at the spawn pose.
func NewPiece(k Kind) Piece {
	if !k.Valid() {
		panic("tetris: invalid piece kind")
	}
	return Piece{kind: k, column: SpawnColumn, row: SpawnRow}
}

func (p Piece) Kind() Kind    { return p.kind }
func (p Piece) Column() int   { return p.column }
func (p Piece) Row() int      { return p.row }
func (p Piece) Rotation() int { return p.rotation }

// NumRotations is 1 for the square piece and 4 for everything else.
func (p Piece) NumRotations() int {
	if p.kind == KindO {
		return 1
	}
	return 4
}

// Shape returns the mask of the current rotation.
func (p Piece) Shape() Shape {
	return p.ShapeAt(p.rotation)
}

// ShapeAt returns the mask of the given rotation.
func (p Piece) ShapeAt(rotation int) Shape {
	return templates[p.kind-1][rotation%4]
}

// Simulate returns a copy of p moved by a single command. Validity is not
// checked; callers must re-validate against a board.
func (p Piece) Simulate(c Command) Piece {
	switch c {
	case CommandLeft:
		p.column--
	case CommandRight:
		p.column++
	case CommandDown:
		p.row--
	case CommandRotate:
		p.rotation = (p.rotation + 1) % 4
	}
	return p
}

// Apply returns a copy of p with a macro-action realised instantly: the
// rotation count is added to the current rotation and the shift to the
// current column. Gravity is not applied.
func (p Piece) Apply(a ComposedAction) Piece {
	p.rotation = (p.rotation + a.Rotation) % 4
	p.column += a.Shift
	return p
}

// Cell is a board coordinate with row 0 at the bottom.
type Cell struct {
	Column, Row int
}

// Cells returns the board coordinates covered by the piece.
func (p Piece) Cells() []Cell {
	cells := make([]Cell, 0, 4)
	shape := p.Shape()
	for j, row := range shape {
		for i, v := range row {
			if v != 0 {
				cells = append(cells, Cell{Column: p.column + i, Row: p.row - j})
			}
		}
	}
	return cells
}

// BoundingBox is the minimal rectangle of occupied mask cells. MinX/MinY are
// offsets into the mask; Width/Height are the spans minus one, so a single
// column piece has Width 0.
type BoundingBox struct {
	MinX, MinY    int
	Width, Height int
}

// MaxX is the rightmost occupied mask column.
func (b BoundingBox) MaxX() int { return b.MinX + b.Width }

// BoundingBox returns the bounding box of the given rotation's mask.
func (p Piece) BoundingBox(rotation int) BoundingBox {
	shape := p.ShapeAt(rotation)
	minX, minY, maxX, maxY := 4, 4, -1, -1
	for j, row := range shape {
		for i, v := range row {
			if v == 0 {
				continue
			}
			minX = min(minX, i)
			maxX = max(maxX, i)
			minY = min(minY, j)
			maxY = max(maxY, j)
		}
	}
	return BoundingBox{MinX: minX, MinY: minY, Width: maxX - minX, Height: maxY - minY}
}
