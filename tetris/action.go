package tetris

import "fmt"

// ComposedAction is a macro decision: rotate Rotation times, then shift the
// piece Shift columns (negative is left). It is realised one Command per tick
// through Decompose. Rotation is never negative.
type ComposedAction struct {
	Rotation int
	Shift    int
}

// IsEmpty reports whether no commands remain.
func (a ComposedAction) IsEmpty() bool {
	return a.Rotation == 0 && a.Shift == 0
}

// Decompose returns the next command and the remaining action. Rotations are
// emitted before shifts. An empty action yields CommandNone and stays empty.
func (a ComposedAction) Decompose() (Command, ComposedAction) {
	switch {
	case a.Rotation != 0:
		a.Rotation--
		return CommandRotate, a
	case a.Shift < 0:
		a.Shift++
		return CommandLeft, a
	case a.Shift > 0:
		a.Shift--
		return CommandRight, a
	default:
		return CommandNone, a
	}
}

// Commands returns the full command sequence of a.
func (a ComposedAction) Commands() []Command {
	var out []Command
	for !a.IsEmpty() {
		var c Command
		c, a = a.Decompose()
		out = append(out, c)
	}
	return out
}

func (a ComposedAction) String() string {
	return fmt.Sprintf("rotate %d, shift %+d", a.Rotation, a.Shift)
}
