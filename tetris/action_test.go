package tetris_test

import (
	"fmt"
	"testing"

	"github.com/plus3/tetrisrl/tetris"
	"github.com/stretchr/testify/assert"
)

func TestDecompose(t *testing.T) {
	for r := 0; r < 4; r++ {
		for s := -5; s <= 5; s++ {
			t.Run(fmt.Sprintf("r=%d,s=%d", r, s), func(t *testing.T) {
				cmds := tetris.ComposedAction{Rotation: r, Shift: s}.Commands()

				shift := s
				if shift < 0 {
					shift = -shift
				}
				assert.Len(t, cmds, r+shift)

				for i, c := range cmds {
					switch {
					case i < r:
						assert.Equal(t, tetris.CommandRotate, c)
					case s < 0:
						assert.Equal(t, tetris.CommandLeft, c)
					default:
						assert.Equal(t, tetris.CommandRight, c)
					}
				}
			})
		}
	}
}

func TestDecomposeEmpty(t *testing.T) {
	var a tetris.ComposedAction
	assert.True(t, a.IsEmpty())

	cmd, rest := a.Decompose()
	assert.Equal(t, tetris.CommandNone, cmd)
	assert.True(t, rest.IsEmpty())
	assert.Empty(t, a.Commands())
}

func ExampleComposedAction_Decompose() {
	action := tetris.ComposedAction{Rotation: 1, Shift: -2}
	for !action.IsEmpty() {
		var cmd tetris.Command
		cmd, action = action.Decompose()
		fmt.Println(cmd)
	}
	// Output:
	// Rotate
	// Left
	// Left
}
