// Package nn is a small fully connected value network with two ReLU hidden
// layers and a linear scalar output, trained by explicit gradient steps.
//
//	out = w3 · relu(w2 · relu(w1 · x))
//
// There are no bias terms; callers append a constant input when they need one.
package nn

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Network holds the three weight matrices. It keeps no state between calls:
// Forward returns the activations that Backward needs.
type Network struct {
	inputs int
	hidden int

	w1 *mat.Dense // hidden x inputs
	w2 *mat.Dense // hidden x hidden
	w3 *mat.Dense // 1 x hidden
}

// New returns a network with every weight drawn uniformly from [-1, 1].
func New(inputs, hidden int, rng *rand.Rand) *Network {
	if inputs <= 0 || hidden <= 0 {
		panic(fmt.Sprintf("nn: invalid topology %dx%d", inputs, hidden))
	}
	uniform := func(r, c int) *mat.Dense {
		data := make([]float64, r*c)
		for i := range data {
			data[i] = rng.Float64()*2 - 1
		}
		return mat.NewDense(r, c, data)
	}
	return &Network{
		inputs: inputs,
		hidden: hidden,
		w1:     uniform(hidden, inputs),
		w2:     uniform(hidden, hidden),
		w3:     uniform(1, hidden),
	}
}

func (n *Network) Inputs() int { return n.inputs }
func (n *Network) Hidden() int { return n.hidden }

// Activations is the record of one forward pass.
type Activations struct {
	input   *mat.VecDense
	hidden1 *mat.VecDense
	hidden2 *mat.VecDense
	output  float64
}

// Output is the value computed by the pass.
func (a *Activations) Output() float64 { return a.output }

// Gradients holds one gradient matrix per weight matrix.
type Gradients struct {
	W1, W2, W3 *mat.Dense
}

// Norm is the L2 norm of all gradient entries taken together.
func (g *Gradients) Norm() float64 {
	n1, n2, n3 := mat.Norm(g.W1, 2), mat.Norm(g.W2, 2), mat.Norm(g.W3, 2)
	return math.Sqrt(n1*n1 + n2*n2 + n3*n3)
}

// Forward evaluates the network on input.
func (n *Network) Forward(input []float64) (float64, *Activations) {
	if len(input) != n.inputs {
		panic(fmt.Sprintf("nn: input has %d values, want %d", len(input), n.inputs))
	}
	x := mat.NewVecDense(n.inputs, append([]float64(nil), input...))

	h1 := mat.NewVecDense(n.hidden, nil)
	h1.MulVec(n.w1, x)
	relu(h1)

	h2 := mat.NewVecDense(n.hidden, nil)
	h2.MulVec(n.w2, h1)
	relu(h2)

	out := mat.Dot(n.w3.RowView(0), h2)
	return out, &Activations{input: x, hidden1: h1, hidden2: h2, output: out}
}

// Evaluate is Forward without the activation record.
func (n *Network) Evaluate(input []float64) float64 {
	out, _ := n.Forward(input)
	return out
}

// Backward returns the gradient of grad·out with respect to every weight,
// where out is the output of the pass recorded in act.
func (n *Network) Backward(grad float64, act *Activations) *Gradients {
	if act == nil {
		panic("nn: backward without a forward pass")
	}

	g3 := mat.NewDense(1, n.hidden, nil)
	g3.Outer(grad, mat.NewVecDense(1, []float64{1}), act.hidden2)

	delta2 := mat.NewVecDense(n.hidden, nil)
	delta2.ScaleVec(grad, n.w3.RowView(0))
	reluMask(delta2, act.hidden2)

	g2 := mat.NewDense(n.hidden, n.hidden, nil)
	g2.Outer(1, delta2, act.hidden1)

	delta1 := mat.NewVecDense(n.hidden, nil)
	delta1.MulVec(n.w2.T(), delta2)
	reluMask(delta1, act.hidden1)

	g1 := mat.NewDense(n.hidden, n.inputs, nil)
	g1.Outer(1, delta1, act.input)

	return &Gradients{W1: g1, W2: g2, W3: g3}
}

// Update adds step times each gradient to its weights. A positive step is
// gradient ascent.
func (n *Network) Update(step float64, g *Gradients) {
	addScaled(n.w1, step, g.W1)
	addScaled(n.w2, step, g.W2)
	addScaled(n.w3, step, g.W3)
}

// Clone returns an independent copy of the weights.
func (n *Network) Clone() *Network {
	return &Network{
		inputs: n.inputs,
		hidden: n.hidden,
		w1:     mat.DenseCopyOf(n.w1),
		w2:     mat.DenseCopyOf(n.w2),
		w3:     mat.DenseCopyOf(n.w3),
	}
}

// CopyFrom overwrites the weights of n with those of src.
func (n *Network) CopyFrom(src *Network) {
	if n.inputs != src.inputs || n.hidden != src.hidden {
		panic("nn: topology mismatch")
	}
	n.w1.Copy(src.w1)
	n.w2.Copy(src.w2)
	n.w3.Copy(src.w3)
}

// Equal reports whether both networks hold identical weights.
func (n *Network) Equal(other *Network) bool {
	return mat.Equal(n.w1, other.w1) && mat.Equal(n.w2, other.w2) && mat.Equal(n.w3, other.w3)
}

// Weights exposes the weight matrices read-only.
func (n *Network) Weights() (w1, w2, w3 mat.Matrix) {
	return n.w1, n.w2, n.w3
}

func relu(v *mat.VecDense) {
	for i := range v.Len() {
		if v.AtVec(i) < 0 {
			v.SetVec(i, 0)
		}
	}
}

// reluMask zeroes the entries of grad whose post-activation value was not
// positive.
func reluMask(grad, activation *mat.VecDense) {
	for i := range grad.Len() {
		if activation.AtVec(i) <= 0 {
			grad.SetVec(i, 0)
		}
	}
}

func addScaled(dst *mat.Dense, alpha float64, g *mat.Dense) {
	var scaled mat.Dense
	scaled.Scale(alpha, g)
	dst.Add(dst, &scaled)
}
