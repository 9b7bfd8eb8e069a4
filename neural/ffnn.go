// Package neural provides feedforward neural network brains for animals.
package neural

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/forage/rng"
)

// NumOutputs is fixed: speed delta and rotation delta.
const NumOutputs = 2

// ErrShapeMismatch is returned when a genome or input vector does not match
// the network topology.
var ErrShapeMismatch = errors.New("shape mismatch")

// Topology describes a network with one hidden layer.
type Topology struct {
	Inputs  int
	Hidden  int
	Outputs int
}

// NewTopology returns the topology for an eye with the given sector count.
func NewTopology(inputs, hidden int) Topology {
	return Topology{Inputs: inputs, Hidden: hidden, Outputs: NumOutputs}
}

// ParamCount returns the genome length for this topology.
func (t Topology) ParamCount() int {
	return t.Hidden*t.Inputs + t.Hidden + t.Outputs*t.Hidden + t.Outputs
}

// Brain is a two-layer feedforward network.
// Genome layout: W1 (row-major, Hidden x Inputs) | B1 | W2 (row-major, Outputs x Hidden) | B2.
type Brain struct {
	topology Topology
	w1       *mat.Dense    // input -> hidden weights
	b1       *mat.VecDense // hidden biases
	w2       *mat.Dense    // hidden -> output weights
	b2       *mat.VecDense // output biases
}

// FromGenome builds a brain from a flat weight sequence.
// The genome is copied; it is never truncated or padded.
func FromGenome(t Topology, genome []float64) (*Brain, error) {
	if t.Inputs <= 0 || t.Hidden <= 0 || t.Outputs <= 0 {
		return nil, fmt.Errorf("topology %+v: %w", t, ErrShapeMismatch)
	}
	if len(genome) != t.ParamCount() {
		return nil, fmt.Errorf("genome has %d values, topology %+v needs %d: %w",
			len(genome), t, t.ParamCount(), ErrShapeMismatch)
	}

	data := make([]float64, len(genome))
	copy(data, genome)

	off := 0
	take := func(n int) []float64 {
		s := data[off : off+n : off+n]
		off += n
		return s
	}

	return &Brain{
		topology: t,
		w1:       mat.NewDense(t.Hidden, t.Inputs, take(t.Hidden*t.Inputs)),
		b1:       mat.NewVecDense(t.Hidden, take(t.Hidden)),
		w2:       mat.NewDense(t.Outputs, t.Hidden, take(t.Outputs*t.Hidden)),
		b2:       mat.NewVecDense(t.Outputs, take(t.Outputs)),
	}, nil
}

// Random creates a brain with every weight and bias drawn uniformly from [-1, 1).
func Random(t Topology, src rng.Source) (*Brain, error) {
	genome := make([]float64, t.ParamCount())
	for i := range genome {
		genome[i] = src.Range(-1, 1)
	}
	return FromGenome(t, genome)
}

// Topology returns the network shape.
func (b *Brain) Topology() Topology {
	return b.topology
}

// Genome flattens the network into a new slice. It is the exact inverse of FromGenome.
func (b *Brain) Genome() []float64 {
	genome := make([]float64, 0, b.topology.ParamCount())
	genome = append(genome, b.w1.RawMatrix().Data...)
	genome = append(genome, b.b1.RawVector().Data...)
	genome = append(genome, b.w2.RawMatrix().Data...)
	genome = append(genome, b.b2.RawVector().Data...)
	return genome
}

// Propagate computes the network output.
// Returns: speed delta [-1,1], rotation delta [-1,1], before movement scaling.
func (b *Brain) Propagate(inputs []float64) (speed, rotation float64, err error) {
	if len(inputs) != b.topology.Inputs {
		return 0, 0, fmt.Errorf("got %d inputs, want %d: %w", len(inputs), b.topology.Inputs, ErrShapeMismatch)
	}

	in := mat.NewVecDense(len(inputs), inputs)

	var hidden mat.VecDense
	hidden.MulVec(b.w1, in)
	hidden.AddVec(&hidden, b.b1)
	activate(&hidden)

	var out mat.VecDense
	out.MulVec(b.w2, &hidden)
	out.AddVec(&out, b.b2)
	activate(&out)

	return out.AtVec(0), out.AtVec(1), nil
}

// Clone creates a deep copy of the network.
func (b *Brain) Clone() *Brain {
	clone, err := FromGenome(b.topology, b.Genome())
	if err != nil {
		// Genome() always matches its own topology.
		panic(err)
	}
	return clone
}

// activate applies tanh in place.
func activate(v *mat.VecDense) {
	raw := v.RawVector()
	for i := 0; i < raw.N; i++ {
		raw.Data[i*raw.Inc] = math.Tanh(raw.Data[i*raw.Inc])
	}
}
