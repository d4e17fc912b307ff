package sampler

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/crimson-sun/marionette/internal/model"
)

// Sampler draws next-pose vectors from mixture-density predictions.
// It holds nothing but its random source: Sample never mutates its
// inputs and is deterministic for a fixed source.
type Sampler struct {
	rng *rand.Rand
}

// New creates a Sampler over the given random source. A nil source
// seeds from the wall clock.
func New(src rand.Source) *Sampler {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Sampler{rng: rand.New(src)}
}

// Sample draws one D-length vector from the mixture described by pred.
// Temperature sharpens or flattens the component choice and scales the
// variance of the chosen Gaussian; both effects come from the single
// control value.
func (s *Sampler) Sample(pred model.MixturePrediction, temperature float64) (model.FlatVector, error) {
	m := len(pred.Weights)
	if m == 0 {
		return nil, fmt.Errorf("sampler: zero mixture components: %w", model.ErrInvalidDistribution)
	}
	if len(pred.Means) == 0 || len(pred.Means)%m != 0 {
		return nil, fmt.Errorf("sampler: means length %d does not split across %d components: %w",
			len(pred.Means), m, model.ErrInvalidDistribution)
	}
	if len(pred.Stddevs) != len(pred.Means) {
		return nil, fmt.Errorf("sampler: stddevs length %d != means length %d: %w",
			len(pred.Stddevs), len(pred.Means), model.ErrInvalidDistribution)
	}
	for i, sd := range pred.Stddevs {
		if sd < 0 {
			return nil, fmt.Errorf("sampler: negative stddev %g at index %d: %w",
				sd, i, model.ErrInvalidDistribution)
		}
	}
	d := len(pred.Means) / m

	probs := categorical(pred.Weights, temperature)
	k := s.draw(probs)

	mean := pred.Means[k*d : (k+1)*d]
	stddev := pred.Stddevs[k*d : (k+1)*d]

	out := make(model.FlatVector, d)
	for i := range out {
		sigma := float64(stddev[i]) * temperature
		out[i] = float32(float64(mean[i]) + sigma*s.gauss())
	}
	return out, nil
}

// categorical converts raw component weights into selection
// probabilities at the given temperature.
//
// Temperature 1 is a deliberate carve-out: the weights are assumed to
// already be a valid probability vector and pass through untouched, no
// softmax applied. Any other temperature divides the logits and applies
// a numerically stable softmax (max subtracted before exponentiating).
func categorical(weights []float32, temperature float64) []float64 {
	probs := make([]float64, len(weights))
	for i, w := range weights {
		probs[i] = float64(w)
	}
	if temperature == 1 {
		return probs
	}

	floats.Scale(1/temperature, probs)
	floats.AddConst(-floats.Max(probs), probs)
	for i, v := range probs {
		probs[i] = math.Exp(v)
	}
	floats.Scale(1/floats.Sum(probs), probs)
	return probs
}

// draw picks a component index by accumulating probabilities in index
// order against one uniform draw. If rounding leaves the cumulative sum
// short of u, the max-weight component is used so a well-formed vector
// always yields a valid index.
func (s *Sampler) draw(probs []float64) int {
	u := s.rng.Float64()
	var cum float64
	for i, p := range probs {
		cum += p
		if cum > u {
			return i
		}
	}
	return floats.MaxIdx(probs)
}

// gauss draws one standard normal variate with the Box–Muller
// transform. u1 is re-rolled away from zero to keep the logarithm
// finite.
func (s *Sampler) gauss() float64 {
	u1 := s.rng.Float64()
	for u1 == 0 {
		u1 = s.rng.Float64()
	}
	u2 := s.rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
