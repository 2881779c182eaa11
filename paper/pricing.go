package paper

import (
	"math/rand"
	"sync"
	"time"
)

// priceWalk produces the simulated market price. Every step perturbs the
// last price by a uniformly sampled percentage inside the drift band and
// keeps the result, so successive queries describe a random walk.
type priceWalk struct {
	mu    sync.Mutex
	last  float64
	drift float64 // half-width of the band, in percent
	rng   *rand.Rand
}

func newPriceWalk(initial, driftPercent float64, seed int64) *priceWalk {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &priceWalk{
		last:  initial,
		drift: driftPercent,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Next advances the walk one step and returns the new price.
func (w *priceWalk) Next() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	change := (w.rng.Float64()*2 - 1) * w.drift / 100
	w.last *= 1 + change
	return w.last
}

// Last returns the most recent price without advancing the walk.
func (w *priceWalk) Last() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}
