// Package dice is the host's randomness source. The engine only consumes
// the values; any source producing the same values yields the same game.
package dice

import (
	"sync"

	"github.com/DedS3t/monopoly-engine/app/models"
	"golang.org/x/exp/rand"
)

type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSource(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns two dice, each in [1,6].
func (s *Source) Roll() models.Dice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Dice{s.rng.Intn(6) + 1, s.rng.Intn(6) + 1}
}

// Draw returns a card index in [0,n).
func (s *Source) Draw(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
