package tictactoe

import (
	"sync"

	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/tictactoe-api/internal/entity"
)

// Picker - chooses one cell out of a non-empty list of candidates.
type Picker interface {
	Pick(candidates []entity.Coordinates) entity.Coordinates
}

type PickerFunc func(candidates []entity.Coordinates) entity.Coordinates

func (that PickerFunc) Pick(candidates []entity.Coordinates) entity.Coordinates {
	return that(candidates)
}

// RandomPicker - uniform choice, safe for concurrent use.
type RandomPicker struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomPicker(seed uint64) *RandomPicker {
	return &RandomPicker{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

func (that *RandomPicker) Pick(candidates []entity.Coordinates) entity.Coordinates {
	that.mu.Lock()
	defer that.mu.Unlock()

	return candidates[that.rnd.Intn(len(candidates))]
}
