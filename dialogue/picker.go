package dialogue

import (
	"math/rand"
	"sync"
)

// Picker chooses one of n canned replies for a reply category.
// Implementations must return an index in [0, n) and be safe for concurrent use.
type Picker interface {
	Pick(category string, n int) int
}

// RoundRobin cycles through each category's replies in table order.
type RoundRobin struct {
	mu   sync.Mutex
	next map[string]int
}

func NewRoundRobin() *RoundRobin {
	return &RoundRobin{next: make(map[string]int)}
}

func (p *RoundRobin) Pick(category string, n int) int {
	if n <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.next[category] % n
	p.next[category] = i + 1
	return i
}

type seededPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededPicker picks pseudo-randomly; the same seed replays the same sequence.
func NewSeededPicker(seed int64) Picker {
	return &seededPicker{rng: rand.New(rand.NewSource(seed))}
}

func (p *seededPicker) Pick(_ string, n int) int {
	if n <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n)
}
