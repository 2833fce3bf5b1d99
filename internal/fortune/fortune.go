// Package fortune serves the short messages behind GET /fortune.
package fortune

import (
	"math/rand/v2"
	"sync"
)

var defaultFortunes = []string{
	"A fresh start will put you on your way.",
	"Your hard work is about to pay off.",
	"An unexpected conversation will teach you something new.",
	"Small steps every day add up to big results.",
	"The answer you seek is closer than you think.",
	"Curiosity will lead you somewhere worth going.",
	"Today is a good day to ask a better question.",
	"Patience now brings clarity later.",
}

// Teller picks fortunes at random. It is safe for concurrent use.
type Teller struct {
	mu       sync.Mutex
	rng      *rand.Rand
	fortunes []string
}

// New returns a Teller over the built-in list. A non-zero seed makes picks repeatable.
func New(seed uint64) *Teller {
	return NewWith(seed, defaultFortunes)
}

// NewWith returns a Teller over fortunes, falling back to the built-in list when empty.
func NewWith(seed uint64, fortunes []string) *Teller {
	if len(fortunes) == 0 {
		fortunes = defaultFortunes
	}
	var src rand.Source
	if seed == 0 {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	} else {
		src = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	}
	return &Teller{rng: rand.New(src), fortunes: append([]string(nil), fortunes...)}
}

// Fortune returns one message.
func (t *Teller) Fortune() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fortunes[t.rng.IntN(len(t.fortunes))]
}
