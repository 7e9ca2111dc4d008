package local

import (
	"sync"
	"time"
)

// idGenerator hands out millisecond-timestamp ids that never repeat: when
// two ids are requested within the same millisecond (or the clock steps
// back) the previous id plus one is used instead.
type idGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func newIDGenerator(now func() time.Time) *idGenerator {
	return &idGenerator{now: now}
}

func (g *idGenerator) next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

// observe records an id already in use.
func (g *idGenerator) observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id > g.last {
		g.last = id
	}
}
