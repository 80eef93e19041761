package todo

import (
	"errors"
	"time"
)

// MaxTaskID is the largest id a task may carry: 2^53-1, the biggest integer
// every JSON reader decodes exactly.
const MaxTaskID int64 = 1<<53 - 1

// ErrIDsExhausted is returned when no id above the current maximum is left.
var ErrIDsExhausted = errors.New("task ids exhausted")

// IDGenerator hands out task ids that are strictly increasing for the life
// of the generator. Ids follow the millisecond clock when it is ahead and
// fall back to last+1 when several tasks are created within one tick.
type IDGenerator struct {
	last int64
	now  func() time.Time
}

// NewIDGenerator returns a generator whose ids are all greater than seed.
func NewIDGenerator(seed int64) *IDGenerator {
	return &IDGenerator{last: seed, now: time.Now}
}

// Next returns a fresh id in [1, MaxTaskID].
func (g *IDGenerator) Next() (int64, error) {
	if g.last >= MaxTaskID {
		return 0, ErrIDsExhausted
	}
	id := g.now().UnixMilli()
	if id <= g.last || id > MaxTaskID {
		id = g.last + 1
	}
	g.last = id
	return id, nil
}
