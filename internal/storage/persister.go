package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nibzard/webnote/internal/todo"
)

// Persister mirrors a todo.Store into a Slot. It is both the Store's Loader
// and one of its Listeners.
type Persister struct {
	slot   Slot
	logger *log.Logger
}

// NewPersister returns a persister writing to slot. A nil logger discards.
func NewPersister(slot Slot, logger *log.Logger) *Persister {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Persister{slot: slot, logger: logger}
}

// Slot returns the underlying slot.
func (p *Persister) Slot() Slot {
	return p.slot
}

// Save overwrites the slot with the encoded list.
func (p *Persister) Save(ctx context.Context, list todo.List) error {
	data, err := Encode(list)
	if err != nil {
		return err
	}
	if err := p.slot.Put(ctx, data); err != nil {
		return fmt.Errorf("save %s: %w", p.slot.Location(), err)
	}
	p.logger.Debug("saved task list", "slot", p.slot.Location(), "tasks", len(list))
	return nil
}

// Load reads the slot. Empty, unreadable or malformed values are reported as
// absent and logged; they never fail the caller.
func (p *Persister) Load(ctx context.Context) (todo.List, bool) {
	list, err := p.Inspect(ctx)
	if err != nil {
		if !errors.Is(err, ErrAbsent) {
			p.logger.Warn("ignoring stored task list", "slot", p.slot.Location(), "err", err)
		}
		return nil, false
	}
	p.logger.Debug("loaded task list", "slot", p.slot.Location(), "tasks", len(list))
	return list, true
}

// Inspect is Load with the reason for rejection kept. It returns ErrAbsent
// when the slot holds nothing.
func (p *Persister) Inspect(ctx context.Context) (todo.List, error) {
	data, err := p.slot.Get(ctx)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// StateChanged saves the list carried by the event.
func (p *Persister) StateChanged(ctx context.Context, ev todo.Event) error {
	return p.Save(ctx, ev.List)
}
