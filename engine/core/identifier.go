package core

import (
	"fmt"
	"sync"
)

// IdentifierPool hands out small integer ids for live objects and reuses the
// slots of released ones.
type IdentifierPool struct {
	mu     sync.Mutex
	owners []interface{}
}

func NewIdentifierPool() *IdentifierPool {
	return &IdentifierPool{}
}

func (p *IdentifierPool) Acquire(owner interface{}) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.owners {
		// Existing free spot. Take it.
		if p.owners[i] == nil {
			p.owners[i] = owner
			return uint32(i)
		}
	}
	p.owners = append(p.owners, owner)
	return uint32(len(p.owners) - 1)
}

func (p *IdentifierPool) Release(id uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.owners) == 0 {
		return ErrPoolNotStarted
	}
	if id >= uint32(len(p.owners)) || p.owners[id] == nil {
		return fmt.Errorf("%w: id '%d' (max=%d)", ErrUnknownID, id, len(p.owners))
	}
	p.owners[id] = nil
	return nil
}

// Live returns the owners that still hold an id, in id order.
func (p *IdentifierPool) Live() []interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	live := make([]interface{}, 0, len(p.owners))
	for _, o := range p.owners {
		if o != nil {
			live = append(live, o)
		}
	}
	return live
}
