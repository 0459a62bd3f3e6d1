package serial

import "sync"

// Handle identifies a slot of a Ports arena.
type Handle int

// Ports is a fixed set of port slots addressed by handle. A slot is owned by
// whoever opened it until Close.
type Ports struct {
	mu    sync.Mutex
	slots []*Port
	opts  []Option
}

// NewPorts returns an arena with n empty slots. opts apply to every port
// opened in it.
func NewPorts(n int, opts ...Option) *Ports {
	return &Ports{slots: make([]*Port, n), opts: opts}
}

// Open opens a port on drv in slot h.
func (ps *Ports) Open(h Handle, drv Driver, cfg Config) (*Port, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.valid(h) {
		return nil, ErrInvalidPort
	}
	if ps.slots[h] != nil {
		return nil, ErrPortInUse
	}

	p, err := Open(drv, cfg, ps.opts...)
	if err != nil {
		return nil, err
	}
	ps.slots[h] = p
	return p, nil
}

// Get returns the open port in slot h.
func (ps *Ports) Get(h Handle) (*Port, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if !ps.valid(h) {
		return nil, ErrInvalidPort
	}
	if ps.slots[h] == nil {
		return nil, ErrPortClosed
	}
	return ps.slots[h], nil
}

// Close closes the port in slot h and frees the slot.
func (ps *Ports) Close(h Handle) error {
	if !ps.valid(h) {
		return ErrInvalidPort
	}

	ps.mu.Lock()
	p := ps.slots[h]
	ps.slots[h] = nil
	ps.mu.Unlock()

	if p == nil {
		return ErrPortClosed
	}
	return p.Close()
}

// Tx queues b on port h.
func (ps *Ports) Tx(h Handle, b []byte) (int, error) {
	p, err := ps.Get(h)
	if err != nil {
		return 0, err
	}
	return p.Tx(b), nil
}

// Rx drains received bytes of port h into b.
func (ps *Ports) Rx(h Handle, b []byte) (int, error) {
	p, err := ps.Get(h)
	if err != nil {
		return 0, err
	}
	return p.Rx(b), nil
}

func (ps *Ports) valid(h Handle) bool {
	return h >= 0 && int(h) < len(ps.slots)
}
