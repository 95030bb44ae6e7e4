package channel

import "sync"

// BatchResolver receives exactly one matching batch acknowledgment.
type BatchResolver func(BatchComplete)

// PendingBatches maps application-assigned batch numbers to resolvers.
// A resolver is removed the moment it fires; duplicate acks are dropped.
type PendingBatches struct {
	mu        sync.Mutex
	resolvers map[int]BatchResolver
}

// NewPendingBatches creates an empty resolver table.
func NewPendingBatches() *PendingBatches {
	return &PendingBatches{resolvers: make(map[int]BatchResolver)}
}

// Register installs the resolver for a batch number. Callers register before
// sending so the ack cannot race the registration. Registering an already
// pending number replaces the old resolver.
func (p *PendingBatches) Register(batchNumber int, resolve BatchResolver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resolvers[batchNumber] = resolve
}

// Resolve fires and removes the resolver for an acknowledgment. Returns
// false when no resolver was pending under that number.
func (p *PendingBatches) Resolve(ack BatchComplete) bool {
	p.mu.Lock()
	resolve, ok := p.resolvers[ack.BatchNumber]
	if ok {
		delete(p.resolvers, ack.BatchNumber)
	}
	p.mu.Unlock()

	if !ok {
		return false
	}
	resolve(ack)
	return true
}

// Len returns the number of unresolved batches. There is no expiry path, so
// this is the observable signal for leaks under a permanent disconnect.
func (p *PendingBatches) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.resolvers)
}
