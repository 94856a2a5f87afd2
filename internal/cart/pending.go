package cart

import "sync"

// pendingSet tracks which products have an add-to-cart in flight. It drives
// the per-row spinner and guards against a second add for the same product
// before the first settles.
type pendingSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newPendingSet() *pendingSet {
	return &pendingSet{ids: make(map[string]struct{})}
}

// begin marks productID pending; false when it already is.
func (p *pendingSet) begin(productID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.ids[productID]; exists {
		return false
	}
	p.ids[productID] = struct{}{}
	return true
}

func (p *pendingSet) end(productID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.ids, productID)
}

func (p *pendingSet) has(productID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, exists := p.ids[productID]
	return exists
}
