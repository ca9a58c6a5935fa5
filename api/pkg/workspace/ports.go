package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/atelierhq/atelier/api/pkg/types"
)

// portAllocator hands out host port pairs from the configured range.
// Ports held by sessions in an active status are excluded via the store,
// the in-process reservation set closes the window between picking a
// pair and the session row existing. Cross-process races are left to
// Docker: a bind failure surfaces as a creation failure.
type portAllocator struct {
	mu       sync.Mutex
	start    int
	end      int
	reserved map[int]struct{}
}

func newPortAllocator(start, end int) *portAllocator {
	return &portAllocator{
		start:    start,
		end:      end,
		reserved: make(map[int]struct{}),
	}
}

// allocatePair picks the two lowest free ports in the range. The release
// func drops the in-process reservation and must be called once the
// session row holds the ports, or when creation fails.
func (p *portAllocator) allocatePair(allocated []int) (appPort, toolPort int, release func(), err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	taken := make(map[int]struct{}, len(allocated)+len(p.reserved))
	for _, port := range allocated {
		taken[port] = struct{}{}
	}
	for port := range p.reserved {
		taken[port] = struct{}{}
	}

	picked := make([]int, 0, 2)
	for port := p.start; port < p.end && len(picked) < 2; port++ {
		if _, ok := taken[port]; !ok {
			picked = append(picked, port)
		}
	}
	if len(picked) < 2 {
		return 0, 0, nil, types.ErrNoFreePorts
	}

	for _, port := range picked {
		p.reserved[port] = struct{}{}
	}
	release = func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.reserved, picked[0])
		delete(p.reserved, picked[1])
	}
	return picked[0], picked[1], release, nil
}

// allocateSessionPorts queries the live port set and reserves a pair.
func (m *Manager) allocateSessionPorts(ctx context.Context) (appPort, toolPort int, release func(), err error) {
	allocated, err := m.store.AllocatedPorts(ctx)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("failed to query allocated ports: %w", err)
	}
	return m.ports.allocatePair(allocated)
}
