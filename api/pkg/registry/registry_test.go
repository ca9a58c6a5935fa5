package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier/api/pkg/types"
)

func TestRegisterAndLookup(t *testing.T) {
	reg := New()

	conn := &types.ContainerConnection{
		ContainerID:    "abc123",
		ContainerName:  "atelier-session-01hx",
		ToolServerPort: 10001,
	}
	reg.Register("ses_01hx", conn)

	got, ok := reg.Lookup("ses_01hx")
	require.True(t, ok)
	assert.Equal(t, conn, got)

	_, ok = reg.Lookup("ses_unknown")
	assert.False(t, ok)
}

func TestRegisterReplacesExisting(t *testing.T) {
	reg := New()

	reg.Register("ses_a", &types.ContainerConnection{ContainerID: "old"})
	reg.Register("ses_a", &types.ContainerConnection{ContainerID: "new"})

	got, ok := reg.Lookup("ses_a")
	require.True(t, ok)
	assert.Equal(t, "new", got.ContainerID)
	assert.Equal(t, 1, reg.Len())
}

func TestUnregisterIsIdempotent(t *testing.T) {
	reg := New()

	reg.Register("ses_a", &types.ContainerConnection{ContainerID: "abc"})

	reg.Unregister("ses_a")
	_, ok := reg.Lookup("ses_a")
	assert.False(t, ok)

	// again, and for a session that never existed
	reg.Unregister("ses_a")
	reg.Unregister("ses_never")
	assert.Equal(t, 0, reg.Len())
}

func TestConcurrentAccess(t *testing.T) {
	reg := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("ses_%d", n)
			reg.Register(id, &types.ContainerConnection{ContainerID: id})
			_, _ = reg.Lookup(id)
			if n%2 == 0 {
				reg.Unregister(id)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, reg.Len())
}
