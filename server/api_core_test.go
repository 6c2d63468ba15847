package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowEvictsExpiredBuckets(t *testing.T) {
	a, _, _ := newTestAPI(t, nil)
	window := 20 * time.Millisecond

	for i := 0; i < 3; i++ {
		assert.True(t, a.allow("10.0.0."+string(rune('1'+i)), "import", 1, window))
	}
	assert.False(t, a.allow("10.0.0.1", "import", 1, window))

	time.Sleep(3 * window)
	assert.True(t, a.allow("10.0.0.9", "import", 1, window))

	a.rlMu.Lock()
	defer a.rlMu.Unlock()
	assert.Len(t, a.rl, 1)
	assert.Contains(t, a.rl, "10.0.0.9:import")
}

func TestAllowResetsAfterWindow(t *testing.T) {
	a, _, _ := newTestAPI(t, nil)
	window := 20 * time.Millisecond

	assert.True(t, a.allow("10.0.0.1", "import", 1, window))
	assert.False(t, a.allow("10.0.0.1", "import", 1, window))
	time.Sleep(2 * window)
	assert.True(t, a.allow("10.0.0.1", "import", 1, window))
}
