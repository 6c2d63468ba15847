// Package guid allocates identifiers for imported boards and blocks.
package guid

import (
	"strconv"

	"github.com/google/uuid"
)

// New returns a random (version 4) UUID string. Safe for concurrent use.
func New() string {
	return uuid.NewString()
}

// Sequence returns an allocator that yields prefix-1, prefix-2, ... in order.
// It is meant for tests that need stable identifiers.
func Sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}

