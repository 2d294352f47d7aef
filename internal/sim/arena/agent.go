package arena

import (
	"time"

	"gridclash.ai/internal/sim/arena/mathx"
)

type Agent struct {
	ID   string
	Name string

	X, Y           int
	AvailableAfter time.Time
	Alive          bool

	// Ally is the agent ID of the current alliance partner, empty when
	// unallied. Kept symmetric: a.Ally == b.ID iff b.Ally == a.ID.
	Ally string
}

// areAdjacent reports 8-connected adjacency (Chebyshev distance <= 1).
// Dead agents are adjacent to nothing.
func areAdjacent(a, b *Agent) bool {
	if a == nil || b == nil || !a.Alive || !b.Alive {
		return false
	}
	return mathx.AbsInt(a.X-b.X) <= 1 && mathx.AbsInt(a.Y-b.Y) <= 1
}
