package arena

import (
	"fmt"
	"time"

	"gridclash.ai/internal/protocol"
)

func (a *Arena) applyMove(now time.Time, agentID string, dx, dy int) (protocol.Notification, *OpError) {
	ag := a.agents[agentID]
	if ag == nil {
		return protocol.Notification{}, opErr(protocol.ErrUnknownAgent, agentID)
	}
	if !ag.Alive {
		return protocol.Notification{}, opErr(protocol.ErrDeadAgent, agentID)
	}
	if now.Before(ag.AvailableAfter) {
		return protocol.Notification{}, opErr(protocol.ErrMoveCooldown,
			fmt.Sprintf("available at %s", ag.AvailableAfter.UTC().Format(time.RFC3339)))
	}
	if dx < -1 || dx > 1 || dy < -1 || dy > 1 || (dx == 0 && dy == 0) {
		return protocol.Notification{}, opErr(protocol.ErrBadRequest, "step must be one cell in any direction")
	}
	nx, ny := ag.X+dx, ag.Y+dy
	if nx < 0 || nx >= a.cfg.GridWidth || ny < 0 || ny >= a.cfg.GridHeight {
		return protocol.Notification{}, opErr(protocol.ErrOutOfBounds, fmt.Sprintf("(%d,%d)", nx, ny))
	}

	ag.X, ag.Y = nx, ny
	terr := a.terrainAt(nx, ny)
	ag.AvailableAfter = now.Add(a.cfg.MoveCooldown[terr])

	return protocol.Notification{
		Kind:           protocol.NotifyMove,
		Agent:          agentID,
		X:              nx,
		Y:              ny,
		Terrain:        string(terr),
		AvailableAfter: ag.AvailableAfter.Unix(),
	}, nil
}
