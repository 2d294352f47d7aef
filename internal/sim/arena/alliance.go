package arena

import (
	"fmt"
	"time"

	"gridclash.ai/internal/protocol"
)

// pairKey is order-independent: break(a,b) cooldown blocks propose in either
// direction.
func pairKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}

func propKey(from, to string) string {
	return from + ">" + to
}

func (a *Arena) applyProposeAlliance(now time.Time, agentID, otherID string) (protocol.Notification, *OpError) {
	ag := a.agents[agentID]
	other := a.agents[otherID]
	if ag == nil {
		return protocol.Notification{}, opErr(protocol.ErrUnknownAgent, agentID)
	}
	if other == nil {
		return protocol.Notification{}, opErr(protocol.ErrUnknownAgent, otherID)
	}
	if agentID == otherID {
		return protocol.Notification{}, opErr(protocol.ErrSelfTarget, "cannot ally with self")
	}
	if !ag.Alive || !other.Alive {
		return protocol.Notification{}, opErr(protocol.ErrDeadAgent, "both agents must be alive")
	}
	if !areAdjacent(ag, other) {
		return protocol.Notification{}, opErr(protocol.ErrNotAdjacent, fmt.Sprintf("%s and %s", agentID, otherID))
	}
	// At most one alliance per agent: an allied party must break first.
	if ag.Ally != "" || other.Ally != "" {
		return protocol.Notification{}, opErr(protocol.ErrAlreadyAllied, "an existing alliance must be broken first")
	}
	if until, ok := a.allianceCooldowns[pairKey(agentID, otherID)]; ok && now.Before(until) {
		return protocol.Notification{}, opErr(protocol.ErrAllianceCooldown,
			fmt.Sprintf("pair locked until %s", until.UTC().Format(time.RFC3339)))
	}

	// Mutual consent: a standing reverse proposal forms the alliance now.
	if a.proposals[propKey(otherID, agentID)] {
		delete(a.proposals, propKey(otherID, agentID))
		delete(a.proposals, propKey(agentID, otherID))
		ag.Ally = otherID
		other.Ally = agentID
		return protocol.Notification{
			Kind:  protocol.NotifyAllianceFormed,
			Agent: agentID,
			Other: otherID,
		}, nil
	}

	a.proposals[propKey(agentID, otherID)] = true
	return protocol.Notification{
		Kind:  protocol.NotifyAllianceProposed,
		Agent: agentID,
		Other: otherID,
	}, nil
}

func (a *Arena) applyBreakAlliance(now time.Time, agentID string) (protocol.Notification, *OpError) {
	ag := a.agents[agentID]
	if ag == nil {
		return protocol.Notification{}, opErr(protocol.ErrUnknownAgent, agentID)
	}
	if !ag.Alive {
		return protocol.Notification{}, opErr(protocol.ErrDeadAgent, agentID)
	}
	if ag.Ally == "" {
		return protocol.Notification{}, opErr(protocol.ErrNotAllied, agentID)
	}

	otherID := ag.Ally
	other := a.agents[otherID]
	ag.Ally = ""
	if other != nil {
		other.Ally = ""
	}
	delete(a.proposals, propKey(agentID, otherID))
	delete(a.proposals, propKey(otherID, agentID))

	until := now.Add(a.cfg.AllianceCooldown)
	a.allianceCooldowns[pairKey(agentID, otherID)] = until

	return protocol.Notification{
		Kind:          protocol.NotifyAllianceBroken,
		Agent:         agentID,
		Other:         otherID,
		CooldownUntil: until.Unix(),
	}, nil
}
