package arena

import (
	"context"
	"time"

	"gridclash.ai/internal/protocol"
)

type AgentView struct {
	ID             string
	Name           string
	X, Y           int
	AvailableAfter time.Time
	Alive          bool
	Ally           string
}

type VaultView struct {
	AgentID string
	Staked  uint64
	Shares  uint64
}

type queryKind int

const (
	queryAgent queryKind = iota + 1
	queryRoster
	queryVault
	queryShares
	queryCooldown
)

type queryEnvelope struct {
	kind    queryKind
	agentID string
	otherID string
	staker  string
	resp    chan queryResp
}

type queryResp struct {
	agent  AgentView
	roster []AgentView
	vault  VaultView
	shares uint64
	until  time.Time
	err    *OpError
}

func (a *Arena) handleQuery(q queryEnvelope) {
	var resp queryResp
	switch q.kind {
	case queryAgent:
		ag := a.agents[q.agentID]
		if ag == nil {
			resp.err = opErr(protocol.ErrUnknownAgent, q.agentID)
			break
		}
		resp.agent = agentView(ag)
	case queryRoster:
		for _, id := range a.order {
			resp.roster = append(resp.roster, agentView(a.agents[id]))
		}
	case queryVault:
		if a.agents[q.agentID] == nil {
			resp.err = opErr(protocol.ErrUnknownAgent, q.agentID)
			break
		}
		resp.vault = VaultView{AgentID: q.agentID}
		if v := a.vaults[q.agentID]; v != nil {
			resp.vault.Staked = v.Staked
			resp.vault.Shares = v.Shares
		}
	case queryShares:
		if a.agents[q.agentID] == nil {
			resp.err = opErr(protocol.ErrUnknownAgent, q.agentID)
			break
		}
		if v := a.vaults[q.agentID]; v != nil {
			resp.shares = v.Holders[q.staker]
		}
	case queryCooldown:
		if a.agents[q.agentID] == nil {
			resp.err = opErr(protocol.ErrUnknownAgent, q.agentID)
			break
		}
		if a.agents[q.otherID] == nil {
			resp.err = opErr(protocol.ErrUnknownAgent, q.otherID)
			break
		}
		resp.until = a.allianceCooldowns[pairKey(q.agentID, q.otherID)]
	default:
		resp.err = opErr(protocol.ErrInternal, "unknown query kind")
	}
	q.resp <- resp
}

func agentView(ag *Agent) AgentView {
	return AgentView{
		ID:             ag.ID,
		Name:           ag.Name,
		X:              ag.X,
		Y:              ag.Y,
		AvailableAfter: ag.AvailableAfter,
		Alive:          ag.Alive,
		Ally:           ag.Ally,
	}
}

func (a *Arena) query(ctx context.Context, q queryEnvelope) (queryResp, error) {
	q.resp = make(chan queryResp, 1)
	select {
	case a.queries <- q:
	case <-ctx.Done():
		return queryResp{}, ctx.Err()
	}
	select {
	case r := <-q.resp:
		if r.err != nil {
			return queryResp{}, r.err
		}
		return r, nil
	case <-ctx.Done():
		return queryResp{}, ctx.Err()
	}
}

func (a *Arena) RequestAgent(ctx context.Context, agentID string) (AgentView, error) {
	r, err := a.query(ctx, queryEnvelope{kind: queryAgent, agentID: agentID})
	return r.agent, err
}

func (a *Arena) RequestRoster(ctx context.Context) ([]AgentView, error) {
	r, err := a.query(ctx, queryEnvelope{kind: queryRoster})
	return r.roster, err
}

func (a *Arena) RequestVault(ctx context.Context, agentID string) (VaultView, error) {
	r, err := a.query(ctx, queryEnvelope{kind: queryVault, agentID: agentID})
	return r.vault, err
}

func (a *Arena) RequestStakerShares(ctx context.Context, agentID, staker string) (uint64, error) {
	r, err := a.query(ctx, queryEnvelope{kind: queryShares, agentID: agentID, staker: staker})
	return r.shares, err
}

// RequestAllianceCooldown returns the time before which the pair cannot
// re-ally; the zero time means no cooldown was ever set.
func (a *Arena) RequestAllianceCooldown(ctx context.Context, agentID, otherID string) (time.Time, error) {
	r, err := a.query(ctx, queryEnvelope{kind: queryCooldown, agentID: agentID, otherID: otherID})
	return r.until, err
}
