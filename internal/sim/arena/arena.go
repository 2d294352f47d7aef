package arena

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gridclash.ai/internal/protocol"
)

// Notifier receives every committed mutation's notification record. Notify
// is called from the arena loop and must not block.
type Notifier interface {
	Notify(n protocol.Notification)
}

// Arena is the single-goroutine authoritative state machine. All state is
// owned by the Run loop; external callers use Request* methods, each of
// which applies one atomic operation: a rejected precondition leaves state
// untouched.
type Arena struct {
	cfg Config

	agents map[string]*Agent
	order  []string
	vaults map[string]*Vault

	// Directional proposal flags keyed propKey, pair cooldowns keyed pairKey.
	proposals         map[string]bool
	allianceCooldowns map[string]time.Time

	seq uint64

	inbox   chan cmdEnvelope
	queries chan queryEnvelope

	notifiers []Notifier
}

func New(cfg Config) (*Arena, error) {
	cfg.applyDefaults()
	if cfg.Tokens == nil {
		return nil, errors.New("arena: token ledger is required")
	}
	if len(cfg.Roster) != RosterSize {
		return nil, fmt.Errorf("arena: roster must have exactly %d agents, got %d", RosterSize, len(cfg.Roster))
	}
	// Battle percents feed modulo and vault arithmetic; out-of-range tuning
	// must be rejected here, not discovered mid-battle.
	if cfg.PayoutMinPercent > cfg.PayoutMaxPercent {
		return nil, fmt.Errorf("arena: payout percent range [%d,%d] is inverted", cfg.PayoutMinPercent, cfg.PayoutMaxPercent)
	}
	if cfg.PayoutMaxPercent > 100 {
		return nil, fmt.Errorf("arena: payout max percent %d exceeds 100", cfg.PayoutMaxPercent)
	}
	if cfg.EliminationPercent > 100 {
		return nil, fmt.Errorf("arena: elimination percent %d exceeds 100", cfg.EliminationPercent)
	}

	a := &Arena{
		cfg:               cfg,
		agents:            map[string]*Agent{},
		vaults:            map[string]*Vault{},
		proposals:         map[string]bool{},
		allianceCooldowns: map[string]time.Time{},
		inbox:             make(chan cmdEnvelope, 64),
		queries:           make(chan queryEnvelope, 64),
	}
	seenNames := map[string]bool{}
	for i, seed := range cfg.Roster {
		if seed.Name == "" {
			return nil, fmt.Errorf("arena: roster entry %d has no name", i)
		}
		if seenNames[seed.Name] {
			return nil, fmt.Errorf("arena: duplicate agent name %q", seed.Name)
		}
		seenNames[seed.Name] = true
		if seed.X < 0 || seed.X >= cfg.GridWidth || seed.Y < 0 || seed.Y >= cfg.GridHeight {
			return nil, fmt.Errorf("arena: agent %q starts out of bounds at (%d,%d)", seed.Name, seed.X, seed.Y)
		}
		id := fmt.Sprintf("A%d", i+1)
		a.agents[id] = &Agent{
			ID:    id,
			Name:  seed.Name,
			X:     seed.X,
			Y:     seed.Y,
			Alive: true,
		}
		a.order = append(a.order, id)
	}
	return a, nil
}

// AddNotifier registers a sink for committed notifications. Must be called
// before Run.
func (a *Arena) AddNotifier(n Notifier) {
	a.notifiers = append(a.notifiers, n)
}

// Run processes commands and queries until ctx is canceled. State must only
// be touched from this goroutine.
func (a *Arena) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-a.inbox:
			a.handleCmd(env)
		case q := <-a.queries:
			a.handleQuery(q)
		}
	}
}

type cmdEnvelope struct {
	op      string
	agentID string
	staker  string
	target  string
	dx, dy  int
	amount  uint64
	shares  uint64
	resp    chan cmdResp
}

type cmdResp struct {
	note protocol.Notification
	err  *OpError
}

func (a *Arena) handleCmd(env cmdEnvelope) {
	now := a.cfg.Now()

	var note protocol.Notification
	var err *OpError
	switch env.op {
	case protocol.OpMove:
		note, err = a.applyMove(now, env.agentID, env.dx, env.dy)
	case protocol.OpStake:
		note, err = a.applyStake(now, env.staker, env.target, env.amount)
	case protocol.OpWithdraw:
		note, err = a.applyWithdraw(now, env.staker, env.target, env.shares)
	case protocol.OpChallenge:
		note, err = a.applyChallenge(now, env.agentID, env.target)
	case protocol.OpProposeAlliance:
		note, err = a.applyProposeAlliance(now, env.agentID, env.target)
	case protocol.OpBreakAlliance:
		note, err = a.applyBreakAlliance(now, env.agentID)
	default:
		err = opErr(protocol.ErrBadRequest, "unknown op "+env.op)
	}

	if err != nil {
		env.resp <- cmdResp{err: err}
		return
	}

	a.seq++
	note.Type = protocol.TypeNotify
	note.ProtocolVersion = protocol.Version
	note.Seq = a.seq
	note.At = now.Unix()
	for _, n := range a.notifiers {
		n.Notify(note)
	}
	env.resp <- cmdResp{note: note}
}

func (a *Arena) request(ctx context.Context, env cmdEnvelope) (protocol.Notification, error) {
	env.resp = make(chan cmdResp, 1)
	select {
	case a.inbox <- env:
	case <-ctx.Done():
		return protocol.Notification{}, ctx.Err()
	}
	select {
	case r := <-env.resp:
		if r.err != nil {
			return protocol.Notification{}, r.err
		}
		return r.note, nil
	case <-ctx.Done():
		return protocol.Notification{}, ctx.Err()
	}
}

func (a *Arena) RequestMove(ctx context.Context, agentID string, dx, dy int) (protocol.Notification, error) {
	return a.request(ctx, cmdEnvelope{op: protocol.OpMove, agentID: agentID, dx: dx, dy: dy})
}

func (a *Arena) RequestStake(ctx context.Context, staker, agentID string, amount uint64) (protocol.Notification, error) {
	return a.request(ctx, cmdEnvelope{op: protocol.OpStake, staker: staker, target: agentID, amount: amount})
}

func (a *Arena) RequestWithdraw(ctx context.Context, staker, agentID string, shares uint64) (protocol.Notification, error) {
	return a.request(ctx, cmdEnvelope{op: protocol.OpWithdraw, staker: staker, target: agentID, shares: shares})
}

func (a *Arena) RequestChallenge(ctx context.Context, challengerID, opponentID string) (protocol.Notification, error) {
	return a.request(ctx, cmdEnvelope{op: protocol.OpChallenge, agentID: challengerID, target: opponentID})
}

func (a *Arena) RequestProposeAlliance(ctx context.Context, agentID, otherID string) (protocol.Notification, error) {
	return a.request(ctx, cmdEnvelope{op: protocol.OpProposeAlliance, agentID: agentID, target: otherID})
}

func (a *Arena) RequestBreakAlliance(ctx context.Context, agentID string) (protocol.Notification, error) {
	return a.request(ctx, cmdEnvelope{op: protocol.OpBreakAlliance, agentID: agentID})
}

// Params returns the immutable arena parameters (safe from any goroutine).
func (a *Arena) Params() protocol.ArenaParams {
	return protocol.ArenaParams{
		GridWidth:  a.cfg.GridWidth,
		GridHeight: a.cfg.GridHeight,
		Seed:       a.cfg.Seed,
	}
}
