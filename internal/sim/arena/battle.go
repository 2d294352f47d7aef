package arena

import (
	"encoding/binary"
	"fmt"
	"time"

	"gridclash.ai/internal/protocol"
	"gridclash.ai/internal/sim/arena/mathx"
)

// battleScale is the fixed-point denominator for the win threshold.
const battleScale = 10000

// effectiveStake pools combat strength across an alliance without pooling
// vault ownership: own underlying plus the ally's underlying.
func (a *Arena) effectiveStake(ag *Agent) uint64 {
	stake := uint64(0)
	if v := a.vaults[ag.ID]; v != nil {
		stake += v.Staked
	}
	if ag.Ally != "" {
		if v := a.vaults[ag.Ally]; v != nil {
			stake += v.Staked
		}
	}
	return stake
}

// applyChallenge resolves a battle in a single step. All outcome inputs come
// from one 256-bit draw: bytes 0..8 pick the winner, 8..16 size the payout,
// 16..24 decide elimination.
//
// The threshold is built from the opponent-side stake, so each side's win
// chance is proportional to the OTHER side's effective stake. Heavier vaults
// are bigger targets, not safer ones.
func (a *Arena) applyChallenge(now time.Time, challengerID, opponentID string) (protocol.Notification, *OpError) {
	ch := a.agents[challengerID]
	op := a.agents[opponentID]
	if ch == nil {
		return protocol.Notification{}, opErr(protocol.ErrUnknownAgent, challengerID)
	}
	if op == nil {
		return protocol.Notification{}, opErr(protocol.ErrUnknownAgent, opponentID)
	}
	if challengerID == opponentID {
		return protocol.Notification{}, opErr(protocol.ErrSelfTarget, "cannot battle self")
	}
	if !ch.Alive || !op.Alive {
		return protocol.Notification{}, opErr(protocol.ErrDeadAgent, "both agents must be alive")
	}
	if !areAdjacent(ch, op) {
		return protocol.Notification{}, opErr(protocol.ErrNotAdjacent, fmt.Sprintf("%s and %s", challengerID, opponentID))
	}

	stakeOpponent := a.effectiveStake(op)
	stakeChallenger := a.effectiveStake(ch)
	total := stakeOpponent + stakeChallenger
	if total == 0 {
		return protocol.Notification{}, opErr(protocol.ErrNoStake, "combined effective stake is zero")
	}

	draw := a.cfg.Rand.Draw(now, challengerID, opponentID)
	outcome := binary.BigEndian.Uint64(draw[0:8]) % battleScale
	threshold := mathx.MulDiv(stakeOpponent, battleScale, total)

	winner, loser := op, ch
	if outcome < threshold {
		winner, loser = ch, op
	}

	span := a.cfg.PayoutMaxPercent - a.cfg.PayoutMinPercent + 1
	percent := a.cfg.PayoutMinPercent + binary.BigEndian.Uint64(draw[8:16])%span
	eliminated := binary.BigEndian.Uint64(draw[16:24])%100 < a.cfg.EliminationPercent

	lv := a.vaultFor(loser.ID)
	wv := a.vaultFor(winner.ID)
	var transferred uint64
	if eliminated {
		// Death overrides the percentage payout: the whole vault moves.
		percent = 100
		transferred = lv.Staked
	} else {
		transferred = mathx.MulDiv(lv.Staked, percent, 100)
	}
	lv.Staked -= transferred
	wv.Staked += transferred

	if eliminated {
		loser.Alive = false
		// Death dissolves any alliance without starting a pair cooldown.
		if loser.Ally != "" {
			if ally := a.agents[loser.Ally]; ally != nil {
				ally.Ally = ""
			}
			loser.Ally = ""
		}
	}

	return protocol.Notification{
		Kind:        protocol.NotifyBattle,
		Agent:       challengerID,
		Opponent:    opponentID,
		Winner:      winner.ID,
		Loser:       loser.ID,
		Transferred: transferred,
		Percent:     percent,
		Eliminated:  eliminated,
	}, nil
}
