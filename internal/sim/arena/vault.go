package arena

import (
	"fmt"
	"time"

	"gridclash.ai/internal/protocol"
	"gridclash.ai/internal/sim/arena/mathx"
)

// Vault holds third-party stake for one agent, accounted in shares. Battles
// move Staked without touching Shares, so the underlying-per-share exchange
// rate floats and stakers bear battle risk proportionally.
type Vault struct {
	Staked  uint64
	Shares  uint64
	Holders map[string]uint64
}

func (a *Arena) vaultFor(agentID string) *Vault {
	v := a.vaults[agentID]
	if v == nil {
		v = &Vault{Holders: map[string]uint64{}}
		a.vaults[agentID] = v
	}
	return v
}

func (a *Arena) applyStake(now time.Time, staker, agentID string, amount uint64) (protocol.Notification, *OpError) {
	ag := a.agents[agentID]
	if ag == nil {
		return protocol.Notification{}, opErr(protocol.ErrUnknownAgent, agentID)
	}
	if !ag.Alive {
		return protocol.Notification{}, opErr(protocol.ErrDeadAgent, agentID)
	}
	if staker == "" || amount == 0 {
		return protocol.Notification{}, opErr(protocol.ErrBadRequest, "stake requires a staker and a positive amount")
	}

	v := a.vaultFor(agentID)
	var minted uint64
	if v.Shares == 0 {
		// Bootstrap: first shares mint 1:1 with the deposit.
		minted = amount
	} else {
		if v.Staked == 0 {
			// Shares outstanding against an empty vault would divide by zero
			// on the mint. Unreachable by construction; refuse to guess.
			return protocol.Notification{}, opErr(protocol.ErrInternal, "vault has shares but no underlying")
		}
		var ok bool
		minted, ok = mathx.MulDivChecked(amount, v.Shares, v.Staked)
		if !ok {
			// Battles can dilute a vault until a large deposit mints more
			// shares than uint64 holds.
			return protocol.Notification{}, opErr(protocol.ErrBadRequest, "deposit mints more shares than representable")
		}
	}

	// Debit before mutating so a failed transfer leaves the vault untouched.
	if err := a.cfg.Tokens.TransferFrom(staker, amount); err != nil {
		return protocol.Notification{}, opErr(protocol.ErrTransferFailed, fmt.Sprintf("debit %s: %v", staker, err))
	}
	v.Staked += amount
	v.Shares += minted
	v.Holders[staker] += minted

	return protocol.Notification{
		Kind:        protocol.NotifyStake,
		Agent:       agentID,
		Staker:      staker,
		Amount:      amount,
		Shares:      minted,
		VaultStaked: v.Staked,
		VaultShares: v.Shares,
	}, nil
}

func (a *Arena) applyWithdraw(now time.Time, staker, agentID string, shares uint64) (protocol.Notification, *OpError) {
	ag := a.agents[agentID]
	if ag == nil {
		return protocol.Notification{}, opErr(protocol.ErrUnknownAgent, agentID)
	}
	if shares == 0 {
		return protocol.Notification{}, opErr(protocol.ErrBadRequest, "withdraw requires a positive share amount")
	}
	v := a.vaults[agentID]
	if v == nil || v.Holders[staker] < shares {
		return protocol.Notification{}, opErr(protocol.ErrInsufficientShares,
			fmt.Sprintf("%s holds fewer than %d shares of %s", staker, shares, agentID))
	}

	amount := mathx.MulDiv(shares, v.Staked, v.Shares)

	// Credit before mutating: if the token credit fails the whole withdrawal
	// rolls back with no state change.
	if err := a.cfg.Tokens.Transfer(staker, amount); err != nil {
		return protocol.Notification{}, opErr(protocol.ErrTransferFailed, fmt.Sprintf("credit %s: %v", staker, err))
	}
	v.Holders[staker] -= shares
	if v.Holders[staker] == 0 {
		delete(v.Holders, staker)
	}
	v.Shares -= shares
	v.Staked -= amount

	return protocol.Notification{
		Kind:        protocol.NotifyWithdraw,
		Agent:       agentID,
		Staker:      staker,
		Amount:      amount,
		Shares:      shares,
		VaultStaked: v.Staked,
		VaultShares: v.Shares,
	}, nil
}
