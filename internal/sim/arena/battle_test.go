package arena

import (
	"testing"

	"gridclash.ai/internal/protocol"
)

func TestBattleThresholdExact(t *testing.T) {
	// Challenger side 300, opponent side 100: threshold = 100*10000/400 = 2500.
	// The challenger wins iff outcome < threshold, so the win chance tracks
	// the opponent's stake.
	cases := []struct {
		outcome        uint64
		challengerWins bool
	}{
		{0, true},
		{2499, true},
		{2500, false},
		{9999, false},
	}
	for _, c := range cases {
		rand := &stubRand{draws: [][32]byte{drawFor(c.outcome, 4, noElim)}}
		a, _, clock := newTestArena(t, func(cfg *Config) { cfg.Rand = rand })
		mustStake(t, a, "alice", "A1", 300)
		mustStake(t, a, "bob", "A2", 100)

		note, err := a.applyChallenge(clock.now(), "A1", "A2")
		if err != nil {
			t.Fatalf("outcome %d: challenge: %v", c.outcome, err)
		}
		wantWinner := "A2"
		if c.challengerWins {
			wantWinner = "A1"
		}
		if note.Winner != wantWinner {
			t.Fatalf("outcome %d: winner %s, want %s", c.outcome, note.Winner, wantWinner)
		}
	}
}

func TestBattlePayoutAndConservation(t *testing.T) {
	// outcome 9999 >= threshold: opponent (A2) wins. percentRaw 4 -> 21+4 = 25%.
	rand := &stubRand{draws: [][32]byte{drawFor(9999, 4, noElim)}}
	a, _, clock := newTestArena(t, func(cfg *Config) { cfg.Rand = rand })
	mustStake(t, a, "alice", "A1", 1000)
	mustStake(t, a, "bob", "A2", 400)

	before := a.vaults["A1"].Staked + a.vaults["A2"].Staked
	note, err := a.applyChallenge(clock.now(), "A1", "A2")
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}
	if note.Winner != "A2" || note.Loser != "A1" {
		t.Fatalf("unexpected outcome: %+v", note)
	}
	if note.Percent != 25 || note.Transferred != 250 {
		t.Fatalf("payout %d%% / %d, want 25%% / 250", note.Percent, note.Transferred)
	}
	if a.vaults["A1"].Staked != 750 || a.vaults["A2"].Staked != 650 {
		t.Fatalf("vaults %d / %d, want 750 / 650", a.vaults["A1"].Staked, a.vaults["A2"].Staked)
	}
	if got := a.vaults["A1"].Staked + a.vaults["A2"].Staked; got != before {
		t.Fatalf("battle created or destroyed value: %d != %d", got, before)
	}
	// Shares never move in a battle; only the exchange rate does.
	if a.vaults["A1"].Shares != 1000 || a.vaults["A2"].Shares != 400 {
		t.Fatalf("battle touched shares: %d / %d", a.vaults["A1"].Shares, a.vaults["A2"].Shares)
	}
}

func TestBattleElimination(t *testing.T) {
	// elimRaw 0 < 5: the loser dies and the whole vault moves.
	rand := &stubRand{draws: [][32]byte{drawFor(9999, 4, 0)}}
	a, _, clock := newTestArena(t, func(cfg *Config) { cfg.Rand = rand })
	mustStake(t, a, "alice", "A1", 1000)
	mustStake(t, a, "bob", "A2", 400)

	note, err := a.applyChallenge(clock.now(), "A1", "A2")
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}
	if !note.Eliminated || note.Percent != 100 || note.Transferred != 1000 {
		t.Fatalf("unexpected elimination record: %+v", note)
	}
	loser := a.agents["A1"]
	if loser.Alive {
		t.Fatalf("eliminated loser still alive")
	}
	if a.vaults["A1"].Staked != 0 || a.vaults["A2"].Staked != 1400 {
		t.Fatalf("vaults %d / %d after elimination", a.vaults["A1"].Staked, a.vaults["A2"].Staked)
	}
	if a.vaults["A1"].Shares != 1000 {
		t.Fatalf("elimination burned shares")
	}

	// Permanent exclusion from every state-changing operation.
	if _, err := a.applyMove(clock.now(), "A1", 1, 0); err == nil || err.Code != protocol.ErrDeadAgent {
		t.Fatalf("dead move: %v", err)
	}
	if _, err := a.applyChallenge(clock.now(), "A1", "A2"); err == nil || err.Code != protocol.ErrDeadAgent {
		t.Fatalf("dead challenge: %v", err)
	}
	if _, err := a.applyChallenge(clock.now(), "A2", "A1"); err == nil || err.Code != protocol.ErrDeadAgent {
		t.Fatalf("challenge against dead: %v", err)
	}
	if _, err := a.applyProposeAlliance(clock.now(), "A2", "A1"); err == nil || err.Code != protocol.ErrDeadAgent {
		t.Fatalf("dead alliance: %v", err)
	}
	// Stakers can still exit the dead agent's vault.
	if _, err := a.applyWithdraw(clock.now(), "alice", "A1", 1000); err != nil {
		t.Fatalf("withdraw from dead vault: %v", err)
	}
}

func TestBattleEliminationDissolvesAlliance(t *testing.T) {
	rand := &stubRand{draws: [][32]byte{drawFor(9999, 4, 0)}}
	a, _, clock := newTestArena(t, func(cfg *Config) { cfg.Rand = rand })
	mustStake(t, a, "alice", "A1", 100)
	mustStake(t, a, "bob", "A2", 100)

	// Ally the doomed challenger with gamma.
	a.agents["A3"].X, a.agents["A3"].Y = 0, 1
	if _, err := a.applyProposeAlliance(clock.now(), "A1", "A3"); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := a.applyProposeAlliance(clock.now(), "A3", "A1"); err != nil {
		t.Fatalf("form: %v", err)
	}

	if _, err := a.applyChallenge(clock.now(), "A1", "A2"); err != nil {
		t.Fatalf("challenge: %v", err)
	}
	if a.agents["A1"].Alive {
		t.Fatalf("loser should be eliminated")
	}
	if a.agents["A1"].Ally != "" || a.agents["A3"].Ally != "" {
		t.Fatalf("death did not dissolve alliance")
	}
	// Death is not a voluntary break: no pair cooldown.
	if _, ok := a.allianceCooldowns[pairKey("A1", "A3")]; ok {
		t.Fatalf("death set an alliance cooldown")
	}
}

func TestBattleAllyStakePooling(t *testing.T) {
	// A1 allied with A3. A1's side: 100 + 300 = 400; A2's side: 400.
	// threshold = 400*10000/800 = 5000.
	cases := []struct {
		outcome        uint64
		challengerWins bool
	}{
		{4999, true},
		{5000, false},
	}
	for _, c := range cases {
		rand := &stubRand{draws: [][32]byte{drawFor(c.outcome, 0, noElim)}}
		a, _, clock := newTestArena(t, func(cfg *Config) { cfg.Rand = rand })
		mustStake(t, a, "alice", "A1", 100)
		mustStake(t, a, "alice", "A3", 300)
		mustStake(t, a, "bob", "A2", 400)

		a.agents["A3"].X, a.agents["A3"].Y = 0, 1
		if _, err := a.applyProposeAlliance(clock.now(), "A1", "A3"); err != nil {
			t.Fatalf("propose: %v", err)
		}
		if _, err := a.applyProposeAlliance(clock.now(), "A3", "A1"); err != nil {
			t.Fatalf("form: %v", err)
		}

		note, err := a.applyChallenge(clock.now(), "A1", "A2")
		if err != nil {
			t.Fatalf("challenge: %v", err)
		}
		wantWinner := "A2"
		if c.challengerWins {
			wantWinner = "A1"
		}
		if note.Winner != wantWinner {
			t.Fatalf("outcome %d: winner %s, want %s", c.outcome, note.Winner, wantWinner)
		}
		// Alliances pool odds, not vaults: the payout comes from the loser's
		// own vault only.
		if note.Loser == "A1" && a.vaults["A3"].Staked != 300 {
			t.Fatalf("ally vault was touched: %d", a.vaults["A3"].Staked)
		}
	}
}

func TestBattlePreconditions(t *testing.T) {
	a, _, clock := newTestArena(t, nil)

	if _, err := a.applyChallenge(clock.now(), "A1", "A1"); err == nil || err.Code != protocol.ErrSelfTarget {
		t.Fatalf("self: %v", err)
	}
	if _, err := a.applyChallenge(clock.now(), "A1", "A4"); err == nil || err.Code != protocol.ErrNotAdjacent {
		t.Fatalf("non-adjacent: %v", err)
	}
	// Adjacent but no stake anywhere.
	if _, err := a.applyChallenge(clock.now(), "A1", "A2"); err == nil || err.Code != protocol.ErrNoStake {
		t.Fatalf("zero stake: %v", err)
	}
	if _, err := a.applyChallenge(clock.now(), "A1", "A9"); err == nil || err.Code != protocol.ErrUnknownAgent {
		t.Fatalf("unknown opponent: %v", err)
	}
}

func TestBattleZeroStakeChallengerAlwaysWins(t *testing.T) {
	// With the inverted threshold rule a zero-stake challenger has threshold
	// stakeA*SCALE/stakeA = SCALE, so every outcome wins.
	rand := &stubRand{draws: [][32]byte{drawFor(9999, 4, noElim)}}
	a, _, clock := newTestArena(t, func(cfg *Config) { cfg.Rand = rand })
	mustStake(t, a, "bob", "A2", 400)

	note, err := a.applyChallenge(clock.now(), "A1", "A2")
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}
	if note.Winner != "A1" || note.Loser != "A2" {
		t.Fatalf("unexpected result: %+v", note)
	}
	if note.Transferred != 100 { // 25% of 400
		t.Fatalf("transferred %d, want 100", note.Transferred)
	}
	if a.vaults["A1"].Staked != 100 || a.vaults["A2"].Staked != 300 {
		t.Fatalf("vaults %d / %d, want 100 / 300", a.vaults["A1"].Staked, a.vaults["A2"].Staked)
	}
}
