package arena

import (
	"encoding/binary"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// stubRand replays scripted draws in order.
type stubRand struct {
	mu    sync.Mutex
	draws [][32]byte
	i     int
}

func (s *stubRand) Draw(now time.Time, challenger, opponent string) [32]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.i >= len(s.draws) {
		return [32]byte{}
	}
	d := s.draws[s.i]
	s.i++
	return d
}

// drawFor builds a draw with the given battle inputs: outcome feeds the win
// threshold comparison, percentRaw mod span picks the payout offset, elimRaw
// mod 100 decides elimination.
func drawFor(outcome, percentRaw, elimRaw uint64) [32]byte {
	var d [32]byte
	binary.BigEndian.PutUint64(d[0:8], outcome)
	binary.BigEndian.PutUint64(d[8:16], percentRaw)
	binary.BigEndian.PutUint64(d[16:24], elimRaw)
	return d
}

// noElim keeps the loser alive: 99 % 100 >= 5.
const noElim = 99

// testRoster: alpha and beta adjacent in the corner, gamma near the middle,
// delta far away.
func testRoster() []AgentSeed {
	return []AgentSeed{
		{Name: "alpha", X: 0, Y: 0},
		{Name: "beta", X: 1, Y: 0},
		{Name: "gamma", X: 5, Y: 5},
		{Name: "delta", X: 9, Y: 9},
	}
}

func newTestArena(t *testing.T, mutate func(*Config)) (*Arena, *MemoryLedger, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	ledger := NewMemoryLedger(map[string]uint64{
		"alice": 1_000_000,
		"bob":   1_000_000,
	})
	cfg := Config{
		GridWidth:  10,
		GridHeight: 10,
		Seed:       1337,
		Roster:     testRoster(),
		Now:        clock.now,
		Tokens:     ledger,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("new arena: %v", err)
	}
	return a, ledger, clock
}

// mustStake is a white-box helper for test setup.
func mustStake(t *testing.T, a *Arena, staker, agentID string, amount uint64) {
	t.Helper()
	if _, err := a.applyStake(a.cfg.Now(), staker, agentID, amount); err != nil {
		t.Fatalf("stake %d on %s: %v", amount, agentID, err)
	}
}
