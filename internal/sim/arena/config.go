package arena

import (
	"time"

	"gridclash.ai/internal/sim/tuning"
)

// RosterSize is fixed: the arena is initialized with exactly four agents.
const RosterSize = 4

type AgentSeed struct {
	Name string
	X    int
	Y    int
}

type Config struct {
	ID         string
	GridWidth  int
	GridHeight int
	Seed       int64

	Roster []AgentSeed

	MoveCooldown     map[Terrain]time.Duration
	AllianceCooldown time.Duration

	PayoutMinPercent   uint64
	PayoutMaxPercent   uint64
	EliminationPercent uint64

	// Injected capabilities. Now defaults to time.Now; Rand defaults to a
	// clock+digest hash source; Tokens is required for vault operations.
	Now    func() time.Time
	Rand   RandomSource
	Tokens TokenLedger
}

func (c *Config) applyDefaults() {
	if c.ID == "" {
		c.ID = "arena_1"
	}
	if c.GridWidth <= 0 {
		c.GridWidth = 10
	}
	if c.GridHeight <= 0 {
		c.GridHeight = 10
	}
	if c.MoveCooldown == nil {
		c.MoveCooldown = map[Terrain]time.Duration{}
	}
	if c.MoveCooldown[TerrainNormal] <= 0 {
		c.MoveCooldown[TerrainNormal] = time.Hour
	}
	if c.MoveCooldown[TerrainRiver] <= 0 {
		c.MoveCooldown[TerrainRiver] = 90 * time.Minute
	}
	if c.MoveCooldown[TerrainMountain] <= 0 {
		c.MoveCooldown[TerrainMountain] = 2 * time.Hour
	}
	if c.AllianceCooldown <= 0 {
		c.AllianceCooldown = 24 * time.Hour
	}
	if c.PayoutMinPercent == 0 {
		c.PayoutMinPercent = 21
	}
	if c.PayoutMaxPercent == 0 {
		c.PayoutMaxPercent = 30
	}
	if c.EliminationPercent == 0 {
		c.EliminationPercent = 5
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Rand == nil {
		c.Rand = NewHashRandom(c.Seed)
	}
}

// ConfigFromTuning builds an arena config from a loaded tuning file.
// Zero-valued tuning fields fall back to defaults in applyDefaults.
func ConfigFromTuning(t tuning.Tuning) Config {
	cfg := Config{
		GridWidth:          t.GridWidth,
		GridHeight:         t.GridHeight,
		Seed:               t.Seed,
		PayoutMinPercent:   t.Battle.PayoutMinPercent,
		PayoutMaxPercent:   t.Battle.PayoutMaxPercent,
		EliminationPercent: t.Battle.EliminationPercent,
		MoveCooldown: map[Terrain]time.Duration{
			TerrainNormal:   time.Duration(t.Terrain.NormalCooldownMin) * time.Minute,
			TerrainRiver:    time.Duration(t.Terrain.RiverCooldownMin) * time.Minute,
			TerrainMountain: time.Duration(t.Terrain.MountainCooldownMin) * time.Minute,
		},
		AllianceCooldown: time.Duration(t.Alliance.CooldownHours) * time.Hour,
	}
	for _, a := range t.Agents {
		cfg.Roster = append(cfg.Roster, AgentSeed{Name: a.Name, X: a.X, Y: a.Y})
	}
	return cfg
}
