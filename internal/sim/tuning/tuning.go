package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	GridWidth  int   `yaml:"grid_width"`
	GridHeight int   `yaml:"grid_height"`
	Seed       int64 `yaml:"seed"`

	Agents []AgentSeed `yaml:"agents"`

	Terrain  TerrainTuning  `yaml:"terrain"`
	Battle   BattleTuning   `yaml:"battle"`
	Alliance AllianceTuning `yaml:"alliance"`

	// Seed balances for the in-memory token ledger keyed by staker name.
	LedgerBalances map[string]uint64 `yaml:"ledger_balances"`
}

type AgentSeed struct {
	Name string `yaml:"name"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

// TerrainTuning maps terrain classes to movement cooldowns. The mapping is a
// policy knob: River may equal Normal or sit in its own tier.
type TerrainTuning struct {
	NormalCooldownMin   int `yaml:"normal_cooldown_min"`
	RiverCooldownMin    int `yaml:"river_cooldown_min"`
	MountainCooldownMin int `yaml:"mountain_cooldown_min"`
}

type BattleTuning struct {
	PayoutMinPercent   uint64 `yaml:"payout_min_percent"`
	PayoutMaxPercent   uint64 `yaml:"payout_max_percent"`
	EliminationPercent uint64 `yaml:"elimination_percent"`
}

type AllianceTuning struct {
	CooldownHours int `yaml:"cooldown_hours"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
