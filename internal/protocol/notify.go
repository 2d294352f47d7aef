package protocol

// Notification kinds.
const (
	NotifyMove             = "MOVE"
	NotifyStake            = "STAKE"
	NotifyWithdraw         = "WITHDRAW"
	NotifyBattle           = "BATTLE"
	NotifyAllianceProposed = "ALLIANCE_PROPOSED"
	NotifyAllianceFormed   = "ALLIANCE_FORMED"
	NotifyAllianceBroken   = "ALLIANCE_BROKEN"
)

// Notification is the structured record emitted by every mutating arena
// operation. Seq is a strictly increasing sequence number assigned by the
// arena loop; At is unix seconds on the arena clock.
type Notification struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Seq             uint64 `json:"seq"`
	At              int64  `json:"at"`
	Kind            string `json:"kind"`
	Agent           string `json:"agent"` // acting agent

	// MOVE
	X              int    `json:"x,omitempty"`
	Y              int    `json:"y,omitempty"`
	Terrain        string `json:"terrain,omitempty"`
	AvailableAfter int64  `json:"available_after,omitempty"`

	// STAKE / WITHDRAW
	Staker      string `json:"staker,omitempty"`
	Amount      uint64 `json:"amount,omitempty"`
	Shares      uint64 `json:"shares,omitempty"`
	VaultStaked uint64 `json:"vault_staked,omitempty"`
	VaultShares uint64 `json:"vault_shares,omitempty"`

	// BATTLE
	Opponent    string `json:"opponent,omitempty"`
	Winner      string `json:"winner,omitempty"`
	Loser       string `json:"loser,omitempty"`
	Transferred uint64 `json:"transferred,omitempty"`
	Percent     uint64 `json:"percent,omitempty"`
	Eliminated  bool   `json:"eliminated,omitempty"`

	// ALLIANCE_*
	Other         string `json:"other,omitempty"`
	CooldownUntil int64  `json:"cooldown_until,omitempty"`
}
