package protocol

// Client roles.
const (
	RoleAgent    = "AGENT"
	RoleObserver = "OBSERVER"
)

// Command operations.
const (
	OpMove            = "MOVE"
	OpStake           = "STAKE"
	OpWithdraw        = "WITHDRAW"
	OpChallenge       = "CHALLENGE"
	OpProposeAlliance = "PROPOSE_ALLIANCE"
	OpBreakAlliance   = "BREAK_ALLIANCE"
)

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Role            string `json:"role"`                 // "AGENT" or "OBSERVER"
	AgentName       string `json:"agent_name,omitempty"` // required for AGENT
	StakerName      string `json:"staker_name,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	SessionID       string      `json:"session_id"`
	AgentID         string      `json:"agent_id,omitempty"` // empty for observers
	ArenaParams     ArenaParams `json:"arena_params"`
	Roster          []AgentRef  `json:"roster"`
}

type ArenaParams struct {
	GridWidth  int   `json:"grid_width"`
	GridHeight int   `json:"grid_height"`
	Seed       int64 `json:"seed"`
}

type AgentRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Pos   [2]int `json:"pos"`
	Alive bool   `json:"alive"`
	Ally  string `json:"ally,omitempty"`
}

// CMD (client -> server): one mutating operation.
type CmdMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	CmdID           string `json:"cmd_id"`
	Op              string `json:"op"`

	DX int `json:"dx,omitempty"`
	DY int `json:"dy,omitempty"`

	TargetID string `json:"target_id,omitempty"` // opponent / other agent / staked agent
	Amount   uint64 `json:"amount,omitempty"`    // underlying units (STAKE)
	Shares   uint64 `json:"shares,omitempty"`    // share units (WITHDRAW)
}

// RESULT (server -> client): outcome of one CMD.
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	CmdID           string `json:"cmd_id"`
	OK              bool   `json:"ok"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	Seq             uint64 `json:"seq,omitempty"` // notification seq on success
}

// STATE_REQ (client -> server) / STATE (server -> client): read-only snapshot.
type StateReqMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

type StateMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Roster          []AgentRef `json:"roster"`
	Vaults          []VaultRef `json:"vaults"`
}

type VaultRef struct {
	AgentID string `json:"agent_id"`
	Staked  uint64 `json:"staked"`
	Shares  uint64 `json:"shares"`
}
