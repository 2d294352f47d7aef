package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Rule/operation layer.
	ErrBadRequest         = "E_BAD_REQUEST"
	ErrUnknownAgent       = "E_UNKNOWN_AGENT"
	ErrDeadAgent          = "E_DEAD_AGENT"
	ErrMoveCooldown       = "E_MOVE_COOLDOWN"
	ErrOutOfBounds        = "E_OUT_OF_BOUNDS"
	ErrNotAdjacent        = "E_NOT_ADJACENT"
	ErrSelfTarget         = "E_SELF_TARGET"
	ErrNoStake            = "E_NO_STAKE"
	ErrInsufficientShares = "E_INSUFFICIENT_SHARES"
	ErrAlreadyAllied      = "E_ALREADY_ALLIED"
	ErrNotAllied          = "E_NOT_ALLIED"
	ErrAllianceCooldown   = "E_ALLIANCE_COOLDOWN"
	ErrTransferFailed     = "E_TRANSFER_FAILED"
	ErrInternal           = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:    {},
	ErrBadRequest:         {},
	ErrUnknownAgent:       {},
	ErrDeadAgent:          {},
	ErrMoveCooldown:       {},
	ErrOutOfBounds:        {},
	ErrNotAdjacent:        {},
	ErrSelfTarget:         {},
	ErrNoStake:            {},
	ErrInsufficientShares: {},
	ErrAlreadyAllied:      {},
	ErrNotAllied:          {},
	ErrAllianceCooldown:   {},
	ErrTransferFailed:     {},
	ErrInternal:           {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
