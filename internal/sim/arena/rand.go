package arena

import (
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// RandomSource supplies one 256-bit draw per battle resolution. The draw is
// domain-separated by both participant IDs so concurrent arenas cannot share
// outcomes.
//
// The default implementation mixes the clock and a rolling digest. It is NOT
// unpredictable to a caller who controls operation timing; production
// deployments should substitute a committed or verifiable source.
type RandomSource interface {
	Draw(now time.Time, challenger, opponent string) [32]byte
}

type HashRandom struct {
	state [32]byte
}

func NewHashRandom(seed int64) *HashRandom {
	h := &HashRandom{}
	binary.BigEndian.PutUint64(h.state[:8], uint64(seed))
	return h
}

func (h *HashRandom) Draw(now time.Time, challenger, opponent string) [32]byte {
	d := sha256.New()
	d.Write(h.state[:])
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(now.UnixNano()))
	d.Write(ts[:])
	d.Write([]byte(challenger))
	d.Write([]byte(opponent))
	copy(h.state[:], d.Sum(nil))
	return h.state
}
