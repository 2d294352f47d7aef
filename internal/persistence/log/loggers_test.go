package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"

	"gridclash.ai/internal/protocol"
)

func TestNotifyLoggerRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l := NewNotifyLogger(dir)

	want := []protocol.Notification{
		{Type: protocol.TypeNotify, Seq: 1, Kind: protocol.NotifyMove, Agent: "A1", X: 1, Y: 0},
		{Type: protocol.TypeNotify, Seq: 2, Kind: protocol.NotifyStake, Agent: "A2", Staker: "alice", Amount: 100},
	}
	for _, n := range want {
		l.Notify(n)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "notifications", "notify-*.jsonl.zst"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one log file, got %v (%v)", matches, err)
	}
	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()

	var got []protocol.Notification
	sc := bufio.NewScanner(dec)
	for sc.Scan() {
		var n protocol.Notification
		if err := json.Unmarshal(sc.Bytes(), &n); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		got = append(got, n)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Seq != want[i].Seq || got[i].Kind != want[i].Kind || got[i].Agent != want[i].Agent {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
