package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"gridclash.ai/internal/protocol"
)

// SQLiteIndex is a secondary read model over arena notifications. Writes are
// queued to a single background goroutine so the arena loop never blocks on
// disk.
type SQLiteIndex struct {
	db *sql.DB

	// mu guards ch sends against Close closing the channel.
	mu     sync.Mutex
	closed bool
	ch     chan entry

	wg sync.WaitGroup
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan entry, 8192),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS notifications (
			seq INTEGER PRIMARY KEY,
			at INTEGER NOT NULL,
			kind TEXT NOT NULL,
			agent TEXT NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_agent_seq ON notifications(agent, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_kind_seq ON notifications(kind, seq);`,
		`CREATE TABLE IF NOT EXISTS battles (
			seq INTEGER PRIMARY KEY,
			at INTEGER NOT NULL,
			challenger TEXT NOT NULL,
			opponent TEXT NOT NULL,
			winner TEXT NOT NULL,
			loser TEXT NOT NULL,
			transferred INTEGER NOT NULL,
			percent INTEGER NOT NULL,
			eliminated INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_battles_winner ON battles(winner, seq);`,
		`CREATE TABLE IF NOT EXISTS vault_ops (
			seq INTEGER PRIMARY KEY,
			at INTEGER NOT NULL,
			kind TEXT NOT NULL,
			agent TEXT NOT NULL,
			staker TEXT NOT NULL,
			amount INTEGER NOT NULL,
			shares INTEGER NOT NULL,
			vault_staked INTEGER NOT NULL,
			vault_shares INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_vault_ops_agent_seq ON vault_ops(agent, seq);`,
		`CREATE INDEX IF NOT EXISTS idx_vault_ops_staker_seq ON vault_ops(staker, seq);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()
	s.wg.Wait()
	return s.db.Close()
}

// entry carries either a notification or a flush marker (done != nil).
type entry struct {
	n    protocol.Notification
	done chan struct{}
}

// Notify queues a notification for indexing. Drops on overflow rather than
// stalling the arena loop.
func (s *SQLiteIndex) Notify(n protocol.Notification) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- entry{n: n}:
	default:
	}
}

func (s *SQLiteIndex) loop() {
	for e := range s.ch {
		if e.done != nil {
			close(e.done)
			continue
		}
		s.write(e.n)
	}
}

func (s *SQLiteIndex) write(n protocol.Notification) {
	raw, err := json.Marshal(n)
	if err != nil {
		return
	}
	_, _ = s.db.Exec(
		`INSERT OR REPLACE INTO notifications (seq, at, kind, agent, raw_json) VALUES (?, ?, ?, ?, ?)`,
		n.Seq, n.At, n.Kind, n.Agent, string(raw),
	)

	switch n.Kind {
	case protocol.NotifyBattle:
		elim := 0
		if n.Eliminated {
			elim = 1
		}
		_, _ = s.db.Exec(
			`INSERT OR REPLACE INTO battles (seq, at, challenger, opponent, winner, loser, transferred, percent, eliminated)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			n.Seq, n.At, n.Agent, n.Opponent, n.Winner, n.Loser, n.Transferred, n.Percent, elim,
		)
	case protocol.NotifyStake, protocol.NotifyWithdraw:
		_, _ = s.db.Exec(
			`INSERT OR REPLACE INTO vault_ops (seq, at, kind, agent, staker, amount, shares, vault_staked, vault_shares)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			n.Seq, n.At, n.Kind, n.Agent, n.Staker, n.Amount, n.Shares, n.VaultStaked, n.VaultShares,
		)
	}
}

// Flush blocks until every notification queued before the call has been
// written. Intended for tests and shutdown paths.
func (s *SQLiteIndex) Flush() {
	if s == nil {
		return
	}
	done := make(chan struct{})
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.ch <- entry{done: done}
	s.mu.Unlock()
	<-done
}

// RecentNotifications returns the newest notifications, highest seq first.
func (s *SQLiteIndex) RecentNotifications(ctx context.Context, limit int) ([]protocol.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT raw_json FROM notifications ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []protocol.Notification
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var n protocol.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

type BattleRow struct {
	Seq         uint64
	At          int64
	Challenger  string
	Opponent    string
	Winner      string
	Loser       string
	Transferred uint64
	Percent     uint64
	Eliminated  bool
}

// BattlesForAgent returns battles where the agent fought on either side,
// newest first.
func (s *SQLiteIndex) BattlesForAgent(ctx context.Context, agentID string, limit int) ([]BattleRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, at, challenger, opponent, winner, loser, transferred, percent, eliminated
		 FROM battles WHERE challenger = ? OR opponent = ? ORDER BY seq DESC LIMIT ?`,
		agentID, agentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BattleRow
	for rows.Next() {
		var r BattleRow
		var elim int
		if err := rows.Scan(&r.Seq, &r.At, &r.Challenger, &r.Opponent, &r.Winner, &r.Loser, &r.Transferred, &r.Percent, &elim); err != nil {
			return nil, err
		}
		r.Eliminated = elim != 0
		out = append(out, r)
	}
	return out, rows.Err()
}
