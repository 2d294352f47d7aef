package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gridclash.ai/internal/protocol"
)

// A scripted client: joins as one of the fixed agents, stakes a starting
// bankroll on itself, then wanders and picks fights with adjacent agents.
func main() {
	var (
		url   = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name  = flag.String("name", "alpha", "agent name")
		stake = flag.Uint64("stake", 100, "initial self-stake (0 to skip)")
		every = flag.Duration("every", 10*time.Second, "action interval")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		Role:            protocol.RoleAgent,
		AgentName:       *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	var mu sync.Mutex
	var selfID string
	roster := map[string]protocol.AgentRef{}

	// One websocket writer at a time.
	var wmu sync.Mutex
	sendCmd := func(cmd protocol.CmdMsg) {
		cmd.Type = protocol.TypeCmd
		cmd.ProtocolVersion = protocol.Version
		wmu.Lock()
		err := conn.WriteJSON(cmd)
		wmu.Unlock()
		if err != nil {
			logger.Fatalf("send %s: %v", cmd.Op, err)
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	ticker := time.NewTicker(*every)
	defer ticker.Stop()
	cmdNum := 0

	go func() {
		<-stop
		_ = conn.Close()
	}()

	go func() {
		for range ticker.C {
			mu.Lock()
			self, ok := roster[selfID]
			target := ""
			if ok {
				target = adjacentOpponent(roster, self)
			}
			mu.Unlock()
			if !ok || !self.Alive {
				continue
			}
			cmdNum++
			if target != "" && rand.Intn(3) == 0 {
				sendCmd(protocol.CmdMsg{CmdID: fmt.Sprintf("C%04d", cmdNum), Op: protocol.OpChallenge, TargetID: target})
				continue
			}
			dx, dy := rand.Intn(3)-1, rand.Intn(3)-1
			if dx == 0 && dy == 0 {
				dx = 1
			}
			sendCmd(protocol.CmdMsg{CmdID: fmt.Sprintf("C%04d", cmdNum), Op: protocol.OpMove, DX: dx, DY: dy})
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			mu.Lock()
			selfID = w.AgentID
			for _, ag := range w.Roster {
				roster[ag.ID] = ag
			}
			mu.Unlock()
			logger.Printf("WELCOME agent_id=%s grid=%dx%d", w.AgentID, w.ArenaParams.GridWidth, w.ArenaParams.GridHeight)
			if *stake > 0 {
				sendCmd(protocol.CmdMsg{CmdID: "C0000", Op: protocol.OpStake, TargetID: selfID, Amount: *stake})
			}

		case protocol.TypeResult:
			var res protocol.ResultMsg
			if err := json.Unmarshal(msg, &res); err != nil {
				continue
			}
			if !res.OK {
				logger.Printf("RESULT %s: %s %s", res.CmdID, res.Code, res.Message)
			}

		case protocol.TypeNotify:
			var n protocol.Notification
			if err := json.Unmarshal(msg, &n); err != nil {
				continue
			}
			mu.Lock()
			applyNotify(roster, n)
			mu.Unlock()
			if n.Kind == protocol.NotifyBattle {
				logger.Printf("battle: %s beat %s for %d (eliminated=%v)", n.Winner, n.Loser, n.Transferred, n.Eliminated)
			}
		}
	}
}

func adjacentOpponent(roster map[string]protocol.AgentRef, self protocol.AgentRef) string {
	for id, ag := range roster {
		if id == self.ID || !ag.Alive || ag.Ally == self.ID {
			continue
		}
		if abs(ag.Pos[0]-self.Pos[0]) <= 1 && abs(ag.Pos[1]-self.Pos[1]) <= 1 {
			return id
		}
	}
	return ""
}

func applyNotify(roster map[string]protocol.AgentRef, n protocol.Notification) {
	switch n.Kind {
	case protocol.NotifyMove:
		ag := roster[n.Agent]
		ag.Pos = [2]int{n.X, n.Y}
		roster[n.Agent] = ag
	case protocol.NotifyBattle:
		if n.Eliminated {
			ag := roster[n.Loser]
			ag.Alive = false
			roster[n.Loser] = ag
		}
	case protocol.NotifyAllianceFormed:
		a, b := roster[n.Agent], roster[n.Other]
		a.Ally, b.Ally = n.Other, n.Agent
		roster[n.Agent], roster[n.Other] = a, b
	case protocol.NotifyAllianceBroken:
		a, b := roster[n.Agent], roster[n.Other]
		a.Ally, b.Ally = "", ""
		roster[n.Agent], roster[n.Other] = a, b
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
