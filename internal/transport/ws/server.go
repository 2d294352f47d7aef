package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gridclash.ai/internal/protocol"
	"gridclash.ai/internal/sim/arena"
)

const cmdTimeout = 5 * time.Second

type Server struct {
	arena *arena.Arena
	log   *log.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]chan []byte
}

func NewServer(a *arena.Arena, logger *log.Logger) *Server {
	return &Server{
		arena: a,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		clients: map[string]chan []byte{},
	}
}

// Notify implements arena.Notifier: fan the record out to every connected
// session. Slow clients drop records rather than stalling the arena loop.
func (s *Server) Notify(n protocol.Notification) {
	b, err := json.Marshal(n)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, out := range s.clients {
		select {
		case out <- b:
		default:
		}
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess, ok := s.handshake(conn)
		if !ok {
			return
		}
		defer s.dropClient(sess.id)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go closeOnDone(ctx, conn)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-sess.out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				continue
			}
			switch base.Type {
			case protocol.TypeCmd:
				var cmd protocol.CmdMsg
				if err := json.Unmarshal(msg, &cmd); err != nil {
					continue
				}
				if cmd.ProtocolVersion != protocol.Version {
					continue
				}
				s.dispatch(ctx, sess, cmd)
			case protocol.TypeStateReq:
				s.sendState(ctx, sess)
			}
		}
	}
}

// closeOnDone tears the connection down as soon as the session context
// ends, so a reader blocked in ReadMessage does not linger until its read
// deadline after the writer has already failed.
func closeOnDone(ctx context.Context, conn *websocket.Conn) {
	<-ctx.Done()
	_ = conn.Close()
}

type session struct {
	id      string
	agentID string // empty for observers
	staker  string
	out     chan []byte
}

func (s *Server) handshake(conn *websocket.Conn) (*session, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, false
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil, false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil, false
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()
	roster, err := s.arena.RequestRoster(ctx)
	if err != nil {
		return nil, false
	}

	sess := &session{
		id:  uuid.NewString(),
		out: make(chan []byte, 64),
	}
	switch hello.Role {
	case protocol.RoleAgent:
		name := strings.TrimSpace(hello.AgentName)
		for _, ag := range roster {
			if ag.Name == name {
				sess.agentID = ag.ID
				break
			}
		}
		if sess.agentID == "" {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown agent name"), time.Now().Add(time.Second))
			return nil, false
		}
		sess.staker = name
	case protocol.RoleObserver:
		sess.staker = strings.TrimSpace(hello.StakerName)
	default:
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad role"), time.Now().Add(time.Second))
		return nil, false
	}
	if hello.StakerName != "" {
		sess.staker = strings.TrimSpace(hello.StakerName)
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sess.id,
		AgentID:         sess.agentID,
		ArenaParams:     s.arena.Params(),
		Roster:          rosterRefs(roster),
	}
	if err := writeJSON(conn, welcome); err != nil {
		return nil, false
	}

	s.mu.Lock()
	s.clients[sess.id] = sess.out
	s.mu.Unlock()
	return sess, true
}

func (s *Server) dropClient(id string) {
	s.mu.Lock()
	delete(s.clients, id)
	s.mu.Unlock()
}

func (s *Server) dispatch(ctx context.Context, sess *session, cmd protocol.CmdMsg) {
	callCtx, cancel := context.WithTimeout(ctx, cmdTimeout)
	defer cancel()

	var note protocol.Notification
	var err error
	switch cmd.Op {
	case protocol.OpMove:
		err = s.requireAgent(sess)
		if err == nil {
			note, err = s.arena.RequestMove(callCtx, sess.agentID, cmd.DX, cmd.DY)
		}
	case protocol.OpStake:
		note, err = s.arena.RequestStake(callCtx, sess.staker, cmd.TargetID, cmd.Amount)
	case protocol.OpWithdraw:
		note, err = s.arena.RequestWithdraw(callCtx, sess.staker, cmd.TargetID, cmd.Shares)
	case protocol.OpChallenge:
		err = s.requireAgent(sess)
		if err == nil {
			note, err = s.arena.RequestChallenge(callCtx, sess.agentID, cmd.TargetID)
		}
	case protocol.OpProposeAlliance:
		err = s.requireAgent(sess)
		if err == nil {
			note, err = s.arena.RequestProposeAlliance(callCtx, sess.agentID, cmd.TargetID)
		}
	case protocol.OpBreakAlliance:
		err = s.requireAgent(sess)
		if err == nil {
			note, err = s.arena.RequestBreakAlliance(callCtx, sess.agentID)
		}
	default:
		err = &arena.OpError{Code: protocol.ErrBadRequest, Message: "unknown op " + cmd.Op}
	}

	res := protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		CmdID:           cmd.CmdID,
		OK:              err == nil,
	}
	if err != nil {
		res.Code = arena.ErrCode(err)
		res.Message = err.Error()
	} else {
		res.Seq = note.Seq
	}
	s.send(sess, res)
}

func (s *Server) requireAgent(sess *session) error {
	if sess.agentID == "" {
		return &arena.OpError{Code: protocol.ErrBadRequest, Message: "observer sessions cannot act"}
	}
	return nil
}

func (s *Server) sendState(ctx context.Context, sess *session) {
	callCtx, cancel := context.WithTimeout(ctx, cmdTimeout)
	defer cancel()

	roster, err := s.arena.RequestRoster(callCtx)
	if err != nil {
		return
	}
	state := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Roster:          rosterRefs(roster),
	}
	for _, ag := range roster {
		v, err := s.arena.RequestVault(callCtx, ag.ID)
		if err != nil {
			return
		}
		state.Vaults = append(state.Vaults, protocol.VaultRef{AgentID: v.AgentID, Staked: v.Staked, Shares: v.Shares})
	}
	s.send(sess, state)
}

func (s *Server) send(sess *session, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case sess.out <- b:
	default:
		s.log.Printf("session %s: send queue full, dropping %T", sess.id, v)
	}
}

func rosterRefs(roster []arena.AgentView) []protocol.AgentRef {
	refs := make([]protocol.AgentRef, 0, len(roster))
	for _, ag := range roster {
		refs = append(refs, protocol.AgentRef{
			ID:    ag.ID,
			Name:  ag.Name,
			Pos:   [2]int{ag.X, ag.Y},
			Alive: ag.Alive,
			Ally:  ag.Ally,
		})
	}
	return refs
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
