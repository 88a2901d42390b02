package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/purrsec/Hackathon-parrotAI/internal/mission"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPlanTimeout  = 90 * time.Second
)

// wsFrame is the envelope for every outbound WebSocket message.
type wsFrame struct {
	Type          string          `json:"type"`
	ID            string          `json:"id,omitempty"`
	Understanding string          `json:"understanding,omitempty"`
	Mission       *mission.Plan   `json:"mission,omitempty"`
	Report        *mission.Report `json:"report,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// wsInbound is an operator message received over the socket. A plain
// message starts planning; a confirmation message resolves a pending plan.
type wsInbound struct {
	ID                string `json:"id,omitempty"`
	Message           string `json:"message,omitempty"`
	IsConfirmation    bool   `json:"is_confirmation,omitempty"`
	ConfirmationFor   string `json:"confirmation_for,omitempty"`
	ConfirmationValue bool   `json:"confirmation_value,omitempty"`
}

// wsHub tracks connected operator sessions and broadcasts mission results.
type wsHub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*wsConn]struct{}
}

type wsConn struct {
	sock *websocket.Conn
	mu   sync.Mutex // serializes writes
}

func (c *wsConn) send(frame wsFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.sock.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return c.sock.WriteJSON(frame)
}

func newWSHub(logger *slog.Logger) *wsHub {
	return &wsHub{
		logger: logger,
		conns:  make(map[*wsConn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The CORS middleware gates browser origins; the upgrade
			// itself accepts any origin so CLI clients can connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// handleWS upgrades the connection and pumps operator messages through
// the mission service until the peer disconnects.
func (h *wsHub) handleWS(s *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sock, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		conn := &wsConn{sock: sock}
		h.mu.Lock()
		h.conns[conn] = struct{}{}
		h.mu.Unlock()

		defer func() {
			h.mu.Lock()
			delete(h.conns, conn)
			h.mu.Unlock()
			_ = sock.Close()
		}()

		_ = conn.send(wsFrame{Type: "welcome"})

		for {
			var in wsInbound
			if err := sock.ReadJSON(&in); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Warn("websocket read failed", "error", err)
				}
				return
			}
			h.dispatch(s, conn, in)
		}
	}
}

func (h *wsHub) dispatch(s *Server, conn *wsConn, in wsInbound) {
	switch {
	case in.IsConfirmation:
		h.handleConfirmation(s, conn, in)
	case in.Message != "":
		h.handlePlan(s, conn, in)
	default:
		_ = conn.send(wsFrame{Type: "error", Error: "empty message"})
	}
}

func (h *wsHub) handlePlan(s *Server, conn *wsConn, in wsInbound) {
	ctx, cancel := context.WithTimeout(context.Background(), wsPlanTimeout)
	defer cancel()

	proposal, err := s.service.Plan(ctx, in.Message)
	if err != nil {
		h.logger.Error("planning failed", "error", err)
		_ = conn.send(wsFrame{Type: "error", ID: in.ID, Error: err.Error()})
		return
	}

	_ = conn.send(wsFrame{
		Type:          "mission_confirmation",
		ID:            proposal.MissionID,
		Understanding: proposal.Understanding,
		Mission:       proposal.Plan,
	})
}

func (h *wsHub) handleConfirmation(s *Server, conn *wsConn, in wsInbound) {
	id := in.ConfirmationFor
	if id == "" {
		_ = conn.send(wsFrame{Type: "error", Error: "confirmation_for is required"})
		return
	}

	if !in.ConfirmationValue {
		if err := s.service.Reject(id); err != nil {
			_ = conn.send(wsFrame{Type: "error", ID: id, Error: err.Error()})
			return
		}
		_ = conn.send(wsFrame{Type: "mission_cancelled", ID: id})
		return
	}

	if err := s.service.Confirm(id, s.dryRun); err != nil {
		_ = conn.send(wsFrame{Type: "error", ID: id, Error: err.Error()})
		return
	}
	_ = conn.send(wsFrame{Type: "mission_confirmed", ID: id})
}

// broadcastResult pushes a finished mission report to every session.
func (h *wsHub) broadcastResult(missionID string, report *mission.Report) {
	h.mu.Lock()
	conns := make([]*wsConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	frame := wsFrame{Type: "mission_result", ID: missionID, Report: report}
	for _, c := range conns {
		if err := c.send(frame); err != nil {
			h.logger.Warn("websocket broadcast failed", "error", err)
		}
	}
}

// close shuts every open session down.
func (h *wsHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		_ = c.sock.Close()
	}
	h.conns = make(map[*wsConn]struct{})
}
