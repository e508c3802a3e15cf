// Package server exposes the match engine over WebSocket. Each player keeps
// one connection per match; actions come in as JSON requests and every state
// change is pushed to both players with hidden zones redacted per recipient.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pokefree/tcg-server-go/internal/config"
	"github.com/pokefree/tcg-server-go/internal/game"
	"github.com/pokefree/tcg-server-go/internal/match"
	"go.uber.org/zap"
)

// Server is the WebSocket front end.
type Server struct {
	cfg     config.ServerConfig
	manager *match.Manager
	logger  *zap.Logger

	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[string]*client // match id -> player id -> connection

	httpServer *http.Server
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates the server. The manager's notifier should be set to the
// returned server so state changes are pushed.
func New(cfg config.ServerConfig, manager *match.Manager, logger *zap.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		manager: manager,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: map[string]map[string]*client{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.httpServer = &http.Server{Addr: cfg.Address, Handler: mux}
	return s
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("websocket server listening", zap.String("address", s.cfg.Address))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("matchId")
	playerID := r.URL.Query().Get("playerId")
	if matchID == "" || playerID == "" {
		http.Error(w, "matchId and playerId are required", http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}
	s.register(matchID, playerID, c)
	s.logger.Info("player connected",
		zap.String("match_id", matchID),
		zap.String("player_id", playerID),
	)

	go s.writePump(c)
	s.readPump(r.Context(), matchID, playerID, c)
}

func (s *Server) register(matchID, playerID string, c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[matchID] == nil {
		s.clients[matchID] = map[string]*client{}
	}
	if old, ok := s.clients[matchID][playerID]; ok {
		close(old.send)
		old.conn.Close()
	}
	s.clients[matchID][playerID] = c
}

func (s *Server) unregister(matchID, playerID string, c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[matchID][playerID] == c {
		delete(s.clients[matchID], playerID)
		if len(s.clients[matchID]) == 0 {
			delete(s.clients, matchID)
		}
		close(c.send)
	}
}

func (s *Server) readPump(ctx context.Context, matchID, playerID string, c *client) {
	defer func() {
		s.unregister(matchID, playerID, c)
		c.conn.Close()
	}()
	c.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		var req game.ActionRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			s.sendTo(c, errorMessage("BAD_REQUEST", "malformed action request", nil))
			continue
		}
		// The connection identity wins over whatever the payload claims.
		req.MatchID = matchID
		req.PlayerID = playerID

		next, err := s.manager.SubmitAction(ctx, req)
		if err != nil {
			s.sendTo(c, encodeError(err))
			continue
		}
		// The submitter gets an explicit ack; both players get the new state
		// through NotifyMatch.
		s.sendTo(c, message{Type: "action_accepted"})
		_ = next
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(s.cfg.PongTimeout * 9 / 10)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case raw, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// NotifyMatch pushes the updated match to every connected player, redacted
// per recipient. Implements match.Notifier.
func (s *Server) NotifyMatch(m *match.Match) {
	s.mu.RLock()
	conns := make(map[string]*client, 2)
	for playerID, c := range s.clients[m.ID] {
		conns[playerID] = c
	}
	s.mu.RUnlock()

	for playerID, c := range conns {
		view := buildMatchView(m, playerID)
		s.sendTo(c, message{Type: "match_state", Match: view})
	}
}

func (s *Server) sendTo(c *client, msg message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("marshal outbound message", zap.Error(err))
		return
	}
	select {
	case c.send <- raw:
	default:
		s.logger.Warn("dropping message to slow client")
	}
}
