// Package server exposes caves to inspector clients over WebSocket and raw TCP.
// Every connection explores its own cave; all caves share one memento store.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/deepcave/internal/cave"
	"github.com/lawnchairsociety/deepcave/internal/command"
	"github.com/lawnchairsociety/deepcave/internal/config"
	"github.com/lawnchairsociety/deepcave/internal/logger"
)

// session pairs a connection with its cave. mu serializes commands against
// the shutdown save.
type session struct {
	mu     sync.Mutex
	id     uint64
	client Client
	cmd    *command.Session
}

type Server struct {
	cfg      config.ServerConfig
	gen      *cave.Generator
	store    cave.MementoStore
	caveSeed int64
	maxFloor int

	listener     net.Listener
	httpServer   *http.Server
	sessions     map[uint64]*session
	nextID       uint64
	mu           sync.RWMutex
	shutdown     chan struct{}
	shutdownOnce sync.Once
	connLimiter  *ConnLimiter
	StartTime    time.Time
}

// NewServer creates a server whose sessions build floors with gen and keep
// mementos in store.
func NewServer(cfg config.ServerConfig, gen *cave.Generator, store cave.MementoStore, caveSeed int64, maxFloor int) *Server {
	return &Server{
		cfg:         cfg,
		gen:         gen,
		store:       store,
		caveSeed:    caveSeed,
		maxFloor:    maxFloor,
		sessions:    make(map[uint64]*session),
		shutdown:    make(chan struct{}),
		connLimiter: NewConnLimiter(cfg.Connections),
		StartTime:   time.Now(),
	}
}

// SessionCount returns the number of connected clients.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Handler returns the HTTP routes: /ws for the inspector and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocketUpgrade)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// StartWebSocket serves Handler on address until Shutdown.
func (s *Server) StartWebSocket(address string) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	logger.Info("WebSocket server listening", "address", address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("websocket server failed: %w", err)
	}
	return nil
}

// Addr returns the TCP listener's address, or nil before Start has bound it.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start accepts raw TCP inspector connections on address until Shutdown.
func (s *Server) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	logger.Info("Server listening", "address", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return nil
			default:
				logger.Error("Error accepting connection", "error", err)
				continue
			}
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()
	ip := extractIP(remoteAddr)

	if !s.connLimiter.TryAcquire(ip) {
		logger.Warning("Connection rejected - limit exceeded", "remote_addr", remoteAddr, "ip", ip)
		conn.Write([]byte(`{"command":"connect","ok":false,"error":"too many connections"}` + "\n"))
		conn.Close()
		return
	}
	defer s.connLimiter.Release(ip)

	client := NewTelnetClient(conn)
	defer client.Close()
	s.handleClient(client)
}

// handleWebSocketUpgrade upgrades an HTTP connection to WebSocket.
func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	clientIP := getRealIP(r)

	if !s.connLimiter.TryAcquire(clientIP) {
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.cfg.WebSocket.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logger.Warning("WebSocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		s.connLimiter.Release(clientIP)
		return
	}
	if s.cfg.WebSocket.MaxMessageSize > 0 {
		wsConn.SetReadLimit(s.cfg.WebSocket.MaxMessageSize)
	}

	go func() {
		defer s.connLimiter.Release(clientIP)
		client := NewWebSocketClient(wsConn)
		defer client.Close()
		s.handleClient(client)
	}()
}

type healthResponse struct {
	Status      string    `json:"status"`
	Sessions    int       `json:"sessions"`
	Connections ConnStats `json:"connections"`
	Uptime      string    `json:"uptime"`
	CaveSeed    int64     `json:"cave_seed"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{
		Status:      "ok",
		Sessions:    s.SessionCount(),
		Connections: s.connLimiter.Stats(),
		Uptime:      time.Since(s.StartTime).Round(time.Second).String(),
		CaveSeed:    s.caveSeed,
	})
}

func (s *Server) newSession(client Client) *session {
	c := cave.New(s.caveSeed, s.gen, s.store)
	c.MaxFloor = s.maxFloor

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	sess := &session{id: s.nextID, client: client, cmd: command.NewSession(c)}
	s.sessions[sess.id] = sess
	return sess
}

func (s *Server) dropSession(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
}

// handleClient runs the command loop shared by both transports.
func (s *Server) handleClient(client Client) {
	sess := s.newSession(client)
	logger.Info("Client connected", "remote_addr", client.RemoteAddr(), "session", sess.id)

	defer func() {
		s.closeSession(sess)
		s.dropSession(sess)
		logger.Info("Client disconnected", "remote_addr", client.RemoteAddr(), "session", sess.id)
	}()

	welcome := command.Response{
		Command: "connect",
		OK:      true,
		Message: fmt.Sprintf("Connected to cave %d. Type help for commands.", s.caveSeed),
	}
	if err := client.WriteJSON(welcome); err != nil {
		return
	}

	for {
		line, err := client.ReadLine()
		if err != nil {
			return
		}

		sess.mu.Lock()
		resp := command.ParseCommand(line).Execute(sess.cmd)
		sess.mu.Unlock()

		if !resp.OK {
			logger.Debug("Command failed", "session", sess.id, "command", resp.Command, "error", resp.Error)
		}
		if err := client.WriteJSON(resp); err != nil {
			logger.Debug("Failed to write response", "session", sess.id, "error", err)
			return
		}
	}
}

// closeSession saves the floor the client was on so the next visit restores it.
func (s *Server) closeSession(sess *session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	c := sess.cmd.Cave
	level := c.Current()
	if level == nil {
		return
	}
	sess.cmd.World.Sync(level)
	if err := c.Leave(); err != nil {
		logger.Error("Failed to save floor on disconnect", "session", sess.id, "floor", level.Floor, "error", err)
	}
}

// Shutdown stops both listeners and saves every connected client's floor.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)

		s.mu.RLock()
		listener, httpServer := s.listener, s.httpServer
		sessions := make([]*session, 0, len(s.sessions))
		for _, sess := range s.sessions {
			sessions = append(sessions, sess)
		}
		s.mu.RUnlock()

		if listener != nil {
			listener.Close()
		}
		if httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := httpServer.Shutdown(ctx); err != nil {
				logger.Warning("WebSocket server shutdown", "error", err)
			}
			cancel()
		}

		for _, sess := range sessions {
			s.closeSession(sess)
			sess.client.Close()
		}

		logger.Info("Server shutdown complete, all floors saved", "sessions", len(sessions))
	})
}
