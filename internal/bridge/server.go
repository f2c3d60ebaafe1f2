package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/projector-rig/internal/logger"
	"github.com/Faultbox/projector-rig/internal/projector"
	"github.com/Faultbox/projector-rig/pkg/projection"
)

// Options configure a Server.
type Options struct {
	Listen       string
	Path         string
	ReadLimit    int64
	WriteTimeout time.Duration

	// Defaults fill in create requests without parameters.
	Defaults projection.Parameters
	// RandomColor gives projectors created from Defaults a random color.
	// Explicit parameters keep their color.
	RandomColor bool
}

// DefaultOptions returns local-only settings.
func DefaultOptions() Options {
	return Options{
		Listen:       "127.0.0.1:7341",
		Path:         "/ws",
		ReadLimit:    64 << 10,
		WriteTimeout: 5 * time.Second,
		Defaults:     projection.DefaultParameters(),
	}
}

// Handler serves one operation.
type Handler func(req Request) (Response, error)

// Server routes bridge requests to a projector registry.
type Server struct {
	registry *projector.Registry
	opts     Options
	upgrader websocket.Upgrader
	handlers map[string]Handler
	log      *zap.Logger

	mu    sync.Mutex
	conns map[*conn]struct{}
}

// NewServer creates a server for registry.
func NewServer(registry *projector.Registry, opts Options) *Server {
	s := &Server{
		registry: registry,
		opts:     opts,
		handlers: make(map[string]Handler),
		conns:    make(map[*conn]struct{}),
		log:      logger.Named("bridge"),
	}
	s.RegisterHandler(OpCreate, s.handleCreate)
	s.RegisterHandler(OpChange, s.handleChange)
	s.RegisterHandler(OpDelete, s.handleDelete)
	s.RegisterHandler(OpDerived, s.handleDerived)
	s.RegisterHandler(OpList, s.handleList)
	return s
}

// RegisterHandler registers (or replaces) the handler for an operation.
// Call it before serving.
func (s *Server) RegisterHandler(op string, h Handler) {
	s.handlers[op] = h
}

// Handle dispatches one request. Errors are reported in the response.
func (s *Server) Handle(req Request) Response {
	h, ok := s.handlers[req.Op]
	if !ok {
		return errorResponse(req, fmt.Errorf("unknown op %q", req.Op))
	}
	resp, err := h(req)
	if err != nil {
		s.log.Debug("request failed", zap.String("op", req.Op), zap.String("id", req.ID), zap.Error(err))
		return errorResponse(req, err)
	}
	resp.Seq = req.Seq
	if resp.ID == "" {
		resp.ID = req.ID
	}
	return resp
}

func (s *Server) handleCreate(req Request) (Response, error) {
	params := s.opts.Defaults
	if req.Params != nil {
		params = *req.Params
	}
	var opts []projector.Option
	if req.Params == nil && s.opts.RandomColor {
		opts = append(opts, projector.WithRandomColor())
	}
	if req.CustomImage != nil {
		opts = append(opts, projector.WithCustomImage(*req.CustomImage))
	}
	_, u, err := s.registry.Create(req.ID, params, opts...)
	if err != nil {
		return Response{}, err
	}
	return UpdateResponse(u), nil
}

func (s *Server) handleChange(req Request) (Response, error) {
	if req.Change == nil {
		return Response{}, errors.New("change: missing change")
	}
	u, err := s.registry.Apply(req.ID, *req.Change)
	if err != nil {
		return Response{}, err
	}
	return UpdateResponse(u), nil
}

func (s *Server) handleDelete(req Request) (Response, error) {
	if err := s.registry.Delete(req.ID); err != nil {
		return Response{}, err
	}
	return Response{}, nil
}

func (s *Server) handleDerived(req Request) (Response, error) {
	p, err := s.registry.Get(req.ID)
	if err != nil {
		return Response{}, err
	}
	d := p.Derived()
	return Response{Derived: &d}, nil
}

func (s *Server) handleList(Request) (Response, error) {
	return Response{IDs: s.registry.IDs()}, nil
}

// conn is one client connection. Replies are written by the reading
// goroutine; broadcasts may come from any goroutine.
type conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	timeout time.Duration
}

func (c *conn) write(resp Response) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.timeout > 0 {
		c.ws.SetWriteDeadline(time.Now().Add(c.timeout))
	}
	return c.ws.WriteJSON(resp)
}

// ServeHTTP upgrades the request and serves the connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()
	if s.opts.ReadLimit > 0 {
		ws.SetReadLimit(s.opts.ReadLimit)
	}

	c := &conn{ws: ws, timeout: s.opts.WriteTimeout}
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
	}()

	log := s.log.With(zap.String("remote", r.RemoteAddr))
	log.Info("host connected")
	for {
		var req Request
		if err := ws.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("read failed", zap.Error(err))
			} else {
				log.Info("host disconnected")
			}
			return
		}
		if err := c.write(s.Handle(req)); err != nil {
			log.Warn("write failed", zap.Error(err))
			return
		}
	}
}

// Broadcast sends resp to every connected host.
func (s *Server) Broadcast(resp Response) {
	s.mu.Lock()
	conns := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.write(resp); err != nil {
			s.log.Warn("broadcast failed", zap.Error(err))
		}
	}
}

// Connections returns the number of connected hosts.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// ListenAndServe serves on opts.Listen until ctx is done. ready, if not
// nil, receives the bound address once listening.
func (s *Server) ListenAndServe(ctx context.Context, ready chan<- net.Addr) error {
	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.opts.Listen, err)
	}

	mux := http.NewServeMux()
	mux.Handle(s.opts.Path, s)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.log.Info("bridge listening", zap.Stringer("addr", ln.Addr()), zap.String("path", s.opts.Path))
	if ready != nil {
		ready <- ln.Addr()
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down bridge: %w", err)
		}
		return ctx.Err()
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
