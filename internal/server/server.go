// Package server exposes a messenger over the daemon's transports: a unix
// socket (a named pipe on Windows) with TCP fallback for local clients,
// and an optional authenticated HTTP endpoint.
package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/warpdl/cookiebridge/pkg/logger"
)

// Server accepts local connections and serves newline framed JSON-RPC on
// each. Calls on one connection are dispatched one at a time.
type Server struct {
	log      logger.Logger
	assigner jrpc2.Assigner
	port     int
	web      *WebServer

	mu       sync.Mutex
	listener net.Listener
	closed   bool
	conns    map[*jrpc2.Server]struct{}
	wg       sync.WaitGroup
}

// NewServer returns a Server dispatching through a. port is the TCP
// fallback port.
func NewServer(l logger.Logger, a jrpc2.Assigner, port int) *Server {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &Server{
		log:      l,
		assigner: a,
		port:     port,
		conns:    make(map[*jrpc2.Server]struct{}),
	}
}

// SetWebServer attaches an HTTP endpoint started and stopped with s.
func (s *Server) SetWebServer(ws *WebServer) {
	s.web = ws
}

// Listen creates the local listener.
func (s *Server) Listen() error {
	l, err := s.createListener()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	s.log.Info("listening on %s %s", l.Addr().Network(), l.Addr().String())
	return nil
}

// Addr returns the listener address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start listens and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve accepts connections on the listener created by Listen until ctx
// is cancelled, then shuts down.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()
	if l == nil {
		return errors.New("server: Serve called before Listen")
	}

	if s.web != nil {
		go func() {
			if err := s.web.Start(); err != nil {
				s.log.Error("web server: %s", err.Error())
			}
		}()
	}

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return nil
			}
			s.log.Error("accept: %s", err.Error())
			continue
		}
		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	srv := jrpc2.NewServer(s.assigner, &jrpc2.ServerOptions{Concurrency: 1})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.conns[srv] = struct{}{}
	s.mu.Unlock()

	srv.Start(channel.Line(conn, conn))
	if err := srv.Wait(); err != nil && !errors.Is(err, jrpc2.ErrConnClosed) {
		s.log.Warning("connection ended: %s", err.Error())
	}

	s.mu.Lock()
	delete(s.conns, srv)
	s.mu.Unlock()
}

// Shutdown closes the listener and every open connection, then removes
// the socket file. It is safe to call more than once.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	var addr net.Addr
	if s.listener != nil {
		addr = s.listener.Addr()
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.log.Warning("close listener: %s", err.Error())
		}
		s.listener = nil
	}
	conns := make([]*jrpc2.Server, 0, len(s.conns))
	for srv := range s.conns {
		conns = append(conns, srv)
	}
	s.mu.Unlock()

	for _, srv := range conns {
		srv.Stop()
	}

	if s.web != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.web.Shutdown(ctx); err != nil {
			s.log.Warning("web server shutdown: %s", err.Error())
		}
	}

	if err := cleanupSocket(addr); err != nil {
		s.log.Warning("remove socket: %s", err.Error())
	}
	return nil
}
