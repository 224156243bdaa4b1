package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	cws "github.com/coder/websocket"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/warpdl/cookiebridge/pkg/logger"
)

// WebConfig configures the HTTP JSON-RPC endpoint.
type WebConfig struct {
	Secret    string // bearer token, required
	ListenAll bool   // bind every interface instead of loopback
	Port      int
}

// WebServer serves the messenger over HTTP POST at /jsonrpc and over
// websocket at /jsonrpc/ws. Both routes require the bearer secret.
type WebServer struct {
	cfg    WebConfig
	log    logger.Logger
	a      jrpc2.Assigner
	bridge jhttp.Bridge

	mu     sync.Mutex
	server *http.Server
}

// NewWebServer returns a WebServer dispatching through a.
func NewWebServer(l logger.Logger, a jrpc2.Assigner, cfg WebConfig) *WebServer {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &WebServer{
		cfg:    cfg,
		log:    l,
		a:      a,
		bridge: jhttp.NewBridge(a, nil),
	}
}

func (s *WebServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /jsonrpc", requireToken(s.cfg.Secret, s.bridge))
	mux.Handle("GET /jsonrpc/ws", requireToken(s.cfg.Secret, http.HandlerFunc(s.serveWS)))
	return mux
}

func (s *WebServer) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := cws.Accept(w, r, nil)
	if err != nil {
		s.log.Warning("websocket accept: %s", err.Error())
		return
	}
	ch := &wsChannel{conn: conn, ctx: r.Context()}
	srv := jrpc2.NewServer(s.a, &jrpc2.ServerOptions{Concurrency: 1}).Start(ch)
	if err := srv.Wait(); err != nil && !errors.Is(err, jrpc2.ErrConnClosed) {
		s.log.Warning("websocket session ended: %s", err.Error())
	}
}

func (s *WebServer) addr() string {
	host := "127.0.0.1"
	if s.cfg.ListenAll {
		host = ""
	}
	return net.JoinHostPort(host, fmt.Sprint(s.cfg.Port))
}

// Start serves until Shutdown. It returns nil after a clean shutdown.
func (s *WebServer) Start() error {
	s.mu.Lock()
	s.server = &http.Server{
		Addr:              s.addr(),
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.server
	s.mu.Unlock()

	s.log.Info("json-rpc endpoint on %s", srv.Addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server and releases the bridge.
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bridge.Close()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
