package demo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/ray-log-explorer/pkg/logging"
)

// Server runs the fake dashboard on a local port
type Server struct {
	srv *http.Server
	url string
}

// Start serves the cluster on addr ("127.0.0.1:0" picks a free port)
func Start(c *Cluster, addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	s := &Server{
		srv: &http.Server{
			Handler:           NewRouter(c),
			ReadHeaderTimeout: 5 * time.Second,
		},
		url: "http://" + ln.Addr().String(),
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("demo dashboard stopped", zap.Error(err))
		}
	}()
	logging.Info("demo dashboard listening", zap.String("url", s.url))
	return s, nil
}

// URL returns the dashboard base URL
func (s *Server) URL() string {
	return s.url
}

// Close shuts the server down
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
