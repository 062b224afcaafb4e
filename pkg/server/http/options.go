package http_server

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	_defaultAddr            = ":80"
	_defaultTimeout         = 30 * time.Second
	_defaultShutdownTimeout = 10 * time.Second
	_defaultPathPrefix      = "/api"
)

// Option -.
type Option func(*Server)

// Port -.
func Port(port int) Option {
	return func(s *Server) {
		s.address = net.JoinHostPort("", strconv.Itoa(port))
	}
}

// Timeout bounds the handling time of one request. Zero disables it.
func Timeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.timeout = timeout
	}
}

// ShutdownTimeout -.
func ShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = timeout
	}
}

// Middleware appends handlers that run on the API group, after the built-in
// chain and before the routes.
func Middleware(handlers ...gin.HandlerFunc) Option {
	return func(s *Server) {
		s.middleware = append(s.middleware, handlers...)
	}
}

// Routes registers the API routes under the path prefix.
func Routes(fn func(api *gin.RouterGroup)) Option {
	return func(s *Server) {
		s.routes = append(s.routes, fn)
	}
}

// Readiness serves GET /ready from check. Every entry of the returned map
// must be nil for the service to report ready.
func Readiness(check func(ctx context.Context) map[string]error) Option {
	return func(s *Server) {
		s.readiness = check
	}
}
