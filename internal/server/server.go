package server

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"time"
)

// Config carries everything the handlers need. It is built once at startup
// and passed explicitly; there are no package-level singletons.
type Config struct {
	Addr      string // e.g. ":5000"
	DB        *sql.DB
	BaseURL   string // prefix for derived image URLs, e.g. "http://localhost:5000"
	UploadDir string // persistent storage served under /uploads/
	TempDir   string // scratch space for create-user multipart bodies
}

type Server struct {
	httpServer *http.Server
}

func New(cfg Config) *Server {
	mux := http.NewServeMux()

	tempUploads := NewTempUploadStore(cfg.TempDir)

	mux.Handle("GET /api/users/all", cfg.listUsersHandler())
	mux.Handle("POST /api/users/add", cfg.createUserHandler(tempUploads))
	mux.Handle("GET /api/users/image/{useruuid}/{type}", cfg.imageHandler())
	mux.Handle("GET /uploads/", cfg.uploadsHandler())
	mux.Handle("GET /health", healthHandler())
	mux.Handle("GET /ready", cfg.readyHandler())
	mux.Handle("GET /{$}", cfg.rootHandler())

	// Wrap middleware: requestID -> logging -> cors -> mux
	var handler http.Handler = mux
	handler = corsMiddleware(handler)
	handler = loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{httpServer: s}
}

// Handler exposes the full middleware-wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
