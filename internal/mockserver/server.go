// Package mockserver is a local stand-in for the Mau API. It speaks the
// same wire format as the real service and keeps its state in libSQL, but
// it does not play the game: actions only drive the room and game
// lifecycle and return the current snapshot.
package mockserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Server runs the mock API on one listen address.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

func New(addr string, logger *slog.Logger, db *sql.DB) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(logger, db),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// NewRouter builds the full HTTP surface: the Mau API under /api plus
// /healthz, /openapi.json and /docs.
func NewRouter(logger *slog.Logger, db *sql.DB) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	addRoutes(r, logger, db, NewSQLiteStore(db))
	return r
}

// Run serves until ctx is cancelled, then drains open requests.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	s.logger.Info("mock api listening", "addr", ln.Addr().String(), "base_url", baseURL(ln.Addr()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down mock api")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.srv.Shutdown(sctx)
	})
	return g.Wait()
}

// baseURL is the value to put in MAU_SERVER to point the client here.
func baseURL(addr net.Addr) string {
	host := addr.String()
	if tcp, ok := addr.(*net.TCPAddr); ok && tcp.IP.IsUnspecified() {
		host = net.JoinHostPort("localhost", fmt.Sprint(tcp.Port))
	}
	return "http://" + host + "/api/"
}

// requestInfo collects what inner handlers learn about a request, for the
// access log line.
type requestInfo struct {
	userID string
}

func infoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(ctxKeyInfo).(*requestInfo)
	return info
}

// requestLogger writes one line per request with the matched route and,
// for authenticated calls, the acting user. Rejected calls log at warn.
func requestLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			info := &requestInfo{}
			r = r.WithContext(context.WithValue(r.Context(), ctxKeyInfo, info))

			defer func() {
				status := ww.Status()
				level := slog.LevelInfo
				switch {
				case status >= http.StatusInternalServerError:
					level = slog.LevelError
				case status >= http.StatusBadRequest:
					level = slog.LevelWarn
				}

				attrs := []any{
					"method", r.Method,
					"route", chi.RouteContext(r.Context()).RoutePattern(),
					"path", r.URL.Path,
					"status", status,
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				}
				if info.userID != "" {
					attrs = append(attrs, "user_id", info.userID)
				}
				logger.Log(r.Context(), level, "mock api request", attrs...)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
