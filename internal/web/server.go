// Package web serves the administrative console as server-rendered HTML.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jimezsa/imsctl/internal/console"
	"github.com/jimezsa/imsctl/internal/schema"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	DefaultListen   = "127.0.0.1:8090"
	shutdownTimeout = 10 * time.Second
	maxUploadBytes  = 32 << 20
)

type Options struct {
	Logger zerolog.Logger
	Debug  bool
}

// Server routes every entity of the console's registry.
type Server struct {
	console *console.Console
	engine  *gin.Engine
	logger  zerolog.Logger
}

func New(c *console.Console, opts Options) (*Server, error) {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{console: c, logger: opts.Logger}
	engine := gin.New()
	engine.MaxMultipartMemory = maxUploadBytes
	engine.SetHTMLTemplate(tmpl)
	engine.Use(requestID(), accessLog(opts.Logger), s.recovery())
	s.engine = engine
	s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	s.engine.GET("/", s.home)
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	for _, e := range s.console.Registry.Entities() {
		base := "/" + e.Path
		if e.Can(schema.CapList) {
			s.engine.GET(base, s.list(e))
		}
		if e.Can(schema.CapCreate) {
			s.engine.GET(base+"/create", s.createForm(e))
			s.engine.POST(base+"/create", s.createSubmit(e))
		}
		if e.Can(schema.CapGet) {
			s.engine.GET(base+"/details", s.details(e))
		}
		if e.Can(schema.CapUpdate) {
			s.engine.GET(base+"/edit", s.editForm(e))
			s.engine.POST(base+"/edit", s.editSubmit(e))
		}
		if e.Can(schema.CapDelete) {
			s.engine.GET(base+"/delete", s.deleteConfirm(e))
			s.engine.POST(base+"/delete", s.deleteSubmit(e))
		}
	}
	s.engine.NoRoute(func(c *gin.Context) {
		s.renderError(c, http.StatusNotFound, "", "Page not found.")
	})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("console listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info().Msg("console stopped")
	return nil
}
