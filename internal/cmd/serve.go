package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jimezsa/imsctl/internal/web"
)

type ServeCmd struct {
	Listen string `help:"Address to listen on (default from config)."`
	Debug  bool   `help:"Run gin in debug mode."`
}

func (s *ServeCmd) Run(ctx *Context) error {
	addr := firstNonEmpty(s.Listen, ctx.Config.Listen, web.DefaultListen)

	srv, err := web.New(ctx.Console, web.Options{Logger: ctx.Logger, Debug: s.Debug})
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.UI.Infof("Console on http://%s (API %s)", addr, ctx.Console.Client().BaseURL())
	return srv.Run(runCtx, addr)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
