package cmd

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/jimezsa/imsctl/internal/api"
	"github.com/jimezsa/imsctl/internal/config"
	"github.com/jimezsa/imsctl/internal/console"
	"github.com/jimezsa/imsctl/internal/network"
	"github.com/jimezsa/imsctl/internal/schema"
	"github.com/jimezsa/imsctl/internal/ui"
)

type Context struct {
	Out        io.Writer
	Err        io.Writer
	In         io.Reader
	UI         *ui.UI
	Config     config.Config
	ConfigDir  string
	Logger     zerolog.Logger
	Console    *console.Console
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode
}

// NewConsole wires the HTTP client, the API client and the entity registry
// for cfg. It opens no connection.
func NewConsole(cfg config.Config, logger zerolog.Logger) (*console.Console, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	httpClient, err := network.NewClient(network.Options{TimeoutSeconds: cfg.TimeoutSeconds})
	if err != nil {
		return nil, err
	}
	client, err := api.NewClient(httpClient, api.Options{
		BaseURL: cfg.BaseURL,
		Token:   cfg.Token,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	return console.New(client, schema.DefaultRegistry(), console.Options{
		Catalogs:       cfg.EffectiveCatalogs(),
		Location:       loc,
		Logger:         logger,
		ReferencePages: cfg.ReferencePages,
	}), nil
}
