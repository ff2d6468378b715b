package cmd

import (
	"github.com/alecthomas/kong"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto" env:"IMSCTL_COLOR"`
	JSON    bool   `help:"JSON output to stdout; disables colors." env:"IMSCTL_JSON"`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging." env:"IMSCTL_VERBOSE"`

	VersionFlag kong.VersionFlag `name:"version" help:"Print version."`

	Version  VersionCmd  `cmd:"" help:"Print version."`
	Config   ConfigCmd   `cmd:"" help:"Manage configuration."`
	Entities EntitiesCmd `cmd:"" help:"List the entities and their supported operations."`
	Serve    ServeCmd    `cmd:"" help:"Serve the web console."`
	List     ListCmd     `cmd:"" help:"List one page of records."`
	Get      GetCmd      `cmd:"" help:"Show one record."`
	Create   CreateCmd   `cmd:"" help:"Create a record."`
	Update   UpdateCmd   `cmd:"" help:"Update a record."`
	Delete   DeleteCmd   `cmd:"" help:"Delete a record."`
	Upload   UploadCmd   `cmd:"" help:"Upload a file and print its stored path."`
	Browse   BrowseCmd   `cmd:"" help:"Page through records interactively."`
}

func NewCLI() *CLI {
	return &CLI{}
}
