package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	Config   string `help:"Path to config file"`
	LogLevel string `default:"info" help:"Log level (debug, info, warn, error)"`
	LogJSON  bool   `help:"Emit logs as JSON"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Start the chat server (default)"`
	Migrate MigrateCmd `cmd:"" help:"Database migrations"`
	Tools   ToolsCmd   `cmd:"" help:"List registered tools"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("skela"),
		kong.Description("Project design assistant server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
