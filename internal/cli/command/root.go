package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/tw5keep/internal/cli/connection"
	"github.com/yndnr/tw5keep/internal/cli/output"
	"github.com/yndnr/tw5keep/internal/infra/buildinfo"
)

// DefaultServer is used when neither --server nor TW5KEEP_SERVER is set.
const DefaultServer = "localhost:8080"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "tw5keep-cli",
		Usage:   "Inspect and manage a tw5keep wiki",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ProbeCommand(),
			PullCommand(),
			PushCommand(),
			BackupsCommand(),
		},
		Before: func(c *cli.Context) error {
			_, err := output.ParseFormat(c.String("output"))
			return err
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "tw5keep server address (e.g., localhost:8080)",
			EnvVars: []string{"TW5KEEP_SERVER"},
			Value:   DefaultServer,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server string
	Output output.Format
}

// ParseGlobalFlags extracts global flags from context. The output format
// was validated in Before.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	format, _ := output.ParseFormat(c.String("output"))
	return &GlobalFlags{
		Server: c.String("server"),
		Output: format,
	}
}

// client returns an HTTP client for the selected server.
func client(c *cli.Context) *connection.HTTPClient {
	return connection.NewHTTPClient(ParseGlobalFlags(c).Server)
}

// render writes data to the app's writer in the selected format.
func render(c *cli.Context, data any, wide bool) error {
	return output.NewFormatter(ParseGlobalFlags(c).Output, wide).Format(c.App.Writer, data)
}
