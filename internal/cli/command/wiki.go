package command

import (
	"bytes"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// davValue is the capability the browser saver looks for.
const davValue = "tw5/put"

// ProbeResult is the outcome of an OPTIONS probe.
type ProbeResult struct {
	Server       string `json:"server" yaml:"server"`
	DAV          string `json:"dav" yaml:"dav"`
	PutSupported bool   `json:"put_supported" yaml:"put_supported"`
}

// TransferResult summarizes a pull or push.
type TransferResult struct {
	Server string `json:"server" yaml:"server"`
	File   string `json:"file" yaml:"file"`
	Bytes  int    `json:"bytes" yaml:"bytes"`
}

// ProbeCommand checks that the server advertises PUT saving.
func ProbeCommand() *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "Check that the server accepts PUT saves",
		Action: func(c *cli.Context) error {
			cl := client(c)
			header, err := cl.Options(c.Context)
			if err != nil {
				return err
			}

			dav := header.Get("dav")
			return render(c, &ProbeResult{
				Server:       cl.BaseURL(),
				DAV:          dav,
				PutSupported: dav == davValue,
			}, false)
		},
	}
}

// PullCommand downloads the document.
func PullCommand() *cli.Command {
	return &cli.Command{
		Name:  "pull",
		Usage: "Download the wiki document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out",
				Usage: "Write the document to `FILE` instead of stdout",
			},
		},
		Action: func(c *cli.Context) error {
			cl := client(c)
			body, err := cl.Get(c.Context)
			if err != nil {
				return err
			}

			out := c.String("out")
			if out == "" {
				_, err := c.App.Writer.Write(body)
				return err
			}

			if err := os.WriteFile(out, body, 0644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			return render(c, &TransferResult{Server: cl.BaseURL(), File: out, Bytes: len(body)}, false)
		},
	}
}

// PushCommand uploads a file as the new document.
func PushCommand() *cli.Command {
	return &cli.Command{
		Name:      "push",
		Usage:     "Replace the wiki document with FILE",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("push requires exactly one FILE argument")
			}
			file := c.Args().First()

			body, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read %s: %w", file, err)
			}

			cl := client(c)
			if err := cl.Put(c.Context, bytes.NewReader(body)); err != nil {
				return err
			}
			return render(c, &TransferResult{Server: cl.BaseURL(), File: file, Bytes: len(body)}, false)
		},
	}
}
