package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/flavioheleno/opendisplay/cmd/opendisplay/encode"
	"github.com/flavioheleno/opendisplay/cmd/opendisplay/shared"
	"github.com/flavioheleno/opendisplay/cmd/opendisplay/tagtypes"
	"github.com/flavioheleno/opendisplay/cmd/opendisplay/validate"
	"github.com/flavioheleno/opendisplay/cmd/opendisplay/version"
	"github.com/flavioheleno/opendisplay/internal/log"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "opendisplay",
		Usage: "tag types, drawcustom payloads and framebuffers for OpenDisplay E-Paper tags",
		Flags: shared.GlobalFlags(),
		Commands: []*cli.Command{
			tagtypes.GetCommand(),
			validate.GetCommand(),
			encode.GetCommand(),
			version.GetCommand(),
		},
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.ErrorMsg("%s\n", err)
		os.Exit(1)
	}
}
