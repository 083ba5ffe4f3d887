// Package version implements the "version" command.
package version

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// Version is set at build time with -ldflags "-X ...version.Version=v1.2.3".
var Version = "unknown"

// GetCommand returns the "version" command, which prints the program name
// and Version.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the opendisplay version",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			root := cmd.Root()
			_, err := fmt.Fprintf(root.Writer, "%s %s\n", root.Name, Version)
			return err
		},
	}
}
