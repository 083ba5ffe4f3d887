// Package tagtypes implements the "tagtypes" command, which lists, shows and
// refreshes the cached tag type definitions.
package tagtypes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/flavioheleno/opendisplay/cmd/opendisplay/shared"
)

// GetCommand returns the "tagtypes" command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "tagtypes",
		Usage: "Inspect tag type definitions",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List known tag types",
				Action: list,
			},
			{
				Name:      "show",
				Usage:     "Print a tag type definition as JSON",
				ArgsUsage: "<id>",
				Action:    show,
			},
			{
				Name:   "refresh",
				Usage:  "Fetch definitions from OpenEPaperLink now",
				Action: refresh,
			},
		},
	}
}

func list(ctx context.Context, cmd *cli.Command) error {
	env, err := shared.Setup(ctx, cmd)
	if err != nil {
		return err
	}
	m := env.Manager()
	if err := m.EnsureLoaded(ctx); err != nil {
		return err
	}

	all := m.All()
	w := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tHEX\tNAME\tSIZE\tBPP\tCOLORS")
	for _, id := range m.IDs() {
		tt := all[id]
		fmt.Fprintf(w, "%d\t0x%02X\t%s\t%dx%d\t%d\t%s\n",
			id, id, tt.Name, tt.Width, tt.Height, tt.BPP, strings.Join(tt.ColorTable.Names(), ","))
	}
	return w.Flush()
}

func show(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("show: expected exactly one tag type id")
	}
	id, err := shared.ParseID(cmd.Args().First())
	if err != nil {
		return err
	}
	env, err := shared.Setup(ctx, cmd)
	if err != nil {
		return err
	}

	tt, err := env.Manager().Info(ctx, id)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(tt, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(env.Out, "%s\n", data)
	return err
}

func refresh(ctx context.Context, cmd *cli.Command) error {
	env, err := shared.Setup(ctx, cmd)
	if err != nil {
		return err
	}
	m := env.Manager()
	if !m.Refresh(ctx) {
		return errors.New("refresh: could not fetch tag type definitions")
	}
	_, err = fmt.Fprintf(env.Out, "fetched %d tag types at %s\n", len(m.IDs()), m.LastUpdate().Format("2006-01-02 15:04:05"))
	return err
}
