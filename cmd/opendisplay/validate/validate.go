// Package validate implements the "validate" command, which checks a
// drawcustom payload against a tag type.
package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/flavioheleno/opendisplay/cmd/opendisplay/shared"
	"github.com/flavioheleno/opendisplay/drawcustom"
)

const flagStates = "states"

// GetCommand returns the "validate" command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check a drawcustom payload against a tag type",
		ArgsUsage: "<payload.yaml>",
		Action:    run,
		Flags: append(shared.TypeFlags(),
			&cli.StringFlag{
				Name:      flagStates,
				Usage:     "YAML mapping of entity ids to states, used to render templates first",
				TakesFile: true,
			},
		),
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("validate: expected exactly one payload file")
	}
	env, err := shared.Setup(ctx, cmd)
	if err != nil {
		return err
	}
	tt, err := env.TagType(ctx, cmd)
	if err != nil {
		return err
	}

	file := cmd.Args().First()
	data, err := env.FS.DownloadWithURL(ctx, file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	req, err := drawcustom.Parse(data)
	if err != nil {
		return err
	}

	if statesFile := cmd.String(flagStates); statesFile != "" {
		states, err := loadStates(ctx, env, statesFile)
		if err != nil {
			return err
		}
		if req, err = req.Render(states); err != nil {
			return err
		}
	}

	warns, err := req.Validate(tt)
	for _, w := range warns {
		fmt.Fprintf(env.Out, "warning: %s\n", w)
	}
	if err != nil {
		env.Logger.Debug("drawcustom.validate.failed", "file", file, "type", tt.TypeID, "error", err)
		return err
	}
	_, err = fmt.Fprintf(env.Out, "%s: %d elements OK for %s\n", file, len(req.Payload), tt)
	return err
}

func loadStates(ctx context.Context, env *shared.Env, file string) (drawcustom.StateMap, error) {
	data, err := env.FS.DownloadWithURL(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	states := drawcustom.StateMap{}
	if err := yaml.Unmarshal(data, &states); err != nil {
		return nil, fmt.Errorf("decode %s: %w", file, err)
	}
	return states, nil
}
