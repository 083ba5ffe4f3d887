// Package encode implements the "encode" command, which converts an image
// into a tag's native framebuffer.
package encode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/urfave/cli/v3"
	"github.com/viant/afs/file"

	"github.com/flavioheleno/opendisplay/cmd/opendisplay/shared"
	"github.com/flavioheleno/opendisplay/framebuffer"
	"github.com/flavioheleno/opendisplay/internal/log"
)

const (
	flagOut        = "out"
	flagDither     = "dither"
	flagNoCompress = "no-compress"
	flagPreview    = "preview"
)

// GetCommand returns the "encode" command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     "Convert a PNG, JPEG or GIF image into a tag framebuffer",
		ArgsUsage: "<image>",
		Action:    run,
		Flags: append(shared.TypeFlags(),
			&cli.StringFlag{
				Name:     flagOut,
				Aliases:  []string{"o"},
				Usage:    "Write the framebuffer to `FILE`",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  flagDither,
				Usage: "Use Floyd-Steinberg dithering instead of nearest color mapping",
			},
			&cli.BoolFlag{
				Name:  flagNoCompress,
				Usage: "Never zlib-compress the framebuffer",
			},
			&cli.StringFlag{
				Name:  flagPreview,
				Usage: "Also write the quantized image as PNG to `FILE`",
			},
		),
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("encode: expected exactly one image file")
	}
	env, err := shared.Setup(ctx, cmd)
	if err != nil {
		return err
	}
	tt, err := env.TagType(ctx, cmd)
	if err != nil {
		return err
	}

	in := cmd.Args().First()
	data, err := env.FS.DownloadWithURL(ctx, in)
	if err != nil {
		return fmt.Errorf("read %s: %w", in, err)
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %s: %w", in, err)
	}
	env.Logger.Debug("image.decoded", "file", in, "format", format, "bounds", src.Bounds().String())

	opts := framebuffer.Options{Dither: cmd.Bool(flagDither)}
	if cmd.Bool(flagNoCompress) {
		off := false
		opts.Compress = &off
	}
	f, err := framebuffer.Encode(src, tt, opts)
	if err != nil {
		return fmt.Errorf("encode %s for %s: %w", in, tt, err)
	}

	out := cmd.String(flagOut)
	if err := env.FS.Upload(ctx, out, file.DefaultFileOsMode, bytes.NewReader(f.Data)); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	if preview := cmd.String(flagPreview); preview != "" {
		img, err := framebuffer.Decode(f, tt)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("preview: %w", err)
		}
		if err := env.FS.Upload(ctx, preview, file.DefaultFileOsMode, &buf); err != nil {
			return fmt.Errorf("write %s: %w", preview, err)
		}
		log.InfoTo(env.ErrOut, "preview written to %s\n", preview)
	}

	mode := "raw"
	if f.Compressed {
		mode = "zlib"
	}
	_, err = fmt.Fprintf(env.Out, "%s: %d bytes (%dx%d, %d bpp, %s) for %s\n",
		out, len(f.Data), f.Width, f.Height, f.Depth, mode, tt)
	return err
}
