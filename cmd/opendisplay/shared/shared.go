// Package shared provides the flags, configuration and tag type lookup
// common to the opendisplay subcommands.
package shared

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strconv"

	"github.com/urfave/cli/v3"
	"github.com/viant/afs"

	"github.com/flavioheleno/opendisplay/internal/config"
	"github.com/flavioheleno/opendisplay/internal/log"
	"github.com/flavioheleno/opendisplay/tagtype"
)

const (
	categoryCommon = "common"
	categoryTag    = "tag type"
)

// Flag names.
const (
	FlagConfig    = "config"
	FlagCacheDir  = "cache-dir"
	FlagAPIURL    = "api-url"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
	FlagOffline   = "offline"
	FlagType      = "type"
	FlagTypeFile  = "type-file"
)

var errOffline = errors.New("offline mode")

// GlobalFlags are accepted by every command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      FlagConfig,
			Aliases:   []string{"c"},
			Usage:     "YAML configuration file",
			Category:  categoryCommon,
			TakesFile: true,
			Sources:   cli.EnvVars("OPENDISPLAY_CONFIG"),
		},
		&cli.StringFlag{
			Name:     FlagCacheDir,
			Usage:    "Directory (or afs URL) caching tag type definitions",
			Category: categoryCommon,
		},
		&cli.StringFlag{
			Name:     FlagAPIURL,
			Usage:    "GitHub contents API URL listing tag type definitions",
			Category: categoryCommon,
		},
		&cli.StringFlag{
			Name:     FlagLogLevel,
			Usage:    "Log level: debug, info, warn, error",
			Category: categoryCommon,
		},
		&cli.StringFlag{
			Name:     FlagLogFormat,
			Usage:    "Log format: text or json",
			Category: categoryCommon,
		},
		&cli.BoolFlag{
			Name:     FlagOffline,
			Usage:    "Never fetch definitions; use the cache or the built-in table",
			Category: categoryCommon,
		},
	}
}

// TypeFlags select the tag type a command works with.
func TypeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     FlagType,
			Aliases:  []string{"t"},
			Usage:    "Tag type id, decimal or 0x-prefixed hex",
			Category: categoryTag,
		},
		&cli.StringFlag{
			Name:      FlagTypeFile,
			Usage:     "Tag type definition JSON file, as published by OpenEPaperLink",
			Category:  categoryTag,
			TakesFile: true,
		},
	}
}

// Env is what a command needs to run.
type Env struct {
	Config *config.Config
	Logger *slog.Logger
	FS     afs.Service
	Out    io.Writer
	ErrOut io.Writer

	offline bool
}

// Setup loads the configuration, applies flag overrides and builds the
// logger, which writes to the command's error writer.
func Setup(ctx context.Context, cmd *cli.Command) (*Env, error) {
	fs := afs.New()
	cfg, err := config.Load(ctx, fs, cmd.String(FlagConfig))
	if err != nil {
		return nil, err
	}
	if v := cmd.String(FlagCacheDir); v != "" {
		cfg.CacheDir = v
	}
	if v := cmd.String(FlagAPIURL); v != "" {
		cfg.Source.APIURL = v
	}
	if v := cmd.String(FlagLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := cmd.String(FlagLogFormat); v != "" {
		cfg.Log.Format = v
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	root := cmd.Root()
	logger, err := log.New(root.ErrWriter, cfg.Log)
	if err != nil {
		return nil, err
	}
	return &Env{
		Config:  cfg,
		Logger:  logger,
		FS:      fs,
		Out:     root.Writer,
		ErrOut:  root.ErrWriter,
		offline: cmd.Bool(FlagOffline),
	}, nil
}

// Manager returns a tag type manager caching under the configured directory.
func (e *Env) Manager() *tagtype.Manager {
	var source tagtype.Source = offlineSource{}
	if e.offline && e.ErrOut != nil {
		log.WarnTo(e.ErrOut, "offline: tag types come from the cache or the built-in table\n")
	}
	if !e.offline {
		gh := tagtype.NewGitHubSource(e.Config.Source.Timeout)
		gh.APIURL = e.Config.Source.APIURL
		source = gh
	}
	return tagtype.NewManager(e.Config.CacheDir,
		tagtype.WithSource(source),
		tagtype.WithFS(e.FS),
		tagtype.WithCacheDuration(e.Config.CacheDuration),
		tagtype.WithLogger(e.Logger),
	)
}

// TagType resolves the tag type selected by --type-file or --type.
func (e *Env) TagType(ctx context.Context, cmd *cli.Command) (*tagtype.TagType, error) {
	if file := cmd.String(FlagTypeFile); file != "" {
		data, err := e.FS.DownloadWithURL(ctx, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		id := 0
		if v := cmd.String(FlagType); v != "" {
			if id, err = ParseID(v); err != nil {
				return nil, err
			}
		} else if parsed, err := tagtype.ParseTypeID(path.Base(file)); err == nil {
			id = parsed
		}
		return tagtype.New(id, data)
	}

	v := cmd.String(FlagType)
	if v == "" {
		return nil, fmt.Errorf("one of '--%s' or '--%s' is required", FlagType, FlagTypeFile)
	}
	id, err := ParseID(v)
	if err != nil {
		return nil, err
	}
	return e.Manager().Info(ctx, id)
}

// ParseID parses a tag type id given in decimal or with a 0x prefix.
func ParseID(s string) (int, error) {
	id, err := strconv.ParseInt(s, 0, 0)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid tag type id %q", s)
	}
	return int(id), nil
}

type offlineSource struct{}

func (offlineSource) List(context.Context) ([]tagtype.Entry, error) {
	return nil, errOffline
}

func (offlineSource) Download(context.Context, string) ([]byte, error) {
	return nil, errOffline
}
