package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bodgit/sprited"
	"github.com/bodgit/sprited/editor"
	"github.com/bodgit/sprited/jres"
	"github.com/bodgit/sprited/literal"
	"github.com/bodgit/sprited/palette"
	"github.com/bodgit/sprited/transform"
	"github.com/bodgit/sprited/web"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const defaultDB = "sprited.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func loadPalette(c *cli.Context) (color.Palette, error) {
	file := c.String("palette")
	if file == "" {
		return palette.Arcade, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return palette.Load(f)
}

func readRecord(file string, p color.Palette) (*jres.Image, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".ts", ".py", ".txt":
		b, err := ioutil.ReadFile(file)
		if err != nil {
			return nil, err
		}
		return literal.ToImage(string(b), p)
	case ".jres", ".json":
		b, err := ioutil.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var item jres.Image
		if err := json.Unmarshal(b, &item); err != nil {
			return nil, err
		}
		if err := item.Validate(); err != nil {
			return nil, err
		}
		return &item, nil
	default:
		return sprited.ImportImage(file, p)
	}
}

func serve(c *cli.Context) error {
	logger := newLogger(c)

	p, err := loadPalette(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	if c.Duration("autosave") <= 0 || c.Duration("snapshot-timeout") <= 0 {
		return cli.Exit("intervals must be positive", 1)
	}

	db, err := sprited.NewDB(c.String("db"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer db.Close()

	hub := editor.NewHub(logger)
	ctrl := sprited.New(hub, db,
		sprited.WithLogger(logger),
		sprited.WithPalette(p),
		sprited.WithAutosaveInterval(c.Duration("autosave")),
		sprited.WithSnapshotTimeout(c.Duration("snapshot-timeout")),
	)

	srv := &http.Server{
		Addr:    c.String("listen"),
		Handler: web.NewHandler(ctrl, hub, p, logger),
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ctrl.Run(ctx)
	})
	g.Go(func() error {
		logger.Printf("Listening on %s\n", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "sprited"
	app.Usage = "MakeCode Arcade sprite editing companion"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	formatFlag := &cli.StringFlag{
		Name:  "format",
		Value: literal.TypeScript.String(),
		Usage: "literal format, typescript or python",
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"SPRITED_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to database",
		},
		&cli.StringFlag{
			Name:    "palette",
			EnvVars: []string{"SPRITED_PALETTE"},
			Usage:   "path to YAML palette, defaults to the Arcade palette",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:  "serve",
			Usage: "Serve the editor channel and toolbar API",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "listen",
					EnvVars: []string{"SPRITED_LISTEN"},
					Value:   ":8080",
					Usage:   "http listen address",
				},
				&cli.DurationFlag{
					Name:  "autosave",
					Value: sprited.DefaultAutosaveInterval,
					Usage: "how often to request a snapshot from the editor",
				},
				&cli.DurationFlag{
					Name:  "snapshot-timeout",
					Value: sprited.DefaultSnapshotTimeout,
					Usage: "how long a transform waits for the editor",
				},
			},
			Action: serve,
		},
		{
			Name:  "export",
			Usage: "Print the stored sprite as a source literal",
			Flags: []cli.Flag{formatFlag},
			Action: func(c *cli.Context) error {
				f, err := literal.ParseFormat(c.String("format"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				db, err := sprited.NewDB(c.String("db"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				b, err := sprited.Load(db, newLogger(c)).Bitmap()
				if err != nil {
					return cli.Exit(err, 1)
				}

				fmt.Println(literal.Marshal(b, f))

				return nil
			},
		},
		{
			Name:      "import",
			Usage:     "Replace the stored sprite",
			ArgsUsage: "FILE",
			Description: "FILE may be a literal (.ts, .py, .txt), a record (.jres, .json) or\n" +
				"any PNG, GIF, JPEG, BMP, TIFF or WebP image.",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				p, err := loadPalette(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				item, err := readRecord(c.Args().First(), p)
				if err != nil {
					return cli.Exit(err, 1)
				}

				db, err := sprited.NewDB(c.String("db"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				if err := sprited.Save(db, item); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "transform",
			Usage:       "Apply a transform to the stored sprite",
			ArgsUsage:   "OP",
			Description: "OP is one of " + strings.Join(transform.Names(), ", ") + ".",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				op, err := transform.Parse(c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}

				p, err := loadPalette(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				db, err := sprited.NewDB(c.String("db"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				b, err := sprited.Load(db, newLogger(c)).Bitmap()
				if err != nil {
					return cli.Exit(err, 1)
				}

				item, err := jres.NewImage(op.Apply(b), p)
				if err != nil {
					return cli.Exit(err, 1)
				}

				if err := sprited.Save(db, item); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "convert",
			Usage:     "Convert every image in a directory to a sprite",
			ArgsUsage: "DIRECTORY",
			Flags:     []cli.Flag{formatFlag},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				f, err := literal.ParseFormat(c.String("format"))
				if err != nil {
					return cli.Exit(err, 1)
				}

				p, err := loadPalette(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				if err := sprited.NewConverter(p, f, newLogger(c)).Convert(c.Args().First()); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
