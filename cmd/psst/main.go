// Command psst runs the Psst! microblog and manages its database.
//
//	psst                 serve HTTP (same as "psst serve")
//	psst db init         drop and recreate every table
//	psst db sample       load the sample users and fixed posts
//	psst db sample --random
//
// Every flag can also be set through its PSST_* environment variable, and
// a .env file in the working directory is loaded first when present.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "error loading .env:", err)
		os.Exit(1)
	}

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "psst",
		Usage: "a tiny microblog",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP listen port",
				EnvVars: []string{"PSST_PORT"},
			},
			&cli.StringFlag{
				Name:    "db",
				Value:   "data/psst.db",
				Usage:   "SQLite database file",
				EnvVars: []string{"PSST_DB_PATH"},
			},
			&cli.StringFlag{
				Name:    "templates",
				Value:   "web/templates",
				Usage:   "directory holding the HTML templates",
				EnvVars: []string{"PSST_TEMPLATE_DIR"},
			},
			&cli.StringFlag{
				Name:    "static",
				Value:   "web/static",
				Usage:   "directory served under /static/",
				EnvVars: []string{"PSST_STATIC_DIR"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"PSST_LOG_LEVEL"},
			},
		},
		Action: runServe,
		Commands: []*cli.Command{
			newServeCommand(),
			newDBCommand(),
		},
	}
}

// newLogger builds the process logger. Text output to stderr, filtered at
// the named level.
func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}
