package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/sakif/psst/internal/repository/sqlite"
)

func newDBCommand() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "manage the database",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "drop every table and create an empty schema",
				Action: func(c *cli.Context) error {
					return withDB(c, func(db *sqlite.DB) error {
						if err := db.Reset(c.Context); err != nil {
							return err
						}
						fmt.Fprintln(c.App.Writer, "database initialised:", c.String("db"))
						return nil
					})
				},
			},
			{
				Name:  "sample",
				Usage: "replace all data with the sample users and posts",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "random",
						Usage: "generate 100 random posts instead of the fixed set",
					},
				},
				Action: func(c *cli.Context) error {
					return withDB(c, func(db *sqlite.DB) error {
						if err := db.SampleData(c.Context, c.Bool("random")); err != nil {
							return err
						}
						fmt.Fprintln(c.App.Writer, "sample data loaded:", c.String("db"))
						return nil
					})
				},
			},
		},
	}
}

// withDB opens the database named by --db, runs fn and closes it again.
func withDB(c *cli.Context, fn func(db *sqlite.DB) error) error {
	path := c.String("db")
	if err := ensureDir(path); err != nil {
		return err
	}

	db, err := sqlite.New(path)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db)
}
