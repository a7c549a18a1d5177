package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/sakif/psst/internal/server"
)

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "serve the web application until interrupted",
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	logger, err := newLogger(c.String("log-level"))
	if err != nil {
		return err
	}

	dbPath := c.String("db")
	if err := ensureDir(dbPath); err != nil {
		return err
	}

	templateDir, err := filepath.Abs(c.String("templates"))
	if err != nil {
		return fmt.Errorf("resolving template dir: %w", err)
	}
	staticDir, err := filepath.Abs(c.String("static"))
	if err != nil {
		return fmt.Errorf("resolving static dir: %w", err)
	}

	srv, err := server.New(server.Config{
		Port:        c.Int("port"),
		TemplateDir: templateDir,
		StaticDir:   staticDir,
		DBPath:      dbPath,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	// Start blocks until SIGINT/SIGTERM and closes the database itself.
	return srv.Start(c.Context)
}

// ensureDir creates the directory holding a database file, like mkdir -p.
func ensureDir(dbPath string) error {
	if dbPath == ":memory:" {
		return nil
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating database directory %s: %w", dir, err)
	}
	return nil
}
