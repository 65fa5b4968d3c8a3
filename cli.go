package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"collabboard/internal/config"
	"collabboard/internal/logging"
	"collabboard/internal/mapper"
	"collabboard/internal/mcpserver"
	"collabboard/internal/tools"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(stdin io.Reader, stdout io.Writer) *cli.App {
	app := &cli.App{
		Name:           "collabboard",
		Usage:          "AI command relay for the collaborative whiteboard",
		Version:        Version,
		Writer:         stdout,
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			serveCmd(),
			catalogCmd(),
			mcpCmd(stdin),
		},
	}
	// Errors are returned to main, which prints them once.
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd runs the HTTP and WebSocket server.
func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server (default)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides PORT)"},
			&cli.StringFlag{Name: "log-level", Usage: "Log level (overrides LOG_LEVEL)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if p := c.String("port"); p != "" {
				cfg.Port = p
			}
			if l := c.String("log-level"); l != "" {
				cfg.Logging.Level = l
			}
			return runServer(c.Context, cfg)
		},
	}
}

// catalogCmd prints the tool catalog sent to the model.
func catalogCmd() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Print the tool catalog as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "op", Usage: "Print a single operation"},
		},
		Action: func(c *cli.Context) error {
			catalog, err := tools.NewCatalog()
			if err != nil {
				return err
			}

			var v any = catalog.Definitions()
			if name := c.String("op"); name != "" {
				op, ok := tools.ParseOperation(name)
				if !ok {
					return fmt.Errorf("unknown operation %q", name)
				}
				v = catalog.Definition(op)
			}

			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		},
	}
}

// mcpCmd serves the catalog as MCP tools on stdio.
func mcpCmd(stdin io.Reader) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the board tools over MCP on stdin/stdout",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadUnchecked()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			// stdout carries the protocol; logs go to stderr.
			logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return err
			}
			defer logger.Sync()

			catalog, err := tools.NewCatalog()
			if err != nil {
				return err
			}
			bulk := mapper.NewGenerator(cfg.Limits.MaxBulkCount, logger)
			s := mcpserver.NewServer(catalog, bulk, Version, logger)
			return mcpserver.Run(c.Context, s, stdin, c.App.Writer)
		},
	}
}
