package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/haydenhayden/projectzen/app"
	"github.com/haydenhayden/projectzen/config"
	"github.com/haydenhayden/projectzen/consts"
	"github.com/haydenhayden/projectzen/logging"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zencal := &cli.App{
		Name:  consts.AppName,
		Usage: "Serve project milestones from Notion as ICS and calendar JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file"},
			&cli.StringSliceFlag{Name: "env", Value: cli.NewStringSlice(".env"), Usage: "dotenv files loaded before the environment"},
			&cli.BoolFlag{Name: "devmode", Usage: "Debug logging, /logs and /debug endpoints"},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP server",
				Action: serve,
			},
			exportCommand(),
			holidaysCommand(),
		},
	}

	err := zencal.RunContext(ctx, os.Args)
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", consts.AppName, err)
		os.Exit(1)
	}
}

// setup loads the configuration and configures logging. Validation is left to
// the commands needing the Notion credentials.
func setup(c *cli.Context) (*config.Config, context.Context, error) {
	cfg, err := config.Load(c.String("config"), c.StringSlice("env")...)
	if err != nil {
		return nil, nil, err
	}
	consts.SetDevMode(consts.IsDevMode() || cfg.DevMode || c.Bool("devmode"))
	if err := logging.Configure(logging.Options{
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		LogglyToken: cfg.Log.LogglyToken,
	}); err != nil {
		return nil, nil, fmt.Errorf("configuring logging: %w", err)
	}
	logger, ctx := logging.FromWithNameAndFields(c.Context, consts.AppName, zap.String("commit", consts.GitCommit))
	logger.Debug("Configuration loaded",
		zap.String("listen", cfg.Server.Listen),
		zap.String("dataDir", cfg.DataDir),
		zap.String("timezone", cfg.Timezone),
		zap.String("icsExclusion", cfg.ICSExclusion),
		zap.Bool("devmode", consts.IsDevMode()))
	return cfg, ctx, nil
}

func serve(c *cli.Context) error {
	cfg, ctx, err := setup(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the ICS feed of a database to a file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "database", Aliases: []string{"d"}, Usage: "Notion database id, the configured one if empty"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "calendar.ics", Usage: "output file, - for stdout"},
			&cli.IntFlag{Name: "year", Usage: "year whose rest days are removed, the current one if 0"},
		},
		Action: func(c *cli.Context) error {
			cfg, ctx, err := setup(c)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			database := c.String("database")
			if database == "" {
				database = cfg.Notion.DatabaseID
			}
			var out io.Writer = os.Stdout
			if path := c.String("out"); path != "-" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			if err := a.ExportICS(ctx, out, database, c.Int("year")); err != nil {
				return fmt.Errorf("exporting %s: %w", database, err)
			}
			logging.From(ctx).Info("ICS exported", zap.String("database", database), zap.String("out", c.String("out")))
			return nil
		},
	}
}

func holidaysCommand() *cli.Command {
	return &cli.Command{
		Name:  "holidays",
		Usage: "Print the rest days of a year",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "year", Aliases: []string{"y"}, Usage: "year to print, the current one if 0"},
			&cli.BoolFlag{Name: "week", Aliases: []string{"w"}, Usage: "include weekends"},
		},
		Action: func(c *cli.Context) error {
			cfg, ctx, err := setup(c)
			if err != nil {
				return err
			}
			a, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			year := c.Int("year")
			if year == 0 {
				year = a.Today().Year()
			}
			cal, err := a.Feed().Holidays(ctx, year, c.Bool("week"))
			if err != nil {
				return err
			}
			for _, d := range cal.RestDays() {
				fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", d, d.Weekday(), cal.Days[d.String()].Name)
			}
			return nil
		},
	}
}
