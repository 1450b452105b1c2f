package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	app := &cli.App{
		Name:        "migrations",
		Usage:       "manage the circulation database schema",
		Description: fmt.Sprintf("Runs against the %s database from the circulation config.", cfg.DatabaseDriver),
		Commands:    commands(db),
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func commands(db *bun.DB) []*cli.Command {
	migrator := migrate.NewMigrator(db, migrations.Migrations)

	return []*cli.Command{
		{
			Name:  "init",
			Usage: "create migration tables",
			Action: func(c *cli.Context) error {
				return migrator.Init(c.Context)
			},
		},
		{
			Name:  "migrate",
			Usage: "apply all unapplied migrations",
			Action: func(c *cli.Context) error {
				group, err := migrations.BringUpToDate(c.Context, db)
				if err != nil {
					return err
				}
				if group.ID == 0 {
					fmt.Println("There are no new migrations to run")
					return nil
				}
				fmt.Printf("Migrated to %s\n", group)
				return nil
			},
		},
		{
			Name:  "rollback",
			Usage: "roll back migration groups",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "all", Usage: "roll back every applied group"},
			},
			Action: func(c *cli.Context) error {
				if c.Bool("all") {
					n, err := migrations.RollbackAll(c.Context, db)
					if err != nil {
						return err
					}
					fmt.Printf("Rolled back %d groups\n", n)
					return nil
				}

				group, err := migrator.Rollback(c.Context)
				if err != nil {
					return err
				}
				if group.ID == 0 {
					fmt.Println("There are no groups to roll back")
					return nil
				}
				fmt.Printf("Rolled back %s\n", group)
				return nil
			},
		},
		{
			Name:      "create",
			Usage:     "create a Go migration",
			ArgsUsage: "<words of the migration name>",
			Action: func(c *cli.Context) error {
				name := strings.Join(c.Args().Slice(), "_")
				if name == "" {
					return cli.Exit("a migration name is required", 1)
				}
				mf, err := migrator.CreateGoMigration(c.Context, name, migrate.WithGoTemplate(migrationTemplate))
				if err != nil {
					return err
				}
				fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
				return nil
			},
		},
		{
			Name:  "status",
			Usage: "print migrations status",
			Action: func(c *cli.Context) error {
				ms, err := migrator.MigrationsWithStatus(c.Context)
				if err != nil {
					return err
				}
				fmt.Printf("Migrations: %s\n", ms)
				fmt.Printf("Unapplied migrations: %s\n", ms.Unapplied())
				fmt.Printf("Last migration group: %s\n", ms.LastGroup())
				return nil
			},
		},
	}
}

// migrationTemplate branches on the dialect because the schema runs on both
// SQLite and PostgreSQL.
const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

func init() {
	up := func(ctx context.Context, db *bun.DB) error {
		stmt := ""
		if db.Dialect().Name() == dialect.PG {
			stmt = ""
		}
		_, err := db.ExecContext(ctx, stmt)
		return errors.WithStack(err)
	}

	down := func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, "")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
