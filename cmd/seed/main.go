package main

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/shishobooks/circulation/pkg/database"
	"github.com/shishobooks/circulation/pkg/migrations"
	"github.com/shishobooks/circulation/pkg/seed"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	var opts struct {
		Fixture string `short:"f" long:"fixture" description:"A JSON fixture to load instead of the built-in sample"`
		Migrate bool   `short:"m" long:"migrate" description:"Bring the schema up to date first"`
		Verbose bool   `short:"v" long:"verbose" description:"Log every SQL statement"`
	}

	if _, err := flags.Parse(&opts); err != nil {
		log.Err(err).Fatal("flags parse error")
	}

	var r io.Reader = bytes.NewReader(seed.Sample)
	if opts.Fixture != "" {
		f, err := os.Open(opts.Fixture)
		if err != nil {
			log.Err(err).Fatal("open fixture error")
		}
		defer f.Close()
		r = f
	}

	fixture, err := seed.Decode(r)
	if err != nil {
		log.Err(err).Fatal("fixture error")
	}

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	if opts.Verbose {
		ctx = database.WithLogging(ctx)
	}

	if opts.Migrate {
		if _, err := migrations.BringUpToDate(ctx, db); err != nil {
			log.Err(err).Fatal("migrations error")
		}
	}

	res, err := seed.Load(ctx, db, fixture)
	if err != nil {
		log.Err(err).Fatal("seed error")
	}
	log.Info("seeded", logger.Data{
		"authors":    res.Authors,
		"books":      res.Books,
		"readers":    res.Readers,
		"tickets":    res.Tickets,
		"librarians": res.Librarians,
		"loans":      res.Loans,
	})
}
