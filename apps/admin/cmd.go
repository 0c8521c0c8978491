package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kalenda/core"
	"github.com/trezcool/kalenda/core/calendar"
	"github.com/trezcool/kalenda/storage/database"
	sqlxrepos "github.com/trezcool/kalenda/storage/database/sqlx"
	"github.com/trezcool/kalenda/storage/feeds"
)

var (
	openDBFunc = openDB // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	logger core.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate [COMMAND [ARGS]] - run a migration command (up, down, status, version, ...); defaults to up")
	fmt.Println("  seed                     - load a sample term into the database")
	fmt.Println("  importfeed -url URL      - import an ICS feed's entries for the coming year")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	importFeedCmd := flag.NewFlagSet("importfeed", flag.ExitOnError)
	importFeedURL := importFeedCmd.String("url", "", "The ICS feed URL to import.")

	switch args[1] {
	case "migrate":
		db, err := openDBFunc(cli.conf)
		if err != nil {
			return err
		}
		return cli.migrate(db, args[2:])
	case "seed":
		db, err := cli.setUpDB()
		if err != nil {
			return err
		}
		return cli.seed(sqlxrepos.NewCalendarRepository(db))
	case "importfeed":
		if err := importFeedCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFeedURL == "" {
			importFeedCmd.Usage()
			return errHelp
		}
		db, err := cli.setUpDB()
		if err != nil {
			return err
		}
		return cli.importFeed(sqlxrepos.NewCalendarRepository(db), *importFeedURL)
	default:
		cli.printUsage()
		return errHelp
	}
}

func openDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	return database.Open(conf)
}

func (cli *commandLine) setUpDB() (*sqlx.DB, error) {
	db, err := openDBFunc(cli.conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// seed loads a small sample term so a fresh install has something to show.
func (cli *commandLine) seed(repo *sqlxrepos.CalendarRepository) error {
	ctx := context.Background()
	now := time.Now().UTC()
	day := func(d int) time.Time {
		return time.Date(now.Year(), now.Month(), d, 0, 0, 0, 0, time.UTC)
	}

	entries := []calendar.Entry{
		{ID: "seed-pd-1", Title: "PD Day", Start: day(5), End: day(5), Type: calendar.EntryPDDay, Source: calendar.SourceSystem},
		{ID: "seed-assessment-1", Title: "Math Assessment", Start: day(18), End: day(18), Type: calendar.EntryAssessment, Source: calendar.SourceSystem},
		{ID: "seed-event-1", Title: "Science Fair", Start: day(21), End: day(22), Type: calendar.EntrySchoolEvent, Source: calendar.SourceManual},
	}
	for _, e := range entries {
		if err := repo.CreateEntry(ctx, e); err != nil {
			return err
		}
	}

	lessons := []calendar.Lesson{
		{ID: "seed-lesson-1", Title: "Fractions", Date: null.TimeFrom(day(6)), Subject: null.StringFrom("Math"), UnitPlanID: null.StringFrom("seed-unit-1")},
		{ID: "seed-lesson-2", Title: "Decimals", Date: null.TimeFrom(day(8)), Subject: null.StringFrom("Math"), UnitPlanID: null.StringFrom("seed-unit-1")},
		{ID: "seed-lesson-3", Title: "Photosynthesis", Date: null.TimeFrom(day(7)), Subject: null.StringFrom("Science")},
	}
	for _, l := range lessons {
		if err := repo.CreateLesson(ctx, l); err != nil {
			return err
		}
	}

	unit := calendar.Unit{
		ID:        "seed-unit-1",
		Title:     "Number Sense",
		StartDate: null.TimeFrom(day(6)),
		EndDate:   null.TimeFrom(day(20)),
	}
	if err := repo.CreateUnit(ctx, unit); err != nil {
		return err
	}

	fmt.Println("sample term loaded")
	return nil
}

// importFeed fetches an ICS feed and stores its entries for the coming year.
func (cli *commandLine) importFeed(repo *sqlxrepos.CalendarRepository, url string) error {
	ctx := context.Background()
	src := feeds.NewSource("import", url, cli.conf, cli.logger)

	start := time.Now().UTC()
	entries, err := src.QueryEntries(ctx, start, start.AddDate(1, 0, 0))
	if err != nil {
		return err
	}

	for _, e := range entries {
		if err := repo.CreateEntry(ctx, e); err != nil {
			return err
		}
	}

	fmt.Printf("imported %d entries\n", len(entries))
	return nil
}
