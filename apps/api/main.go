package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	echoapi "github.com/trezcool/kalenda/apps/api/echo"
	"github.com/trezcool/kalenda/core"
	"github.com/trezcool/kalenda/core/calendar"
	logsvc "github.com/trezcool/kalenda/services/logger"
	notifysvc "github.com/trezcool/kalenda/services/notify"
	"github.com/trezcool/kalenda/storage/database"
	sqlxrepos "github.com/trezcool/kalenda/storage/database/sqlx"
	"github.com/trezcool/kalenda/storage/feeds"
	plannerrepos "github.com/trezcool/kalenda/storage/planner"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up repos: the hosted planner REST backend, or the self-hosted DB
	var (
		entryRepo  calendar.EntryRepository
		lessonRepo calendar.LessonRepository
		unitRepo   calendar.UnitRepository
	)
	if conf.Planner.APIURL != "" {
		entryRepo = plannerrepos.NewEntryRepository(conf)
		lessonRepo = plannerrepos.NewLessonRepository(conf)
		unitRepo = plannerrepos.NewUnitRepository(conf)
	} else {
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				logger.Error("closing database", err)
			}
		}()
		repo := sqlxrepos.NewCalendarRepository(db)
		entryRepo, lessonRepo, unitRepo = repo, repo, repo
	}

	// set up services
	var notifier core.Notifier
	if conf.Debug {
		notifier = notifysvc.NewConsoleService(conf)
	} else {
		notifier = notifysvc.NewSendgridService(conf, logger)
	}

	calSvc := calendar.NewService(conf, logger, entryRepo, lessonRepo, unitRepo, feeds.FromURLs(conf, logger)...)
	rescheduler := calendar.NewRescheduler(calSvc, notifier, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	calendar.InitValidators(validate, translator)

	core.InitNotifyTemplates(conf, logger)

	// initial window load; a failed fetch is surfaced via the API indicator
	if err := calSvc.Refresh(context.Background()); err != nil {
		logger.Warn(fmt.Sprintf("initial refresh failed: %v", err), err)
	}

	// =========================================================================
	// Start Periodic Refresh

	if conf.Calendar.RefreshCron != "" {
		c := cron.New()
		_, err := c.AddFunc(conf.Calendar.RefreshCron, func() {
			if err := calSvc.Refresh(context.Background()); err != nil {
				logger.Warn(fmt.Sprintf("periodic refresh failed: %v", err), err)
			}
		})
		if err != nil {
			logger.Fatal(fmt.Sprintf("scheduling periodic refresh: %v", err), err)
		}
		c.Start()
		defer c.Stop()
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddr, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			CalendarSvc: calSvc,
			Rescheduler: rescheduler,
			Validate:    validate,
			Translator:  translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
