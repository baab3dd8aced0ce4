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

	echoapi "github.com/trezcool/lori/apps/api/echo"
	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/driver"
	"github.com/trezcool/lori/core/expense"
	"github.com/trezcool/lori/core/invoice"
	"github.com/trezcool/lori/core/notification"
	"github.com/trezcool/lori/core/report"
	"github.com/trezcool/lori/core/trip"
	"github.com/trezcool/lori/core/truck"
	"github.com/trezcool/lori/core/user"
	docstoresvc "github.com/trezcool/lori/services/docstore"
	emailsvc "github.com/trezcool/lori/services/email"
	logsvc "github.com/trezcool/lori/services/logger"
	messengersvc "github.com/trezcool/lori/services/messenger"
	schedulersvc "github.com/trezcool/lori/services/scheduler"
	"github.com/trezcool/lori/storage/database"
	sqlxrepos "github.com/trezcool/lori/storage/database/sqlx"
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

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	var messenger core.Messenger
	if conf.Telegram.Enabled {
		if messenger, err = messengersvc.NewTelegramService(); err != nil {
			logger.Fatal(fmt.Sprintf("setting up telegram: %v", err), err)
		}
	} else {
		messenger = messengersvc.NewConsoleService()
	}

	docStore, err := docstoresvc.NewFSStore(conf.Docstore.Root)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up document store: %v", err), err)
	}

	tripRepo := sqlxrepos.NewTripRepository(db)

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	truckSvc := truck.NewService(sqlxrepos.NewTruckRepository(db), docStore)
	drvSvc := driver.NewService(sqlxrepos.NewDriverRepository(db))
	notifSvc := notification.NewService(
		sqlxrepos.NewNotificationRepository(db), messenger, tripRepo, drvSvc, logger)
	tripSvc := trip.NewService(tripRepo, truckSvc, drvSvc, notifSvc, logger)
	invSvc := invoice.NewService(sqlxrepos.NewInvoiceRepository(db), mailSvc)
	expSvc := expense.NewService(sqlxrepos.NewExpenseRepository(db))
	reportSvc := report.NewService(sqlxrepos.NewReportRepository(db))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	truck.InitValidators(validate, translator)
	trip.InitValidators(validate, translator)
	invoice.InitValidators(validate, translator)
	expense.InitValidators(validate, translator)

	user.LoadCommonPasswords(logger)

	// =========================================================================
	// Start Scheduled Jobs

	scheduler := schedulersvc.NewScheduler(notifSvc, logger)
	if err = scheduler.Start(); err != nil {
		logger.Fatal(fmt.Sprintf("starting scheduler: %v", err), err)
	}
	defer scheduler.Stop()

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
		conf.Server.Addr,
		echoapi.ServerDeps{
			Logger:     logger,
			Validate:   validate,
			Translator: translator,
			UserSvc:    usrSvc,
			TruckSvc:   truckSvc,
			DriverSvc:  drvSvc,
			TripSvc:    tripSvc,
			InvoiceSvc: invSvc,
			ExpenseSvc: expSvc,
			ReportSvc:  reportSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
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

	if err = database.Migrate(db.DB); err != nil {
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
