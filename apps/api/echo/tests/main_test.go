package tests

import (
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

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
	inmemdb "github.com/trezcool/lori/storage/database/inmem"
)

const agentAPIKey = "test-agent-key"

var (
	db  *inmemdb.DB
	app echoapi.Server

	usrRepo   user.Repository
	truckRepo truck.Repository
	drvRepo   driver.Repository
	tripRepo  trip.Repository
	invRepo   invoice.Repository
	expRepo   expense.Repository
	notifRepo notification.Repository

	notifSvc  notification.Service
	messenger = messengersvc.NewConsoleServiceMock()
)

func TestMain(m *testing.M) {
	os.Setenv("ENV", "TEST")
	conf := core.NewConfig()
	conf.TestMode = true
	conf.Debug = false // keep error responses in their production shape
	conf.Agent.APIKey = agentAPIKey

	docRoot, err := os.MkdirTemp("", "lori-docs")
	if err != nil {
		fmt.Printf("os.MkdirTemp(): %v", err)
		os.Exit(1)
	}

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "TEST : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(false)

	// set up DB & repos
	db = inmemdb.NewDB()
	usrRepo = inmemdb.NewUserRepository(db)
	truckRepo = inmemdb.NewTruckRepository(db)
	drvRepo = inmemdb.NewDriverRepository(db)
	tripRepo = inmemdb.NewTripRepository(db)
	invRepo = inmemdb.NewInvoiceRepository(db)
	expRepo = inmemdb.NewExpenseRepository(db)
	notifRepo = inmemdb.NewNotificationRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock()
	docStore, err := docstoresvc.NewFSStore(docRoot)
	if err != nil {
		fmt.Printf("docstoresvc.NewFSStore(): %v", err)
		os.Exit(1)
	}

	usrSvc := user.NewServiceMock(usrRepo, mailSvc)
	truckSvc := truck.NewService(truckRepo, docStore)
	drvSvc := driver.NewService(drvRepo)
	notifSvc = notification.NewService(notifRepo, messenger, tripRepo, drvSvc, logger)
	tripSvc := trip.NewService(tripRepo, truckSvc, drvSvc, notifSvc, logger)
	invSvc := invoice.NewService(invRepo, mailSvc)
	expSvc := expense.NewService(expRepo)
	reportSvc := report.NewService(inmemdb.NewReportRepository(db))

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	truck.InitValidators(validate, translator)
	trip.InitValidators(validate, translator)
	invoice.InitValidators(validate, translator)
	expense.InitValidators(validate, translator)
	user.LoadCommonPasswords(logger)

	// set up server
	app = echoapi.NewServer(
		"", /* addr */
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

	// run tests
	code := m.Run()

	// clean up
	_ = os.RemoveAll(docRoot)

	os.Exit(code)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
