package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/lori/core"
	"github.com/trezcool/lori/core/driver"
	"github.com/trezcool/lori/core/expense"
	"github.com/trezcool/lori/core/invoice"
	"github.com/trezcool/lori/core/report"
	"github.com/trezcool/lori/core/trip"
	"github.com/trezcool/lori/core/truck"
	"github.com/trezcool/lori/core/user"
)

type (
	// ServerDeps holds the services and helpers the API needs.
	ServerDeps struct {
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc    user.Service
		TruckSvc   truck.Service
		DriverSvc  driver.Service
		TripSvc    trip.Service
		InvoiceSvc invoice.Service
		ExpenseSvc expense.Service
		ReportSvc  report.Service
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		addr     string
		deps     ServerDeps
		app      *echo.Echo
		errCh    chan error
		shutCh   chan os.Signal
		jwtCheck echo.MiddlewareFunc
	}
)

var _ Server = (*server)(nil)

func NewServer(addr string, deps ServerDeps) Server {
	s := &server{
		addr:   addr,
		deps:   deps,
		app:    echo.New(),
		errCh:  make(chan error, 1),
		shutCh: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutCh, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !core.Conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	s.jwtCheck = middleware.JWTWithConfig(newJWTConfig())

	registerUserAPI(v1, s.jwtCheck, s.deps.UserSvc, s.deps.Validate)
	registerTruckAPI(v1, s.jwtCheck, s.deps)
	registerDriverAPI(v1, s.jwtCheck, s.deps)
	registerTripAPI(v1, s.jwtCheck, s.deps)
	registerInvoiceAPI(v1, s.jwtCheck, s.deps)
	registerExpenseAPI(v1, s.jwtCheck, s.deps)
	registerReportAPI(v1, s.jwtCheck, s.deps)

	registerAgentAPI(s.app, s.deps)
}

func (s *server) Start() {
	if err := s.app.Start(s.addr); err != nil && err != http.ErrServerClosed {
		s.errCh <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errCh
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutCh
}

// signalShutdown lets the error handler request a graceful stop on integrity issues.
func (s *server) signalShutdown() {
	s.shutCh <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Lori API!")
}
