package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/snowflake"

	"service-crm/internal/auth"
	"service-crm/internal/config"
	"service-crm/internal/database"
	"service-crm/internal/events"
	"service-crm/internal/handlers"
	"service-crm/internal/logger"
	"service-crm/internal/oidc"
	"service-crm/internal/store"
	"service-crm/internal/summary"
	"service-crm/internal/tokenstore"
)

const startupText = `
  ___ ___ _ ____ _(_)__ ___ ___ ___ _ _ _ __
 (_-</ -_) '_\ V / / _/ -_)___/ _| '_| '  \
 /__/\___|_|  \_/|_\__\___|   \__|_| |_|_|_|
`

type Api struct {
	cfg        *config.Config
	log        *logger.ZapLogger
	db         *database.DBManager
	tokenStore *tokenstore.BuntDBTokenStore
	events     events.Publisher
	node       *snowflake.Node
	server     *http.Server
	handlers.CRMHandlers
}

func NewApi(cfg *config.Config, log *logger.ZapLogger) *Api {
	if log == nil {
		log = logger.NewNop()
	}
	return &Api{cfg: cfg, log: log}
}

// Setup opens storage, connects the optional integrations and wires the
// handlers. Start calls it; tests may call it directly.
func (a *Api) Setup(ctx context.Context) error {
	if err := a.SetupDatabases(ctx); err != nil {
		return err
	}
	a.SetupEvents()
	a.SetupOIDC(ctx)

	node, err := snowflake.NewNode(a.cfg.SnowflakeNode)
	if err != nil {
		return fmt.Errorf("create snowflake node: %w", err)
	}
	a.node = node

	a.CRMHandlers = handlers.CRMHandlers{
		Store:      store.New(a.db.DB),
		Summary:    summary.New(a.db.DB),
		Tokens:     auth.NewTokenManager(a.cfg.JWTSecret, a.cfg.JWTTTL),
		Hasher:     auth.NewBcryptHasher(),
		TokenStore: a.tokenStore,
		Events:     a.events,
		OIDC:       a.CRMHandlers.OIDC,
		Log:        a.log.Named("handlers"),
		Loc:        a.cfg.Location(),
		WebUiUrl:   a.cfg.WebUiUrl,
	}
	return nil
}

func (a *Api) SetupDatabases(ctx context.Context) error {
	a.log.Info("Setting up API databases")
	dm, err := database.Open(ctx, database.Options{
		Driver:   a.cfg.DBDriver,
		Path:     a.cfg.DBPath,
		URL:      a.cfg.DatabaseURL,
		MaxConns: a.cfg.DBMaxConns,
	}, a.log.Named("database"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	a.db = dm

	a.log.Info("Setting up token storage")
	ts, err := dm.InitTokenStore(a.cfg.TokenStorePath())
	if err != nil {
		dm.Close()
		return fmt.Errorf("open token store: %w", err)
	}
	a.tokenStore = ts
	a.log.Info("DB setup complete")
	return nil
}

// SetupEvents connects the AMQP publisher when configured. A broker that
// cannot be reached degrades to logging the events.
func (a *Api) SetupEvents() {
	if a.cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.log.Named("events"))
		if err == nil {
			a.log.Info("Publishing events to exchange %s", a.cfg.AMQPExchange)
			a.events = p
			return
		}
		a.log.Warn("Cannot connect to AMQP broker, events will only be logged: %v", err)
	}
	a.events = events.NewLogPublisher(a.log.Named("events"))
}

// SetupOIDC enables OIDC login when fully configured. Discovery failures
// leave it disabled.
func (a *Api) SetupOIDC(ctx context.Context) {
	if !a.cfg.OIDC.Enabled() {
		return
	}
	a.log.Info("Setting up OIDC")
	p, err := oidc.New(ctx, a.cfg.OIDC)
	if err != nil {
		a.log.Warn("Cannot start OIDC functionality: %v", err)
		return
	}
	a.CRMHandlers.OIDC = p
}

// Start serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *Api) Start() error {
	fmt.Print(startupText)

	if err := a.Setup(context.Background()); err != nil {
		return err
	}
	a.server = &http.Server{
		Addr: ":" + a.cfg.ApiPort,
		Handler: NewRouter(&a.CRMHandlers, RouterOptions{
			CORSOrigins: a.cfg.CORSOrigins,
			Log:         a.log.Zap(),
			Node:        a.node,
			Revocations: a.tokenStore,
		}),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	killSignal := make(chan os.Signal, 1)
	signal.Notify(killSignal, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		a.log.Info("Starting API at endpoint: %s (tls=%t)", a.cfg.ApiPort, a.cfg.TLSEnabled())
		var err error
		if a.cfg.TLSEnabled() {
			err = a.server.ListenAndServeTLS(a.cfg.CertFilePath, a.cfg.KeyFilePath)
		} else {
			err = a.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err, ok := <-serveErr:
		if ok {
			a.Stop()
			return fmt.Errorf("cannot start API: %w", err)
		}
	case <-killSignal:
		a.log.Info("Received shutdown signal. Initiating graceful shutdown...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Error("Server shutdown failed: %v", err)
	}
	a.Stop()
	return nil
}

func (a *Api) Stop() {
	a.log.Info("Graceful shutdown of services")
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.log.Warn("Cannot close event publisher: %v", err)
		}
	}
	if a.tokenStore != nil {
		if err := a.tokenStore.Close(); err != nil {
			a.log.Warn("Cannot close token storage: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Couldn't close database connection: %v", err)
		}
	}
	a.log.Info("API shutdown gracefully")
	_ = a.log.Sync()
}
