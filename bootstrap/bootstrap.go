// Package bootstrap wires all dependencies and starts the application.
// Configuration comes from a YAML file with environment overrides, or
// from the environment alone when no file is given.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/lionscafe/api/adapters/auth"
	"github.com/lionscafe/api/adapters/clock"
	"github.com/lionscafe/api/adapters/hasher"
	apihttp "github.com/lionscafe/api/adapters/http"
	"github.com/lionscafe/api/adapters/idgen"
	"github.com/lionscafe/api/adapters/memory"
	"github.com/lionscafe/api/adapters/metrics"
	"github.com/lionscafe/api/adapters/sqlite"
	"github.com/lionscafe/api/app"
	"github.com/lionscafe/api/config"
	"github.com/lionscafe/api/domain/ratelimit"
)

// App is the running application.
type App struct {
	Logger     zerolog.Logger
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector
	Holder     *config.Holder // nil when config came from env alone

	cfgMu sync.RWMutex
	cfg   *config.Config

	router    http.Handler
	rateStore *memory.RateLimitStore
}

// Options controls application startup.
type Options struct {
	ConfigPath   string // empty: environment variables only
	DisableWatch bool   // skip file and signal watchers
}

// New loads configuration, opens the database, and wires the server.
func New(opts Options) (*App, error) {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	logger := setupLogger(cfg.Logging)
	logger.Info().Str("env", cfg.Env).Msg("initializing cafeapi")

	a := &App{Logger: logger, cfg: cfg}

	if opts.ConfigPath != "" && !opts.DisableWatch {
		holder, err := config.NewHolder(opts.ConfigPath, logger)
		if err != nil {
			return nil, err
		}
		holder.OnChange(a.applyConfig)
		if err := holder.WatchFile(); err != nil {
			logger.Warn().Err(err).Msg("config file watch unavailable")
		}
		holder.WatchSignals()
		a.Holder = holder
	}

	if err := a.initDatabase(cfg); err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	a.initServices(cfg)
	a.initHTTPServer(cfg)
	return a, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadFromEnv()
	}
	return config.Load(path)
}

// applyConfig takes effect for the reloadable fields on the next
// request; bind address, database, and JWT settings need a restart.
func (a *App) applyConfig(cfg *config.Config) {
	a.cfgMu.Lock()
	a.cfg = cfg
	a.cfgMu.Unlock()

	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}
	if a.Metrics != nil {
		a.Metrics.ConfigReloads.Inc()
		a.Metrics.ConfigLastReload.SetToCurrentTime()
	}
}

func (a *App) current() *config.Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.cfg
}

func (a *App) defaultLimit() ratelimit.Config {
	rl := a.current().RateLimit
	return ratelimit.Config{Points: rl.Max, Window: rl.Window, BlockFor: rl.BlockFor}
}

func (a *App) strictLimit() ratelimit.Config {
	rl := a.current().RateLimit
	return ratelimit.Config{Points: rl.StrictMax, Window: rl.StrictWindow, BlockFor: rl.StrictBlockFor}
}

func (a *App) initDatabase(cfg *config.Config) error {
	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	a.DB = db
	a.Logger.Info().Str("dsn", cfg.Database.DSN).Msg("database initialized")
	return nil
}

func (a *App) initServices(cfg *config.Config) {
	clk := clock.Real{}
	ids := idgen.UUID{}
	bcrypt := hasher.NewBcrypt(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)

	users := sqlite.NewUserStore(a.DB)
	actionTokens := sqlite.NewActionTokenStore(a.DB)
	menuStore := sqlite.NewMenuStore(a.DB)
	orders := sqlite.NewOrderStore(a.DB)
	reservations := sqlite.NewReservationStore(a.DB)
	tables := sqlite.NewTableStore(a.DB)

	a.Metrics = metrics.New()
	a.rateStore = memory.NewRateLimitStore(memory.RateLimitStoreConfig{})

	ew := apihttp.NewErrorWriter(a.Logger, cfg.IsProduction())

	var limiter, strict *apihttp.RateLimiter
	if !cfg.RateLimit.Disabled {
		limiter = apihttp.NewRateLimiter(apihttp.RateLimiterOptions{
			Name:    "default",
			Store:   a.rateStore,
			Config:  a.defaultLimit,
			Clock:   clk,
			Errors:  ew,
			Metrics: a.Metrics,
			Logger:  a.Logger,
			Exempt:  []string{"/health", cfg.Metrics.Path},
		})
		strict = apihttp.NewRateLimiter(apihttp.RateLimiterOptions{
			Name:    "strict",
			Store:   a.rateStore,
			Config:  a.strictLimit,
			Clock:   clk,
			Errors:  ew,
			Metrics: a.Metrics,
			Logger:  a.Logger,
			Message: apihttp.StrictRetryMessage,
		})
	}

	metricsPath := ""
	if !cfg.Metrics.Disabled {
		metricsPath = cfg.Metrics.Path
	}

	server := apihttp.NewServer(apihttp.Options{
		Auth:          app.NewAuthService(users, actionTokens, bcrypt, tokens, clk, ids, a.Logger),
		Menu:          app.NewMenuService(menuStore, clk, ids, a.Logger),
		Orders:        app.NewOrderService(orders, menuStore, tables, clk, ids, a.Logger),
		Reservations:  app.NewReservationService(reservations, tables, clk, ids, a.Logger),
		Users:         app.NewUserService(users, bcrypt, clk, a.Logger),
		Tokens:        tokens,
		Errors:        ew,
		Metrics:       a.Metrics,
		Logger:        a.Logger,
		Limiter:       limiter,
		StrictLimiter: strict,
		MetricsPath:   metricsPath,
		FrontendURL:   cfg.Server.FrontendURL,
	})
	a.router = server.Router()
}

func (a *App) initHTTPServer(cfg *config.Config) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	a.HTTPServer = &http.Server{
		Addr:         addr,
		Handler:      a.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	a.Logger.Info().Str("addr", addr).Msg("http server configured")
}

// Run starts the server and blocks until interrupted.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.HTTPServer.Addr).Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.Holder != nil {
		a.Holder.Stop()
	}
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}
	if a.rateStore != nil {
		a.rateStore.Close()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
			return err
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
