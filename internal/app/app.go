package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/taskbingo-server/internal/catalog"
	"github.com/vancomm/taskbingo-server/internal/config"
	"github.com/vancomm/taskbingo-server/internal/database"
	"github.com/vancomm/taskbingo-server/internal/docstore"
	"github.com/vancomm/taskbingo-server/internal/journal"
	"github.com/vancomm/taskbingo-server/internal/metrics"
	"github.com/vancomm/taskbingo-server/internal/middleware"
	"github.com/vancomm/taskbingo-server/internal/session"
)

const sweepInterval = time.Minute

type App struct {
	logger     *slog.Logger
	router     *http.ServeMux
	store      docstore.Store
	catalog    *catalog.Catalog
	controller *session.Controller
	cookies    *config.Cookies
	ws         *config.WebSocket
	metrics    *metrics.Metrics
	session    *config.Session
	closers    []func()
}

func New(logger *slog.Logger) *App {
	return &App{
		logger:  logger,
		router:  http.NewServeMux(),
		catalog: catalog.New(),
		metrics: metrics.New(),
		ws:      config.NewWebSocket(),
	}
}

func (a *App) openStore(ctx context.Context) error {
	backend, err := config.NewStoreBackend()
	if err != nil {
		return err
	}

	switch backend {
	case config.PostgresBackend:
		db, _, err := database.ConnectAndMigrate(ctx)
		if err != nil {
			return fmt.Errorf("unable to connect to db: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		a.store = docstore.NewPostgres(a.logger, db)
	case config.RedisBackend:
		opts, err := config.NewRedisOptions()
		if err != nil {
			return err
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return fmt.Errorf("unable to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { client.Close() })
		a.store = docstore.NewRedis(a.logger, client)
	case config.MemoryBackend:
		a.logger.Warn("boards are kept in memory and lost on restart")
		a.store = docstore.NewMemory()
	}

	a.logger.Info("board store ready", slog.String("backend", string(backend)))
	return nil
}

func (a *App) setup(ctx context.Context) error {
	sessionCfg, err := config.NewSession()
	if err != nil {
		return err
	}
	a.session = sessionCfg

	jwt, err := config.NewJWT(sessionCfg.MaxAge)
	if err != nil {
		return err
	}
	cookies, err := config.NewCookies(jwt)
	if err != nil {
		return err
	}
	a.cookies = cookies

	j, err := journal.New(config.JournalPath())
	if err != nil {
		return err
	}

	if path := config.TasksFile(); path != "" {
		n, err := a.catalog.LoadFile(path)
		if err != nil {
			return err
		}
		a.logger.Info("tasks loaded", slog.Int("count", n), slog.String("path", path))
	}

	if err := a.openStore(ctx); err != nil {
		return err
	}

	a.controller = session.NewController(a.logger, a.store, session.Options{
		MaxAge:           sessionCfg.MaxAge,
		StrictVersioning: sessionCfg.StrictVersioning,
		Journal:          j,
		Metrics:          a.metrics,
		Rand:             createRand(),
	})
	return nil
}

func (a *App) Handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Auth(a.logger, a.cookies),
		middleware.Cors(),
		middleware.Logging(a.logger),
	)
}

func (a *App) Start(ctx context.Context) error {
	defer func() {
		for _, closeFn := range a.closers {
			closeFn()
		}
	}()

	if err := a.setup(ctx); err != nil {
		return err
	}
	a.loadRoutes()

	addr := config.Port()
	server := &http.Server{
		Addr:    addr,
		Handler: a.Handler(),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	a.logger.Info("server listening", slog.String("addr", addr))

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return a.controller.Run(gCtx, sweepInterval)
	})

	return g.Wait()
}
