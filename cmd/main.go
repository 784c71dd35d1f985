package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/sync/errgroup"

	"go-catalog-live/internal/application/service"
	"go-catalog-live/internal/domain/catalog"
	"go-catalog-live/internal/infrastructure/config"
	"go-catalog-live/internal/infrastructure/hub"
	"go-catalog-live/internal/infrastructure/logger"
	"go-catalog-live/internal/infrastructure/mongo"
	"go-catalog-live/internal/infrastructure/persistence"
	"go-catalog-live/internal/infrastructure/server"
	"go-catalog-live/internal/interfaces/websocket"
)

func main() {
	ctx := context.Background()
	sctx := WithSignal(ctx)

	cfg, err := config.Load()
	if err != nil {
		logger.NewLogrusLogger(logger.NewDefaultConfig()).Fatalf("failed to load config: %v", err)
	}
	log := logger.NewLogrusLogger(&cfg.Logger)

	store, err := openStore(sctx, cfg)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.Store, err)
	}
	log.Infof("catalog store: %s", cfg.Store)

	hubInstance := hub.New(cfg.Hub, log)
	movieService := service.NewMovieService(store.movies, store.comments, log)
	commentService := service.NewCommentService(store.comments, hubInstance, log)
	wsService := websocket.NewService(movieService, log, websocket.Options{
		LookupTimeout: cfg.WebSocket.LookupTimeout,
		AllowedOrigin: cfg.WebSocket.AllowedOrigin,
	})

	router := InitRouter(routerDeps{
		hub:      hubInstance,
		ws:       wsService,
		movies:   movieService,
		comments: commentService,
		store:    cfg.Store,
		check:    store.check,
	}, log)
	httpSrv := server.NewHTTPServer(router, server.Options{
		Addr:        cfg.HTTP.Addr,
		ReadTimeout: cfg.HTTP.ReadTimeout,
		IdleTimeout: cfg.HTTP.IdleTimeout,
	})

	app := newApplication(log, httpSrv, hubInstance, store, cfg.HTTP.ShutdownTimeout)
	log.Infof("listening on %s", cfg.HTTP.Addr)
	if err := app.Run(sctx); err != nil {
		log.Errorf("failed to run application: %v", err)
	}
}

type catalogStore struct {
	movies   catalog.MovieRepository
	comments catalog.CommentRepository
	check    StoreCheck
	client   *mongodriver.Client
}

func openStore(ctx context.Context, cfg *config.Config) (*catalogStore, error) {
	if cfg.Store == config.StoreMemory {
		return &catalogStore{
			movies:   persistence.NewMemoryMovieRepository(),
			comments: persistence.NewMemoryCommentRepository(),
		}, nil
	}

	client, db, err := mongo.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	return &catalogStore{
		movies:   persistence.NewMovieRepository(db),
		comments: persistence.NewCommentRepository(db),
		check:    mongo.Healthcheck(client),
		client:   client,
	}, nil
}

func (s *catalogStore) close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

type Application struct {
	logger          logger.Logger
	httpSrv         server.Server
	hub             *hub.Hub
	store           *catalogStore
	shutdownTimeout time.Duration
}

func newApplication(
	logger logger.Logger,
	httpSrv *server.HTTPServer,
	hubInstance *hub.Hub,
	store *catalogStore,
	shutdownTimeout time.Duration,
) *Application {
	return &Application{
		logger:          logger.WithField("app", "catalog"),
		httpSrv:         httpSrv,
		hub:             hubInstance,
		store:           store,
		shutdownTimeout: shutdownTimeout,
	}
}

func (app *Application) Run(ctx context.Context) error {
	eg, gctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return app.httpSrv.Start(ctx)
	})

	eg.Go(func() error {
		<-gctx.Done()

		gracefulshutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			app.shutdownTimeout,
		)
		defer cancel()

		// SSE handlers block until their stream closes, so the hub goes
		// first or Shutdown would wait out the whole timeout.
		if err := app.hub.Stop(gracefulshutdownCtx); err != nil {
			app.logger.Errorf("failed to stop hub: %v", err)
		}

		err := app.httpSrv.Stop(gracefulshutdownCtx)

		if cerr := app.store.close(gracefulshutdownCtx); cerr != nil {
			app.logger.Errorf("failed to disconnect store: %v", cerr)
		}
		return err
	})

	return eg.Wait()
}

func WithSignal(pctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(pctx)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

		<-sigc

		cancel()
	}()

	return ctx
}
