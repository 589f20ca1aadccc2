package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Oohan21/utopia-drafts/internal/config"
	"github.com/Oohan21/utopia-drafts/internal/infra/rabbitmq"
	s3infra "github.com/Oohan21/utopia-drafts/internal/infra/s3"
	"github.com/Oohan21/utopia-drafts/internal/jobs/autosave"
	"github.com/Oohan21/utopia-drafts/internal/repo/backendhttp"
	"github.com/Oohan21/utopia-drafts/internal/repo/nominatim"
	pgrepo "github.com/Oohan21/utopia-drafts/internal/repo/postgres"
	redrepo "github.com/Oohan21/utopia-drafts/internal/repo/redis"
	authsvc "github.com/Oohan21/utopia-drafts/internal/services/auth"
	"github.com/Oohan21/utopia-drafts/internal/services/drafts"
	"github.com/Oohan21/utopia-drafts/internal/services/geo"
	listingsvc "github.com/Oohan21/utopia-drafts/internal/services/listing"
	mediasvc "github.com/Oohan21/utopia-drafts/internal/services/media"
	refsvc "github.com/Oohan21/utopia-drafts/internal/services/reference"
)

const (
	// Memory preview URIs must match the preview route.
	previewRoutePrefix = "/v1/previews"
	referenceCacheTTL  = 10 * time.Minute
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	publisher  *rabbitmq.Publisher
	registry   *listingsvc.Registry
	autosave   *autosave.Job
	httpRouter http.Handler

	stopLoop context.CancelFunc
	loopDone sync.WaitGroup
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	draftStore := drafts.NewAdapter(redrepo.NewDraftStore(redisClient), drafts.Config{
		KeyPrefix:  cfg.Drafts.KeyPrefix,
		StaleAfter: cfg.Drafts.StaleAfter,
		MaxBytes:   cfg.Drafts.MaxPayloadBytes,
	}, log)

	var pool *pgxpool.Pool
	var references refsvc.Source = refsvc.NewStatic(cfg.Reference)
	if strings.EqualFold(cfg.Reference.Source, "postgres") {
		if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
			log.Warn("postgres init failed, using static reference lists", zap.Error(err))
		} else {
			pool = p
			references = refsvc.NewCache(pgrepo.NewReferenceRepo(pool), referenceCacheTTL)
		}
	}

	var geocoder geo.Geocoder
	if c, err := nominatim.NewClient(cfg.Geo.NominatimURL, cfg.Geo.UserAgent, cfg.Geo.Language, cfg.Geo.LookupTimeout); err != nil {
		log.Warn("geocoder init failed, location lookups disabled", zap.Error(err))
	} else {
		geocoder = c
	}

	previewer, memoryPreviews := newPreviewer(ctx, cfg, log)

	deps := listingsvc.Dependencies{
		Geocoder:   geocoder,
		References: references,
		Previewer:  previewer,
		Drafts:     draftStore,
		Logger:     log,
	}
	if backend, err := backendhttp.NewClient(cfg.Submission.BaseURL, cfg.Submission.Token, cfg.Submission.Timeout); err != nil {
		log.Warn("listings backend init failed, submission and edit mode disabled", zap.Error(err))
	} else {
		deps.Submitter = backend
		deps.Fetcher = backend
	}

	var publisher *rabbitmq.Publisher
	if strings.TrimSpace(cfg.RabbitMQ.URL) != "" {
		if p, err := rabbitmq.NewPublisher(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange}, log); err != nil {
			log.Warn("rabbitmq init failed, listing events disabled", zap.Error(err))
		} else if events, err := rabbitmq.NewListingEvents(p, cfg.RabbitMQ.RoutingKey); err != nil {
			log.Warn("listing events init failed", zap.Error(err))
			_ = p.Close()
		} else {
			publisher = p
			deps.Notifier = events
		}
	}

	limits := mediasvc.Limits{
		MaxImageBytes:    cfg.Media.MaxImageBytes,
		MaxVideoBytes:    cfg.Media.MaxVideoBytes,
		MaxDocumentBytes: cfg.Media.MaxDocumentBytes,
		MaxImages:        cfg.Media.MaxImages,
	}
	registry := listingsvc.NewRegistry(listingsvc.Config{
		Geo: geo.Config{
			Debounce:      cfg.Geo.Debounce,
			LookupTimeout: cfg.Geo.LookupTimeout,
			Region: geo.BoundingBox{
				MinLat: cfg.Geo.Region.MinLat,
				MaxLat: cfg.Geo.Region.MaxLat,
				MinLon: cfg.Geo.Region.MinLon,
				MaxLon: cfg.Geo.Region.MaxLon,
			},
		},
		Limits: limits,
	}, deps, cfg.Drafts.SessionIdleTTL)

	RegisterRoutes(r, Dependencies{
		Registry:   registry,
		References: references,
		Previews:   memoryPreviews,
		JWT:        authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, 0),
		Limits:     limits,
		Logger:     log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		publisher:  publisher,
		registry:   registry,
		autosave:   autosave.New(registry, log),
		httpRouter: r,
	}, nil
}

// newPreviewer returns the configured previewer. The memory previewer is also
// returned separately because its previews are served by this process.
func newPreviewer(ctx context.Context, cfg config.Config, log *zap.Logger) (mediasvc.Previewer, *mediasvc.MemoryPreviewer) {
	if strings.EqualFold(cfg.Media.Previewer, "s3") {
		client, err := s3infra.NewClient(s3infra.Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Region:    cfg.S3.Region,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err == nil {
			previewer := mediasvc.NewS3Previewer(client, cfg.S3.PreviewBucket, cfg.S3.PreviewTTL)
			if err = previewer.EnsureBucket(ctx); err == nil {
				return previewer, nil
			}
		}
		log.Warn("s3 previewer init failed, falling back to in-memory previews", zap.Error(err))
	}
	memory := mediasvc.NewMemoryPreviewer(previewRoutePrefix)
	return memory, memory
}

func (a *App) Run() error {
	loopCtx, cancel := context.WithCancel(context.Background())
	a.stopLoop = cancel
	a.loopDone.Add(1)
	go func() {
		defer a.loopDone.Done()
		a.runAutosaveLoop(loopCtx)
	}()

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// runAutosaveLoop keeps ticking after a failed pass; the next tick retries dirty drafts.
func (a *App) runAutosaveLoop(ctx context.Context) {
	if a.autosave == nil {
		return
	}

	interval := a.cfg.Drafts.AutosaveInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.autosave.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn("autosave pass failed", zap.Error(err))
			}
		}
	}
}

// Shutdown stops serving, then saves and closes every open draft session
// before the stores go away.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.stopLoop != nil {
		a.stopLoop()
		a.loopDone.Wait()
	}
	if a.registry != nil {
		if err := a.registry.CloseAll(ctx); err != nil {
			a.logger.Warn("close draft sessions", zap.Error(err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("close rabbitmq publisher", zap.Error(err))
		}
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
