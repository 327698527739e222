package app

import (
	"context"
	"net/http"
	"time"

	"barbid-go/internal/cache"
	"barbid-go/internal/config"
	"barbid-go/internal/db"
	businessdomain "barbid-go/internal/domain/business"
	jobdomain "barbid-go/internal/domain/job"
	notificationdomain "barbid-go/internal/domain/notification"
	userdomain "barbid-go/internal/domain/user"
	businessrepo "barbid-go/internal/repository/postgres/business"
	jobrepo "barbid-go/internal/repository/postgres/job"
	notificationrepo "barbid-go/internal/repository/postgres/notification"
	userrepo "barbid-go/internal/repository/postgres/user"
	"barbid-go/internal/transport/httpserver"
	"barbid-go/internal/transport/httpserver/handler"
	"barbid-go/pkg/logger"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	log        logger.Logger
	httpServer *http.Server
	db         *gorm.DB
	feedCache  *cache.FeedCache
	jobs       *jobdomain.Service
}

func New(log logger.Logger) (*App, error) {
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	userService := userdomain.NewService(userrepo.NewPostgres(dbConn))
	businessService := businessdomain.NewService(businessrepo.NewPostgres(dbConn))
	notificationService := notificationdomain.NewService(notificationrepo.NewPostgres(dbConn), log)

	jobService := jobdomain.NewService(jobrepo.NewPostgres(dbConn), jobdomain.Config{
		MinimumWage:       cfg.Jobs.MinimumWage,
		MinLeadTime:       cfg.Jobs.MinLeadTime,
		ClosingSoonWindow: cfg.Jobs.ClosingSoonWindow,
	})
	jobService.SetNotifier(notificationService)

	var feedCache *cache.FeedCache
	if cfg.Redis.Enabled {
		feedCache, err = cache.NewFeedCache(cfg.Redis.URL, cfg.Jobs.FeedCacheTTL, log)
		if err != nil {
			// The feed works without Redis; degrade instead of failing boot.
			log.Warn("app: feed cache unavailable", "err", err)
		} else {
			jobService.SetFeedCache(feedCache)
			businessService.SetFeedInvalidator(feedCache)
		}
	}

	handlers := handler.New(businessService, jobService, notificationService, userService, log)
	router := httpserver.NewRouter(cfg, handlers, userService, log)

	return &App{
		cfg:        cfg,
		log:        log,
		httpServer: httpserver.New(cfg, router),
		db:         dbConn,
		feedCache:  feedCache,
		jobs:       jobService,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

// RunAutoClose runs the sweeper that closes open listings whose shift has
// started. Blocks until the context is canceled.
func (a *App) RunAutoClose(ctx context.Context) {
	interval := a.cfg.Jobs.AutoCloseInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			closed, err := a.jobs.CloseExpired(ctx)
			if err != nil {
				a.log.InternalError("sweeper: close expired failed", err)
				continue
			}
			if closed > 0 {
				a.log.Info("sweeper: closed listings past shift start", "count", closed)
			}
		}
	}
}

func (a *App) Close() error {
	if a.feedCache != nil {
		if err := a.feedCache.Close(); err != nil {
			a.log.Warn("app: close feed cache failed", "err", err)
		}
	}

	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
