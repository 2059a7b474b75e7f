package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	docs "github.com/tazhibayda/tasks-service/docs"
	"github.com/tazhibayda/tasks-service/internal/config"
	api "github.com/tazhibayda/tasks-service/internal/http"
	"github.com/tazhibayda/tasks-service/internal/log"
	"github.com/tazhibayda/tasks-service/internal/metrics"
	"github.com/tazhibayda/tasks-service/internal/oauth"
	"github.com/tazhibayda/tasks-service/internal/queue"
	"github.com/tazhibayda/tasks-service/internal/repo"
)

// @title Tasks API
// @version 0.1.0
// @description Per-user to-do tasks behind session auth.
// @schemes http https
// @BasePath /
// @securityDefinitions.apikey SessionCookie
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	if _, err := log.Init(cfg.Env == "prod"); err != nil {
		stdlog.Fatalf("log init: %v", err)
	}

	metrics.MustRegister()

	if cfg.DDEnabled {
		tracer.Start(tracer.WithService("tasks-service"), tracer.WithEnv(cfg.Env))
		defer tracer.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		stdlog.Fatalf("mongo connect: %v", err)
	}
	defer store.Close(context.Background())

	if err := store.EnsureIndexes(ctx); err != nil {
		stdlog.Fatalf("mongo indexes: %v", err)
	}

	var rds *repo.Redis
	if cfg.RedisAddr != "" {
		rds = repo.NewRedis(cfg.RedisAddr)
		defer rds.Close()
		if err := rds.Ping(ctx); err != nil {
			log.Errorf("redis ping: %v (continuing without shared rate limits)", err)
			rds = nil
		}
	}

	var pub queue.Publisher = queue.NewNoop()
	if cfg.RabbitURL != "" {
		p, err := queue.NewRabbit(cfg.RabbitURL, queue.Exchange)
		if err != nil {
			log.Errorf("rabbit connect: %v (events disabled)", err)
		} else {
			pub = p
			defer pub.Close()
		}
	}

	google := oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.OAuthStateSecret)

	docs.SwaggerInfo.BasePath = "/"

	h := api.NewHandler(store, store, cfg.JWTSecret, cfg.SessionTTLMin, rds, cfg.RateLimitPerMin, pub, google)
	h.DBPing = store.Ping
	r := api.NewRouter(h)

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	log.Infof("tasks-service listening on :%s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Infof("signal: %s, shutting down", s)
	case err := <-srvErr:
		log.Errorf("server error: %v", err)
	}
}
