package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"friendzone/config"
	"friendzone/database"
	"friendzone/logger"
	"friendzone/media"
	"friendzone/middleware"
	"friendzone/notify"
	"friendzone/repository"
	"friendzone/routes"
	"friendzone/services"
	"friendzone/token"
	"friendzone/websocket"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.AppName, cfg.Env)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("Server stopped gracefully")
}

type storage struct {
	users  repository.UserRepository
	posts  repository.PostRepository
	subs   repository.PushSubscriptionRepository
	tx     repository.Transactor
	client *mongo.Client
}

func openStorage(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*storage, error) {
	if cfg.StorageDriver == config.DriverMemory {
		log.Warn("Using in-memory storage; data is lost on restart")
		mem := repository.NewMemoryStore()
		return &storage{users: mem.Users(), posts: mem.Posts(), subs: mem.PushSubscriptions()}, nil
	}

	log.Info("Connecting to MongoDB...")
	client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		_ = database.Disconnect(client, log)
		return nil, err
	}

	st := &storage{
		users:  repository.NewMongoUsers(db),
		posts:  repository.NewMongoPosts(db),
		subs:   repository.NewMongoPushSubscriptions(db),
		client: client,
	}
	if cfg.MongoTransactions {
		st.tx = repository.NewMongoTransactor(client)
	}
	return st, nil
}

func newUploader(cfg *config.Config, log logrus.FieldLogger) media.Uploader {
	if cfg.CloudinaryURL == "" {
		log.Warn("CLOUDINARY_URL not set; image uploads are disabled")
		return media.Disabled{}
	}
	u, err := media.NewCloudinaryUploader(cfg.CloudinaryURL, cfg.CloudinaryFolder)
	if err != nil {
		logger.LogError(log, "Cloudinary init failed; image uploads are disabled", err, nil)
		return media.Disabled{}
	}
	return u
}

// newLimiters returns the global and auth limiters. A non-positive limit
// disables that limiter.
func newLimiters(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (global, auth middleware.Limiter, rdb *redis.Client) {
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.WithError(err).Warn("Redis unreachable; rate limiting fails open until it recovers")
		}
	}

	build := func(perMinute int) middleware.Limiter {
		if perMinute <= 0 {
			return nil
		}
		if rdb != nil {
			return middleware.NewRedisLimiter(rdb, cfg.AppName+":rl:", perMinute, time.Minute)
		}
		return middleware.NewMemoryLimiter(perMinute, time.Minute)
	}
	return build(cfg.RateLimitPerMinute), build(cfg.AuthRateLimitPerMinute), rdb
}

func run(cfg *config.Config, log *logrus.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Disconnect(st.client, log); err != nil {
			logger.LogError(log, "MongoDB disconnect failed", err, nil)
		}
	}()

	var pusher notify.Pusher = notify.Noop{}
	if cfg.PushEnabled() {
		wp := notify.NewWebPusher(st.subs, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber, log)
		defer wp.Wait()
		pusher = wp
	} else {
		log.Info("VAPID keys not set; web push is disabled")
	}

	globalLimiter, authLimiter, rdb := newLimiters(ctx, cfg, log)
	if rdb != nil {
		defer rdb.Close()
	}

	hub := websocket.NewManager(cfg.CORSOrigins(), log)
	go hub.Start(ctx)

	var metrics *middleware.Metrics
	if cfg.MetricsEnabled {
		metrics = middleware.NewMetrics("friendzone")
	}

	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	uploader := newUploader(cfg, log)
	pushKey := ""
	if cfg.PushEnabled() {
		pushKey = cfg.VAPIDPublicKey
	}

	router := routes.SetupRouter(routes.Dependencies{
		Log:            log,
		Tokens:         tokens,
		Auth:           services.NewAuthService(st.users, uploader, tokens, log),
		Users:          services.NewUserService(st.users, st.tx, log),
		Posts:          services.NewPostService(st.posts, st.users, uploader, hub, pusher, log),
		PushSubs:       st.subs,
		VAPIDPublicKey: pushKey,
		Hub:            hub,
		Metrics:        metrics,
		Limiter:        globalLimiter,
		AuthLimiter:    authLimiter,
		AllowedOrigins: cfg.CORSOrigins(),
		RequestTimeout: cfg.RequestTimeout,
		AccessLog:      cfg.HTTPLogEnabled,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.RequestTimeout + 15*time.Second,
		WriteTimeout:      cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "storage": cfg.StorageDriver}).Info("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.LogError(log, "Forced shutdown", err, nil)
	}
	return nil
}
