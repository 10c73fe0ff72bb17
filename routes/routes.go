package routes

import (
	"net/http"
	"time"

	"friendzone/apperr"
	"friendzone/handlers"
	"friendzone/media"
	"friendzone/middleware"
	"friendzone/repository"
	"friendzone/response"
	"friendzone/services"
	"friendzone/token"
	"friendzone/validation"
	"friendzone/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Dependencies is everything the router needs. Nil Hub, Metrics, Limiter
// and AuthLimiter disable the matching feature.
type Dependencies struct {
	Log            logrus.FieldLogger
	Tokens         *token.Manager
	Auth           *services.AuthService
	Users          *services.UserService
	Posts          *services.PostService
	PushSubs       repository.PushSubscriptionRepository
	VAPIDPublicKey string
	Hub            *websocket.Manager

	Metrics     *middleware.Metrics
	Limiter     middleware.Limiter
	AuthLimiter middleware.Limiter

	AllowedOrigins []string
	RequestTimeout time.Duration
	AccessLog      bool
}

func SetupRouter(d Dependencies) *gin.Engine {
	validation.Init()

	router := gin.New()
	router.MaxMultipartMemory = media.MaxImageBytes * 2

	router.Use(gin.Recovery(), middleware.RequestID())
	router.Use(secure.New(secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		IENoOpen:              true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		STSSeconds:            15552000,
		STSIncludeSubdomains:  true,
	}))
	if d.AccessLog {
		router.Use(middleware.AccessLog(d.Log))
	}
	if d.Metrics != nil {
		router.Use(d.Metrics.Handler())
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	corsConfig := cors.Config{
		AllowOrigins:     d.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(d.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.RateLimit(d.Limiter, middleware.KeyByIP("global"), d.Log))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "FriendZone API running",
			"service": "healthy",
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})
	router.NoRoute(func(c *gin.Context) {
		response.Abort(c, http.StatusNotFound, apperr.KindNotFound, "Route not found")
	})

	auth := handlers.NewAuthHandler(d.Auth)
	users := handlers.NewUserHandler(d.Users)
	posts := handlers.NewPostHandler(d.Posts)
	push := handlers.NewPushHandler(d.PushSubs, d.VAPIDPublicKey)
	requireAuth := middleware.JWTAuth(d.Tokens)
	timeout := middleware.Timeout(d.RequestTimeout)

	authGroup := router.Group("/auth", middleware.RateLimit(d.AuthLimiter, middleware.KeyByIP("auth"), d.Log), timeout)
	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login", auth.Login)

	router.GET("/push/vapid-public-key", push.VapidPublicKey)
	router.POST("/push/subscribe", requireAuth, timeout, push.Subscribe)

	userGroup := router.Group("/users", requireAuth, timeout)
	userGroup.GET("/search", users.Search)
	userGroup.GET("/:id", users.GetUser)
	userGroup.GET("/:id/friends", users.GetFriends)
	userGroup.PATCH("/:id/:friendId", users.ToggleFriend)

	postGroup := router.Group("/posts", requireAuth, timeout)
	postGroup.GET("", posts.Feed)
	postGroup.POST("", posts.Create)
	postGroup.GET("/:id/posts", posts.UserFeed)
	postGroup.PATCH("/:id", posts.Update)
	postGroup.DELETE("/:id", posts.Delete)
	postGroup.PATCH("/:id/like", posts.Like)
	postGroup.POST("/:id/comments", posts.AddComment)
	postGroup.PATCH("/:id/comments/:commentId", posts.UpdateComment)
	postGroup.DELETE("/:id/comments/:commentId", posts.DeleteComment)

	if d.Hub != nil {
		hub := d.Hub
		router.GET("/ws", requireAuth, func(c *gin.Context) {
			hub.ServeWS(c.Writer, c.Request, c.GetString(middleware.CtxUserIDKey))
		})
	}

	return router
}
