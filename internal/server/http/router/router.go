package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/tradedesk/internal/config"
	"github.com/polkiloo/tradedesk/internal/server/http/handlers"
	"github.com/polkiloo/tradedesk/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.TradingFacade, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.CORS(cfg.CORSOrigins))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	userHandler := handlers.NewUserHandler(facade)
	marketHandler := handlers.NewMarketHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)
	authRequired := middleware.AuthRequired(facade)

	engine.GET("/healthz", healthHandler.Health)

	user := engine.Group("/user")
	user.POST("/signup", userHandler.SignUp)
	user.POST("/signin", userHandler.SignIn)
	user.POST("/delete", userHandler.Delete)

	userAuth := user.Group("")
	userAuth.Use(authRequired)
	userAuth.GET("/auth", userHandler.Auth)
	userAuth.GET("/account", userHandler.Account)
	userAuth.POST("/favoriteStock", userHandler.FavoriteStock)

	market := engine.Group("/market")
	market.GET("", marketHandler.Market)
	market.GET("/latest", marketHandler.Latest)
	market.POST("/buy", authRequired, marketHandler.Buy)

	markets := engine.Group("/markets")
	markets.GET("", marketHandler.Markets)
	markets.GET("/gainers", marketHandler.Gainers)
	markets.GET("/losers", marketHandler.Losers)

	if cfg.StaticDir != "" {
		engine.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.StaticDir))))
	}

	return engine
}
