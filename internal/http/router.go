package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"movie-tracker/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	accountH *AccountHandler,
	contentH *ContentHandler,
	searchH *SearchHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", accountH.Signup)
	auth.GET("/verify", accountH.Verify)
	auth.POST("/signin", accountH.Signin)
	auth.POST("/oauth", accountH.OAuthSignin)
	auth.POST("/refresh", accountH.Refresh)
	auth.POST("/logout", accountH.Logout)

	api.GET("/search", searchH.Search)

	protected := api.Group("")
	protected.Use(JWTAuthMiddleware(jwtSvc))
	protected.GET("/watchlist", contentH.ListWatchlist)
	protected.POST("/watchlist", contentH.AddToWatchlist)
	protected.DELETE("/watchlist/:id", contentH.RemoveFromWatchlist)
	protected.POST("/watchlist/:id/watched", contentH.MarkWatched)
	protected.GET("/watched", contentH.ListWatched)
	protected.POST("/watched", contentH.AddWatched)
	protected.PUT("/watched/:id", contentH.UpdateWatched)
	protected.DELETE("/watched/:id", contentH.RemoveWatched)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
