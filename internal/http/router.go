package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"site-assistant/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas del asistente.
// limiter y gatherer son opcionales.
func NewRouter(
	logger *zap.Logger,
	chatH *ChatHandler,
	sitemapH *SitemapHandler,
	limiter service.ChatRateLimiter,
	gatherer prometheus.Gatherer,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.CustomRecovery(abortAwareRecovery))

	api := r.Group("/api")
	api.POST("/chat", rateLimitMiddleware(limiter), chatH.PostChat)

	jsonAPI := api.Group("", jsonContentTypeMiddleware())
	jsonAPI.GET("/sitemap", sitemapH.GetSitemap)
	jsonAPI.GET("/navigate", sitemapH.Navigate)

	r.GET("/healthz", jsonContentTypeMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
// No se usa en /api/chat, que responde texto en streaming.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// abortAwareRecovery responde 500 ante un panic, salvo http.ErrAbortHandler:
// ese se relanza para que net/http corte la conexion sin cerrar el stream.
func abortAwareRecovery(c *gin.Context, err any) {
	if e, ok := err.(error); ok && errors.Is(e, http.ErrAbortHandler) {
		panic(http.ErrAbortHandler)
	}
	c.AbortWithStatus(http.StatusInternalServerError)
}

// rateLimitMiddleware limita por ruta e IP; sin limiter deja pasar todo.
func rateLimitMiddleware(limiter service.ChatRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		d := limiter.Allow(c.Request.Context(), c.FullPath(), c.ClientIP())
		if d.Remaining >= 0 {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		}
		if !d.Allowed {
			secs := retryAfterSeconds(d.RetryAfter)
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":               "too many requests",
				"retry_after_seconds": secs,
			})
			return
		}
		c.Next()
	}
}

// retryAfterSeconds redondea hacia arriba; Retry-After nunca es 0.
func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
