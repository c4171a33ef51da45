package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"jewelry-backoffice/internal/models"
	"jewelry-backoffice/internal/util"

	"github.com/gin-gonic/gin"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
)

const (
	actorIDHeader   = "X-Actor-ID"
	actorRoleHeader = "X-Actor-Role"
	actorKey        = "actor"
)

// actorMiddleware reads the identity forwarded by the gateway
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader(actorIDHeader), 10, 64)
		role := models.Role(strings.ToUpper(strings.TrimSpace(c.GetHeader(actorRoleHeader))))

		if err != nil || id <= 0 || (role != models.RoleAdmin && role != models.RoleSales) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing or invalid actor identity",
				"code":  "unauthorized",
			})
			return
		}

		c.Set(actorKey, models.Actor{ID: id, Role: role})
		c.Next()
	}
}

func actorFrom(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}

// requireRole rejects actors without the given role
func requireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actorFrom(c).Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Operation requires role " + string(role),
				"code":  "forbidden",
			})
			return
		}
		c.Next()
	}
}

// rateLimiter limits requests per client IP with an in-memory store
func rateLimiter(formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	return mgin.NewMiddleware(limiter.New(memory.NewStore(), rate)), nil
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
