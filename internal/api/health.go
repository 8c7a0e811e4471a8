package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// HealthHandler pings the database and Redis
func HealthHandler(env *Env) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		status := gin.H{"database": "ok", "redis": "ok"}
		healthy := true

		sqlDB, err := env.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			status["database"] = err.Error()
			healthy = false
		}
		if err := env.Redis.Ping(ctx).Err(); err != nil {
			status["redis"] = err.Error()
			healthy = false
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}
