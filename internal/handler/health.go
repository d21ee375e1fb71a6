package handler

import (
	"context"
	"net/http"
	"time"

	"deliverypdv/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports storage and Redis connectivity. Either may be nil when the
// server runs on the in-memory store without Redis; they are then reported
// as "disabled" and do not fail the check.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		healthy := true
		dbStatus := "disabled"
		if db != nil {
			dbStatus = "connected"
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(ctx) != nil {
				dbStatus = "error"
				healthy = false
			}
		}

		redisStatus := "disabled"
		var dlq map[string]int64
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
				healthy = false
			} else if n, err := worker.DLQLengths(ctx, rdb); err == nil {
				dlq = n
			}
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		body := gin.H{
			"ok":    healthy,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if dlq != nil {
			body["dlq"] = dlq
		}
		c.JSON(status, body)
	}
}
