package handler

import (
	"context"
	"net/http"
	"time"

	"schoolpay/internal/infra"
	"schoolpay/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity, the SMS gateway circuit breaker state and
// the dead-letter queue depth; never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, smsCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		// Total stuck jobs across all dead letter queues. Non-zero means a
		// notification exhausted its retries and needs manual inspection.
		var dlqDepth int64
		if redisStatus == "connected" {
			for _, q := range []string{worker.QueueSMS, worker.QueueReceipt, worker.QueueEmail} {
				if n, err := worker.DLQLength(ctx, rdb, q); err == nil {
					dlqDepth += n
				}
			}
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":          status == http.StatusOK,
			"db":          dbStatus,
			"redis":       redisStatus,
			"sms_gateway": smsCB.State().String(),
			"dlq_depth":   dlqDepth,
		})
	}
}
