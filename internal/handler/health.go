package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/infra"
	"github.com/garageMitre/garage-mitre-backend-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health checks DB and Redis connectivity and reports the SMTP breaker and
// the email dead-letter backlog. Never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, mailer *infra.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		var parked int64
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		} else {
			parked, _ = worker.DLQLength(ctx, rdb, worker.QueueEmail)
		}

		smtpStatus := "disabled"
		if mailer != nil && mailer.Enabled() {
			smtpStatus = mailer.BreakerState().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
			"smtp":  smtpStatus,
			"dlq":   parked,
		})
	}
}
