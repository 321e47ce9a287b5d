package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// WindowCounter counts hits of key in the current fixed window.
type WindowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounter keeps the windows in Redis so every replica shares them.
type RedisCounter struct {
	rdb *redis.Client
}

func NewRedisCounter(rdb *redis.Client) *RedisCounter { return &RedisCounter{rdb: rdb} }

func (r *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	bucket := time.Now().UnixNano() / int64(window)
	k := "ratelimit:" + key + ":" + strconv.FormatInt(bucket, 10)

	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// RateLimiter allows limit requests per client IP per window. When the
// counter is unavailable requests are let through.
func RateLimiter(counter WindowCounter, name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := counter.Hit(c.Request.Context(), name+":"+c.ClientIP(), window)
		if err != nil {
			log.Warn().Err(err).Str("limiter", name).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if n > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter(counter WindowCounter) gin.HandlerFunc {
	return RateLimiter(counter, "login", 20, time.Minute)
}
