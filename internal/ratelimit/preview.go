package ratelimit

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/invoicer/internal/config"
	"github.com/smallbiznis/invoicer/internal/orgcontext"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyPreviewOrg = "totals:preview:org:%s"
	keyPreviewIP  = "totals:preview:ip:%s"
)

// PreviewLimiter throttles the totals preview endpoint per organization, or
// per client address for anonymous callers. A nil limiter allows everything.
type PreviewLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
	log    *zap.Logger
}

type Params struct {
	fx.In

	Lc  fx.Lifecycle
	Cfg config.Config
	Log *zap.Logger
}

func NewPreviewLimiter(p Params) (*PreviewLimiter, error) {
	limitCfg := p.Cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}
	if limitCfg.RedisAddr == "" {
		return nil, fmt.Errorf("%w: redis addr is required", ErrInvalidLimit)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     limitCfg.RedisAddr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	log := p.Log.Named("ratelimit")
	if err := redisotel.InstrumentTracing(client); err != nil {
		log.Warn("instrument redis tracing", zap.Error(err))
	}

	p.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return NewPreviewLimiterWithClient(client, limitCfg.PreviewRate, limitCfg.PreviewBurst, log)
}

func NewPreviewLimiterWithClient(client *redis.Client, rate float64, burst int, log *zap.Logger) (*PreviewLimiter, error) {
	if rate <= 0 || burst <= 0 {
		return nil, fmt.Errorf("%w: preview rate and burst must be positive", ErrInvalidLimit)
	}
	return &PreviewLimiter{
		bucket: NewTokenBucket(client),
		rate:   rate,
		burst:  burst,
		log:    log,
	}, nil
}

// Middleware rejects callers over their budget with 429. Redis failures are
// logged and the request goes through.
func (l *PreviewLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}

		res, err := l.bucket.Allow(c.Request.Context(), previewKey(c), l.rate, l.burst)
		if err != nil {
			l.log.Warn("preview rate limit unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"type":    "rate_limited",
					"message": "too many requests",
				},
			})
			return
		}
		c.Next()
	}
}

func previewKey(c *gin.Context) string {
	if orgID, ok := orgcontext.OrgIDFromContext(c.Request.Context()); ok {
		return fmt.Sprintf(keyPreviewOrg, orgID.String())
	}
	return fmt.Sprintf(keyPreviewIP, c.ClientIP())
}
