package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/flashdeck-backend/internal/platform/apierr"
	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
)

// AdmissionController decides whether a generation request may consume model
// capacity. Rejections are RATE_LIMITED (burst, retryable after backoff) or
// QUOTA_EXCEEDED (daily budget, not retryable today).
type AdmissionController interface {
	Admit(ctx context.Context, callerID, operation string) error
}

type AdmissionConfig struct {
	RequestsPerMinute int
	DailyQuota        int
}

func DefaultAdmissionConfig() AdmissionConfig {
	return AdmissionConfig{
		RequestsPerMinute: 10,
		DailyQuota:        200,
	}
}

const admissionWindow = time.Minute

// ---- Redis-backed admission (shared across instances) ----

type redisAdmission struct {
	log *logger.Logger
	rdb *goredis.Client
	cfg AdmissionConfig
	now func() time.Time
}

func NewRedisAdmission(log *logger.Logger, rdb *goredis.Client, cfg AdmissionConfig) AdmissionController {
	return &redisAdmission{
		log: log.With("service", "AdmissionController"),
		rdb: rdb,
		cfg: cfg,
		now: time.Now,
	}
}

// Admit checks the sliding one-minute window first, then the daily quota. A
// redis outage admits the request: availability of generation beats strict
// accounting.
func (a *redisAdmission) Admit(ctx context.Context, callerID, operation string) error {
	now := a.now()

	rateKey := fmt.Sprintf("adm:rate:%s:%s", operation, callerID)
	cutoff := now.Add(-admissionWindow)

	pipe := a.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, rateKey, "0", strconv.FormatInt(cutoff.UnixNano(), 10))
	card := pipe.ZCard(ctx, rateKey)
	if _, err := pipe.Exec(ctx); err != nil {
		a.log.Warn("admission rate check unavailable, admitting", "error", err)
		return nil
	}
	if card.Val() >= int64(a.cfg.RequestsPerMinute) {
		return apierr.RateLimited(fmt.Errorf("rate limit exceeded for %s", operation)).
			WithDetails(map[string]any{"limit_per_minute": a.cfg.RequestsPerMinute})
	}

	quotaKey := fmt.Sprintf("adm:quota:%s:%s:%s", operation, callerID, now.UTC().Format("2006-01-02"))
	used, err := a.rdb.Incr(ctx, quotaKey).Result()
	if err != nil {
		a.log.Warn("admission quota check unavailable, admitting", "error", err)
		return nil
	}
	if used == 1 {
		a.rdb.Expire(ctx, quotaKey, 48*time.Hour)
	}
	if used > int64(a.cfg.DailyQuota) {
		return apierr.QuotaExceeded(fmt.Errorf("daily quota exceeded for %s", operation)).
			WithDetails(map[string]any{"daily_quota": a.cfg.DailyQuota})
	}

	// Record the admitted request in the window only after both checks pass,
	// so rejected requests don't consume capacity.
	member := strconv.FormatInt(now.UnixNano(), 10)
	if err := a.rdb.ZAdd(ctx, rateKey, goredis.Z{Score: float64(now.UnixNano()), Member: member}).Err(); err == nil {
		a.rdb.Expire(ctx, rateKey, 2*admissionWindow)
	}
	return nil
}

// ---- In-memory admission (single instance, no redis configured) ----

type memoryAdmission struct {
	log *logger.Logger
	cfg AdmissionConfig
	now func() time.Time

	mu     sync.Mutex
	window map[string][]time.Time
	quota  map[string]int
}

func NewMemoryAdmission(log *logger.Logger, cfg AdmissionConfig) AdmissionController {
	return &memoryAdmission{
		log:    log.With("service", "AdmissionController"),
		cfg:    cfg,
		now:    time.Now,
		window: map[string][]time.Time{},
		quota:  map[string]int{},
	}
}

func (a *memoryAdmission) Admit(ctx context.Context, callerID, operation string) error {
	now := a.now()
	rateKey := operation + ":" + callerID
	quotaKey := rateKey + ":" + now.UTC().Format("2006-01-02")

	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := now.Add(-admissionWindow)
	kept := a.window[rateKey][:0]
	for _, t := range a.window[rateKey] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	a.window[rateKey] = kept

	if len(kept) >= a.cfg.RequestsPerMinute {
		return apierr.RateLimited(fmt.Errorf("rate limit exceeded for %s", operation)).
			WithDetails(map[string]any{"limit_per_minute": a.cfg.RequestsPerMinute})
	}
	if a.quota[quotaKey] >= a.cfg.DailyQuota {
		return apierr.QuotaExceeded(fmt.Errorf("daily quota exceeded for %s", operation)).
			WithDetails(map[string]any{"daily_quota": a.cfg.DailyQuota})
	}

	a.window[rateKey] = append(kept, now)
	a.quota[quotaKey]++
	return nil
}
