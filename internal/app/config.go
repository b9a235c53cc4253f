package app

import (
	"time"

	"github.com/yungbote/flashdeck-backend/internal/gen/retrieval"
	"github.com/yungbote/flashdeck-backend/internal/platform/breaker"
	"github.com/yungbote/flashdeck-backend/internal/platform/envutil"
	"github.com/yungbote/flashdeck-backend/internal/services"
)

type Config struct {
	HTTPAddr       string
	Environment    string
	Breaker        breaker.Config
	Retrieval      retrieval.Config
	Admission      services.AdmissionConfig
	ProduceTimeout time.Duration
}

func LoadConfig() Config {
	return Config{
		HTTPAddr:    envutil.Str("HTTP_ADDR", ":8080"),
		Environment: envutil.Str("APP_ENV", "development"),
		Breaker: breaker.Config{
			FailureThreshold: envutil.Int("BREAKER_FAILURE_THRESHOLD", 5),
			Window:           envutil.Seconds("BREAKER_WINDOW_SECONDS", 60*time.Second),
			Cooldown:         envutil.Seconds("BREAKER_COOLDOWN_SECONDS", 30*time.Second),
		},
		Retrieval: retrieval.Config{
			TopK:            envutil.Int("RETRIEVAL_TOP_K", 12),
			MinAvgScore:     envutil.Float("RETRIEVAL_MIN_AVG_SCORE", 0.35),
			MaxContextChars: envutil.Int("RETRIEVAL_MAX_CONTEXT_CHARS", 6000),
			MaxPerSource:    envutil.Int("RETRIEVAL_MAX_PER_SOURCE", 4),
			Timeout:         envutil.Seconds("RETRIEVAL_TIMEOUT_SECONDS", 5*time.Second),
		},
		Admission: services.AdmissionConfig{
			RequestsPerMinute: envutil.Int("ADMISSION_REQUESTS_PER_MINUTE", 10),
			DailyQuota:        envutil.Int("ADMISSION_DAILY_QUOTA", 200),
		},
		ProduceTimeout: envutil.Seconds("EXAMPLE_PRODUCE_TIMEOUT_SECONDS", 90*time.Second),
	}
}
