package emailqueue

import "time"

// Config holds email queue tuning loaded from the environment.
type Config struct {
	BatchSize     int           `env:"EMAIL_QUEUE_BATCH_SIZE" envDefault:"10"`
	PullInterval  time.Duration `env:"EMAIL_QUEUE_PULL_INTERVAL" envDefault:"5s"`
	MaxRetries    int           `env:"EMAIL_QUEUE_MAX_RETRIES" envDefault:"3"`
	RetryCooldown time.Duration `env:"EMAIL_QUEUE_RETRY_COOLDOWN" envDefault:"10m"`
	RetryInterval time.Duration `env:"EMAIL_QUEUE_RETRY_SWEEP_INTERVAL" envDefault:"1m"`
}
