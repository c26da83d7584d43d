package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBHost     string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName     string `env:"DB_NAME,required"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`

	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	StorageBucket     string `env:"STORAGE_BUCKET"`

	// Closure retention. The admin window must exceed the participant window.
	ParticipantGraceDays int `env:"PARTICIPANT_GRACE_DAYS" envDefault:"7"`
	AdminRetentionDays   int `env:"ADMIN_RETENTION_DAYS" envDefault:"30"`

	// Shifts the service clock, e.g. "720h" to fast-forward a staging
	// environment past retention deadlines.
	TimeOffset time.Duration `env:"TIME_OFFSET" envDefault:"0"`

	ProtectionRateBasisPoints int64 `env:"PROTECTION_RATE_BASIS_POINTS" envDefault:"200"`
	ProtectionMinFeeYen       int64 `env:"PROTECTION_MIN_FEE_YEN" envDefault:"100"`
	ProtectionMaxFeeYen       int64 `env:"PROTECTION_MAX_FEE_YEN" envDefault:"2500"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.AdminRetentionDays <= cfg.ParticipantGraceDays {
		return nil, errors.New("ADMIN_RETENTION_DAYS must exceed PARTICIPANT_GRACE_DAYS")
	}
	return &cfg, nil
}
