package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings for the relational driver.
type Config struct {
	DSN     string
	Timeout time.Duration
}

// Connect opens a gorm handle over PostgreSQL and verifies connectivity.
// Driver errors are translated so duplicate keys surface as
// gorm.ErrDuplicatedKey.
func Connect(ctx context.Context, cfg Config) (*gorm.DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("postgres open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres handle: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table the repositories use.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&identityModel{},
		&profileModel{},
		&jobModel{},
		&applicationModel{},
		&objectModel{},
	)
}

// Store bundles the repositories backed by one database.
type Store struct {
	Identities   *IdentityRepository
	Profiles     *ProfileRepository
	Jobs         *JobRepository
	Applications *ApplicationRepository
	Objects      *ObjectStorage
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		Identities:   NewIdentityRepository(db),
		Profiles:     NewProfileRepository(db),
		Jobs:         NewJobRepository(db),
		Applications: NewApplicationRepository(db),
		Objects:      NewObjectStorage(db),
	}
}
