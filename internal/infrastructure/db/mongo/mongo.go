package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Store bundles the repositories backed by one database.
type Store struct {
	Identities   *IdentityRepository
	Profiles     *ProfileRepository
	Jobs         *JobRepository
	Applications *ApplicationRepository
	Objects      *ObjectStorage
}

func NewStore(db *mongo.Database) (*Store, error) {
	objects, err := NewObjectStorage(db)
	if err != nil {
		return nil, err
	}
	return &Store{
		Identities:   NewIdentityRepository(db),
		Profiles:     NewProfileRepository(db),
		Jobs:         NewJobRepository(db),
		Applications: NewApplicationRepository(db),
		Objects:      objects,
	}, nil
}

// EnsureIndexes creates the indexes every repository relies on, including
// the unique keys that back duplicate detection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for name, ensure := range map[string]func(context.Context) error{
		collectionIdentities:   s.Identities.EnsureIndexes,
		collectionProfiles:     s.Profiles.EnsureIndexes,
		collectionJobs:         s.Jobs.EnsureIndexes,
		collectionApplications: s.Applications.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}
	return nil
}
