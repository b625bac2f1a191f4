// Package neo4j manages the graph database connection behind the citation
// repository.
package neo4j

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-radar/pkg/errors"
)

// Config holds the neo4j connection settings.
type Config struct {
	URI                   string        `mapstructure:"uri"`
	Username              string        `mapstructure:"username"`
	Password              string        `mapstructure:"password"`
	Database              string        `mapstructure:"database"`
	MaxConnectionPoolSize int           `mapstructure:"max_connection_pool_size"`
	MaxConnectionLifetime time.Duration `mapstructure:"max_connection_lifetime"`
}

// Driver wraps the neo4j driver with the configured database name.
type Driver struct {
	driver   neo4j.DriverWithContext
	database string
	logger   logging.Logger
}

// NewDriver opens a neo4j connection and verifies connectivity.
func NewDriver(ctx context.Context, cfg Config, log logging.Logger) (*Driver, error) {
	uri := cfg.URI
	if uri == "" {
		uri = "bolt://localhost:7687"
	}

	d, err := neo4j.NewDriverWithContext(uri,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			if cfg.MaxConnectionPoolSize > 0 {
				c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
			}
			if cfg.MaxConnectionLifetime > 0 {
				c.MaxConnectionLifetime = cfg.MaxConnectionLifetime
			}
		})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create neo4j driver")
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := d.VerifyConnectivity(verifyCtx); err != nil {
		_ = d.Close(ctx)
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "neo4j connection failed")
	}

	log.Info("connected to neo4j", logging.String("uri", uri))
	return &Driver{driver: d, database: cfg.Database, logger: log}, nil
}

// session opens a session bound to the configured database.
func (d *Driver) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return d.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: d.database,
	})
}

// ExecuteRead runs the work function inside a managed read transaction.
func (d *Driver) ExecuteRead(ctx context.Context, work neo4j.ManagedTransactionWork) (interface{}, error) {
	session := d.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)
	return session.ExecuteRead(ctx, work)
}

// ExecuteWrite runs the work function inside a managed write transaction.
func (d *Driver) ExecuteWrite(ctx context.Context, work neo4j.ManagedTransactionWork) (interface{}, error) {
	session := d.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	return session.ExecuteWrite(ctx, work)
}

// Close releases the underlying driver.
func (d *Driver) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}
