// Package milvus implements the dense-vector retrieval ports on a Milvus
// collection.
package milvus

import (
	"context"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"

	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-radar/pkg/errors"
)

// Config holds the Milvus connection and collection settings.
type Config struct {
	Address        string        `mapstructure:"address"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	Collection     string        `mapstructure:"collection"`
	VectorDim      int           `mapstructure:"vector_dim"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// NewClient opens a Milvus connection.
func NewClient(ctx context.Context, cfg Config, log logging.Logger) (client.Client, error) {
	address := cfg.Address
	if address == "" {
		address = "localhost:19530"
	}
	timeout := cfg.ConnectTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, err := client.NewClient(connectCtx, client.Config{
		Address:  address,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeVectorUnavailable, "milvus connection failed")
	}

	log.Info("connected to milvus", logging.String("address", address))
	return c, nil
}
