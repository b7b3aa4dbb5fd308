package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/pkg/config"
)

// ErrNotConfigured is returned when graph operations are attempted without
// a configured graph store. Callers degrade to relational reads.
var ErrNotConfigured = errors.ErrGraphNotConfigured

// Connector manages a lazily created, shared Neo4j driver. The driver is
// built on first use and reused until Close, so every session shares one
// connection pool.
type Connector struct {
	cfg    config.Neo4jConfig
	logger *zap.Logger

	mu     sync.Mutex
	driver neo4j.DriverWithContext
}

// NewConnector creates a connector. No connection is made until Driver is
// first called.
func NewConnector(cfg config.Neo4jConfig, logger *zap.Logger) *Connector {
	return &Connector{cfg: cfg, logger: logger}
}

// Configured reports whether a graph URI is set
func (c *Connector) Configured() bool {
	return c.cfg.URI != ""
}

// Driver returns the shared driver, creating it on first call
func (c *Connector) Driver(ctx context.Context) (neo4j.DriverWithContext, error) {
	if c.cfg.URI == "" {
		return nil, ErrNotConfigured
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.driver != nil {
		return c.driver, nil
	}

	driver, err := neo4j.NewDriverWithContext(
		c.cfg.URI,
		neo4j.BasicAuth(c.cfg.Username, c.cfg.Password, ""),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach graph store: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("✅ Graph store connected", zap.String("uri", c.cfg.URI))
	}

	c.driver = driver
	return c.driver, nil
}

// Session opens a session against the configured database
func (c *Connector) Session(ctx context.Context) (neo4j.SessionWithContext, error) {
	driver, err := c.Driver(ctx)
	if err != nil {
		return nil, err
	}
	return driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: c.cfg.Database}), nil
}

// Ping verifies the graph store is reachable
func (c *Connector) Ping(ctx context.Context) error {
	driver, err := c.Driver(ctx)
	if err != nil {
		return err
	}
	return driver.VerifyConnectivity(ctx)
}

// Close shuts down the shared driver
func (c *Connector) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.driver == nil {
		return nil
	}
	err := c.driver.Close(ctx)
	c.driver = nil
	return err
}
