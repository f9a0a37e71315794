package bolt

import (
	"context"
	"math/rand"

	pool "github.com/jolestar/go-commons-pool/v2"

	"github.com/graphshift/go-bolt/errors"
	"github.com/graphshift/go-bolt/log"
)

// Driver opens connections to a Bolt server
type Driver interface {
	Open() (Conn, error)
}

type boltDriver struct {
	connStr  string
	settings Settings
	resolver AddressResolver
}

// NewDriver creates a driver for the given bolt:// connection string.
// Settings are optional, omitted fields fall back to DefaultSettings.
func NewDriver(connStr string, settings ...Settings) Driver {
	return &boltDriver{
		connStr:  connStr,
		settings: mergeSettings(settings),
	}
}

// NewDriverWithResolver creates a driver that resolves the connection
// string to candidate addresses before dialing and picks one at random
func NewDriverWithResolver(connStr string, resolver AddressResolver, settings ...Settings) Driver {
	return &boltDriver{
		connStr:  connStr,
		settings: mergeSettings(settings),
		resolver: resolver,
	}
}

func mergeSettings(settings []Settings) Settings {
	if len(settings) == 0 {
		return DefaultSettings()
	}
	merged := settings[0]
	defaults := DefaultSettings()
	if merged.UserAgent == "" {
		merged.UserAgent = defaults.UserAgent
	}
	if merged.DialTimeout == 0 {
		merged.DialTimeout = defaults.DialTimeout
	}
	if merged.ChunkSize == 0 {
		merged.ChunkSize = defaults.ChunkSize
	}
	if merged.FetchSize == 0 {
		merged.FetchSize = defaults.FetchSize
	}
	if merged.PoolSize == 0 {
		merged.PoolSize = defaults.PoolSize
	}
	return merged
}

func (d *boltDriver) Open() (Conn, error) {
	connStr := d.connStr
	if d.resolver != nil {
		candidates, err := d.resolver.Resolve(d.connStr)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, errors.New("address resolver returned no candidates for %s", d.connStr)
		}
		connStr = candidates[rand.Intn(len(candidates))]
	}
	return newBoltConn(connStr, d.settings)
}

// DriverPool hands out pooled connections. Safe for concurrent use; each
// borrowed connection is still single-goroutine until released.
type DriverPool interface {
	// Acquire borrows a connection, dialing a new one when the pool has
	// capacity and none is idle
	Acquire(ctx context.Context) (Conn, error)
	// Release returns a connection to the pool. Connections with leftover
	// state are reset first; connections that cannot be made reusable are
	// destroyed instead of pooled.
	Release(ctx context.Context, conn Conn) error
	Close(ctx context.Context)
}

type boltDriverPool struct {
	driver *boltDriver
	pool   *pool.ObjectPool
}

// NewDriverPool creates a pool of at most settings.PoolSize connections
// for the given connection string
func NewDriverPool(ctx context.Context, connStr string, settings ...Settings) (DriverPool, error) {
	driver := &boltDriver{
		connStr:  connStr,
		settings: mergeSettings(settings),
	}

	factory := pool.NewPooledObjectFactory(
		func(ctx context.Context) (interface{}, error) {
			return driver.Open()
		},
		func(ctx context.Context, object *pool.PooledObject) error {
			return object.Object.(*boltConn).Close()
		},
		func(ctx context.Context, object *pool.PooledObject) bool {
			c := object.Object.(*boltConn)
			return c.state == connStateReady && c.pl.pending() == 0
		},
		nil,
		nil,
	)

	config := pool.NewDefaultPoolConfig()
	config.MaxTotal = driver.settings.PoolSize
	config.MaxIdle = driver.settings.PoolSize
	config.TestOnBorrow = true

	return &boltDriverPool{
		driver: driver,
		pool:   pool.NewObjectPool(ctx, factory, config),
	}, nil
}

func (p *boltDriverPool) Acquire(ctx context.Context) (Conn, error) {
	obj, err := p.pool.BorrowObject(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "An error occurred acquiring a connection from the pool")
	}
	return obj.(*boltConn), nil
}

func (p *boltDriverPool) Release(ctx context.Context, conn Conn) error {
	c, ok := conn.(*boltConn)
	if !ok {
		return errors.New("connection was not acquired from this pool")
	}

	if c.state == connStateFailed || c.state == connStateStreaming || c.tx != nil {
		if err := c.Reset(); err != nil {
			log.Infof("Destroying connection that could not be reset: %s", err)
			return p.pool.InvalidateObject(ctx, c)
		}
	}
	if c.state != connStateReady || c.pl.pending() > 0 {
		return p.pool.InvalidateObject(ctx, c)
	}
	if err := p.pool.ReturnObject(ctx, c); err != nil {
		return errors.Wrap(err, "An error occurred returning a connection to the pool")
	}
	return nil
}

func (p *boltDriverPool) Close(ctx context.Context) {
	p.pool.Close(ctx)
}
