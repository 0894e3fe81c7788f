package database

import (
	"context"
	"fmt"

	"cropadvisor/config"

	"github.com/valkey-io/valkey-go"
)

// Valkey database indexes
const (
	// GENERAL_CACHE_INDEX (DB 0) - miscellaneous cache entries
	GENERAL_CACHE_INDEX = iota

	// USER_CACHE_INDEX (DB 1) - per user data such as recommendation history
	// and registered datasets
	USER_CACHE_INDEX
)

type CacheClient valkey.Client

// Cache holds one client per logical database. Clients are nil when no
// cache address is configured and callers must fall back to the database.
type Cache struct {
	General CacheClient
	User    CacheClient
}

func (c Cache) Enabled() bool {
	return c.User != nil
}

func (c Cache) Close() {
	if c.General != nil {
		c.General.Close()
	}
	if c.User != nil {
		c.User.Close()
	}
}

// Ping checks the general client. A cache that was never configured is
// treated as healthy.
func (c Cache) Ping(ctx context.Context) error {
	if c.General == nil {
		return nil
	}
	return c.General.Do(ctx, c.General.B().Ping().Build()).Error()
}

func (s *DB) FlushAllCaches(ctx context.Context) error {
	log := s.log.Function("FlushAllCaches")

	for name, client := range map[string]CacheClient{
		"general": s.Cache.General,
		"user":    s.Cache.User,
	} {
		if client == nil {
			continue
		}
		if err := client.Do(ctx, client.B().Flushdb().Build()).Error(); err != nil {
			return log.Err("failed to flush cache database", err, "cache", name)
		}
		log.Info("Flushed cache database", "cache", name)
	}

	return nil
}

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		log.Warn("cache address or port is empty, running without cache")
		return nil
	}

	log.Info("initializing cache database", "address", address, "port", port)
	initAddress := []string{fmt.Sprintf("%s:%d", address, port)}

	general, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: initAddress,
		SelectDB:    GENERAL_CACHE_INDEX,
	})
	if err != nil {
		return log.Err("failed to create general valkey client", err)
	}

	user, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: initAddress,
		SelectDB:    USER_CACHE_INDEX,
	})
	if err != nil {
		general.Close()
		return log.Err("failed to create user valkey client", err)
	}

	s.Cache = Cache{General: general, User: user}
	return nil
}
