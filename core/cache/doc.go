// Package cache provides the Redis-backed fast store.
//
// It wraps the go-redis client behind a small Store interface so that
// features (field-mapping cache, sync-state tracker) can be tested against
// a mock without a running Redis.
//
// # Semantics
//
// A missing key is reported as ErrMiss rather than a driver-specific error.
// JSON helpers (GetJSON/SetJSON) cover the common case of storing small
// structured records with a TTL.
//
// # Usage
//
//	store, err := cache.NewClient(cfg.Cache, logg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = store.SetJSON(ctx, "sync:state:u1:app:tbl", state, 10*time.Minute)
package cache
