// Package database handles the MySQL connection used by the sync service.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly configure
// MySQL connections based on the application's configuration. The database backs the
// persisted field-mapping store and the durable sync history; it is not involved in
// the per-run diffing, which happens entirely in memory.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
