// Package config provides configuration management for the sync service.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL connection details (mapping store, sync history)
//   - Cache: Redis connection details (mapping cache, sync state)
//   - Feishu: Bitable API endpoint and rate limits
//   - Sync: batch sizes, concurrency, and TTLs for the sync engine
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
