package config

import (
	"reflect"
	"strings"

	"douban2feishu/core/cache"
	"douban2feishu/core/database"
	"douban2feishu/core/feishu"
	"douban2feishu/core/logger"
	"douban2feishu/core/server"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the MySQL connection (mapping store, history).
	Database database.Config `mapstructure:"database"`
	// Cache holds configuration for the Redis fast store.
	Cache cache.Config `mapstructure:"cache"`
	// Feishu holds configuration for the Bitable API client.
	Feishu feishu.Config `mapstructure:"feishu"`
	// Sync holds tuning knobs for the sync engine.
	Sync SyncConfig `mapstructure:"sync"`
}

// SyncConfig holds tuning knobs for the sync engine.
type SyncConfig struct {
	// WriteBatchSize is the maximum number of records per batch write call.
	WriteBatchSize int `mapstructure:"write_batch_size" default:"100"`
	// PageSize is the page size used when fetching existing records.
	PageSize int `mapstructure:"page_size" default:"500"`
	// Concurrency is the number of write batches allowed in flight.
	Concurrency int `mapstructure:"concurrency" default:"3"`
	// StateTTLSeconds is the TTL of the soft sync-state record in the cache.
	StateTTLSeconds int `mapstructure:"state_ttl_seconds" default:"600"`
	// MappingTTLMinutes is the TTL of cached field mappings.
	MappingTTLMinutes int `mapstructure:"mapping_ttl_minutes" default:"30"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// Load .env file if it exists; ignore the error in production setups.
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. FEISHU_BASE_URL -> feishu.base_url)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
