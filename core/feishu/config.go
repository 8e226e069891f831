package feishu

// Config holds configuration for the Feishu Bitable API client.
type Config struct {
	// BaseURL is the Feishu Open Platform API base URL.
	BaseURL string `mapstructure:"base_url" default:"https://open.feishu.cn/open-apis"`
	// TimeoutSeconds is the per-request timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// WriteRatePerSecond caps record write calls per app credential.
	// Bitable write endpoints are rate-limited per app; the client
	// throttles before the remote does.
	WriteRatePerSecond int `mapstructure:"write_rate_per_second" default:"5"`
}
