// internal/workers/deals/search-deals/config.go
package searchdeals

import "time"

type Config struct {
	Timeout  time.Duration
	MaxLimit int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  15 * time.Second,
		MaxLimit: 100,
	}
}
