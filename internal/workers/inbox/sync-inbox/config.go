// internal/workers/inbox/sync-inbox/config.go
package syncinbox

import "time"

type Config struct {
	Timeout       time.Duration
	DefaultQuery  string
	MaxResults    int64
	AlertPriority bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       5 * time.Minute,
		DefaultQuery:  "is:unread",
		MaxResults:    50,
		AlertPriority: true,
	}
}
