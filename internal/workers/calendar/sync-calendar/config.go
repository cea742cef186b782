// internal/workers/calendar/sync-calendar/config.go
package synccalendar

import "time"

type Config struct {
	Timeout       time.Duration
	DefaultWindow time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       2 * time.Minute,
		DefaultWindow: 30 * 24 * time.Hour,
	}
}
