// internal/workers/documents/analyze-deck/config.go
package analyzedeck

import "time"

type Config struct {
	Timeout time.Duration
	// PlaceholderText stands in for deck content until file storage is wired.
	PlaceholderText string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         2 * time.Minute,
		PlaceholderText: "Document content would be fetched from storage here",
	}
}
