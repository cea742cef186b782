// internal/workers/deals/draft-pass-email/config.go
package draftpassemail

import "time"

type Config struct {
	Timeout       time.Duration
	SubjectFormat string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       90 * time.Second,
		SubjectFormat: "Thoughts on %s",
	}
}
