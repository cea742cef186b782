// internal/workers/ai-conversation/assistant-chat/config.go
package assistantchat

import "time"

type Config struct {
	Timeout       time.Duration
	DefaultUserID string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       90 * time.Second,
		DefaultUserID: "default-user",
	}
}
