package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          int
	LogLevel      string
	HubSpotToken  string
	HubSpotURL    string
	OpenAIAPIKey  string
	OpenAIModel   string
	APIToken      string
	NatsURL       string
	NatsToken     string
	SlackBotToken string
	SlackChannel  string
	SearchLimit   int
}

func Load() Config {
	return Config{
		Port:          envInt("AGENT_PORT", 8780),
		LogLevel:      envStr("LOG_LEVEL", "info"),
		HubSpotToken:  envStr("HUBSPOT_TOKEN", ""),
		HubSpotURL:    envStr("HUBSPOT_URL", "https://api.hubapi.com"),
		OpenAIAPIKey:  envStr("OPENAI_API_KEY", ""),
		OpenAIModel:   envStr("AGENT_MODEL", "gpt-4o-mini"),
		APIToken:      envStr("AGENT_API_TOKEN", ""),
		NatsURL:       envStr("NATS_URL", ""),
		NatsToken:     envStr("NATS_TOKEN", ""),
		SlackBotToken: envStr("SLACK_BOT_TOKEN", ""),
		SlackChannel:  envStr("SLACK_INSIGHTS_CHANNEL", ""),
		SearchLimit:   envInt("AGENT_SEARCH_LIMIT", 100),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
