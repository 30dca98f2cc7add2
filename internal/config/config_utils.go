package config

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// applyFallbacks fills in values that defaults alone cannot express, after
// unmarshaling and before validation.
func (c *Config) applyFallbacks() {
	// Viper cannot split a comma-separated env value into a slice, so
	// JOBMATCHER_SERVER_APIKEYS is handled by hand.
	if len(c.Server.APIKeys) == 0 {
		if raw := os.Getenv("JOBMATCHER_SERVER_APIKEYS"); raw != "" {
			keys := strings.Split(raw, ",")
			for i, key := range keys {
				keys[i] = strings.TrimSpace(key)
			}
			c.Server.APIKeys = keys
		}
	}

	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}

	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = serviceInstanceID(c.Observability.ServiceName)
	}
	// Debug log level implies console span/metric output unless set.
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

func serviceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// logConfigurationSources prints where the effective configuration came
// from. API keys are counted, never printed.
func (c *Config) logConfigurationSources(configFileUsed string) {
	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: none (defaults and environment)")
	}

	overrides := []string{
		"JOBMATCHER_SERVER_PORT",
		"JOBMATCHER_SERVER_HOST",
		"JOBMATCHER_SERVER_APIKEYS",
		"JOBMATCHER_APP_LOGLEVEL",
		"JOBMATCHER_APP_DEFAULTFORMAT",
		"JOBMATCHER_OBSERVABILITY_ENABLED",
	}
	for _, name := range overrides {
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(name), "key") {
			value = "***MASKED***"
		}
		log.Printf("[CONFIG]   %s=%s", name, value)
	}

	log.Printf("[CONFIG] Listening on %s:%s, log level %s, default format %s",
		c.Server.Host, c.Server.Port, c.App.LogLevel, c.App.DefaultFormat)
	log.Printf("[CONFIG] TLS mode %s, rate limiting %t, observability %t, %d API key(s)",
		c.Server.TLS.Mode, c.Server.RateLimit.Enabled, c.Observability.Enabled, len(c.Server.APIKeys))
}
