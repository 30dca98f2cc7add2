package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults registers the default value for every configuration key.
// Keys are grouped by top-level section; a key absent here is invisible to
// AutomaticEnv, so every mapstructure field needs an entry.
func setDefaults(v *viper.Viper) {
	for _, group := range []map[string]any{serverDefaults, appDefaults, observabilityDefaults} {
		for key, value := range group {
			v.SetDefault(key, value)
		}
	}
}

var serverDefaults = map[string]any{
	"server.host":         "localhost",
	"server.port":         "8080",
	"server.readTimeout":  30 * time.Second,
	"server.writeTimeout": 30 * time.Second,
	"server.idleTimeout":  120 * time.Second,

	"server.tls.mode":               "disabled",
	"server.tls.certFile":           "",
	"server.tls.keyFile":            "",
	"server.tls.caFile":             "",
	"server.tls.minVersion":         "1.2",
	"server.tls.cipherSuites":       []string{},
	"server.tls.clientAuthPolicy":   "require",
	"server.tls.insecureSkipVerify": false,
	"server.tls.serverName":         "",

	"server.tls.autoReload.enabled":                   true,
	"server.tls.autoReload.checkInterval":             30 * time.Second,
	"server.tls.autoReload.maxRetries":                3,
	"server.tls.autoReload.retryDelay":                10 * time.Second,
	"server.tls.autoReload.fileWatcher.enabled":       true,
	"server.tls.autoReload.fileWatcher.debounceDelay": time.Second,

	"server.apiKeys": []string{},

	"server.rateLimit.enabled":        false,
	"server.rateLimit.requestsPerMin": 60,
	"server.rateLimit.burstCapacity":  10,
	"server.rateLimit.byIP":           true,
	"server.rateLimit.byAPIKey":       false,
}

var appDefaults = map[string]any{
	"app.logLevel":         "info",
	"app.defaultFormat":    "json",
	"app.supportedFormats": []string{"json", "text", "markdown"},
	"app.maxFileSize":      10 * 1024 * 1024, // resumes arrive as PDF/DOCX
	"app.maxJobCount":      100,
}

var observabilityDefaults = map[string]any{
	"observability.enabled":         true,
	"observability.serviceName":     "jobmatcher",
	"observability.serviceVersion":  "", // falls back to the app version
	"observability.serviceInstance": "", // generated at startup when empty
	"observability.consoleOutput":   false,
	"observability.sampleRate":      1.0,

	"observability.tracing.enabled":    true,
	"observability.tracing.sampleRate": 1.0,

	"observability.metrics.enabled":            true,
	"observability.metrics.collectionInterval": 15 * time.Second,

	"observability.customMetrics.pipeline.enabled":                  true,
	"observability.customMetrics.pipeline.trackDuration":            true,
	"observability.customMetrics.pipeline.trackStages":              true,
	"observability.customMetrics.businessMetrics.enabled":           true,
	"observability.customMetrics.businessMetrics.trackSuccessRates": true,
	"observability.customMetrics.businessMetrics.trackContentSizes": true,
	"observability.customMetrics.infrastructure.enabled":            true,
	"observability.customMetrics.infrastructure.trackRateLimits":    true,
	"observability.customMetrics.infrastructure.trackCertExpiry":    true,

	"observability.console.enabled":     false,
	"observability.console.prettyPrint": true,

	"observability.prometheus.enabled":  true,
	"observability.prometheus.endpoint": "/metrics",
	"observability.prometheus.port":     "9090",

	"observability.otlp.enabled":  false,
	"observability.otlp.endpoint": "http://localhost:4318",
	"observability.otlp.insecure": true,
	"observability.otlp.headers":  map[string]string{},

	"observability.healthCheck.timeout":            15 * time.Second,
	"observability.healthCheck.taggerCheckTimeout": 5 * time.Second,
}
