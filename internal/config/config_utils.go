package config

import (
	"log"
	"os"
	"strings"
)

// applyFallbacks fills gaps viper cannot express: legacy environment
// variables and defaults that depend on other settings
func (c *Config) applyFallbacks() {
	// Plain GEMINI_API_KEY, kept for earlier deployments
	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if len(c.Server.APIKeys) == 0 {
		if raw := os.Getenv("CAREERCATALYST_SERVER_APIKEYS"); raw != "" {
			keys := strings.Split(raw, ",")
			for i := range keys {
				keys[i] = strings.TrimSpace(keys[i])
			}
			c.Server.APIKeys = keys
		}
	}

	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = serviceInstanceID(c.Observability.ServiceName)
	}
	// Debug runs get console traces without extra flags
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// serviceInstanceID derives an instance identifier from the hostname
func serviceInstanceID(serviceName string) string {
	hostname, err := os.Hostname()
	if err != nil {
		return serviceName + "-1"
	}
	return serviceName + "-" + hostname
}

// watchedEnvVars are the variables reported in the startup summary
var watchedEnvVars = []string{
	"CAREERCATALYST_AI_APIKEY",
	"CAREERCATALYST_AI_PROVIDER",
	"CAREERCATALYST_AI_MODEL",
	"CAREERCATALYST_SERVER_PORT",
	"CAREERCATALYST_SERVER_HOST",
	"CAREERCATALYST_APP_LOGLEVEL",
	"CAREERCATALYST_VAULT_ENABLED",
	"GEMINI_API_KEY", // legacy
}

// logConfigurationSources prints where the effective configuration came
// from, with secrets masked
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	log.Println("[CONFIG] Environment variables:")
	anySet := false
	for _, name := range watchedEnvVars {
		value := os.Getenv(name)
		if value == "" {
			continue
		}
		anySet = true
		if strings.Contains(strings.ToLower(name), "key") {
			log.Printf("[CONFIG]   %s=***MASKED***", name)
		} else {
			log.Printf("[CONFIG]   %s=%s", name, value)
		}
	}
	if !anySet {
		log.Println("[CONFIG]   None set")
	}

	apiKeyState := "***NOT SET*** (fallback analysis only)"
	if c.AI.APIKey != "" {
		apiKeyState = "***CONFIGURED***"
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] AI Provider: %s", c.AI.Provider)
	log.Printf("[CONFIG] AI Model: %s", c.AI.Model)
	log.Printf("[CONFIG] AI API Key: %s", apiKeyState)
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] TLS Mode: %s", c.Server.TLS.Mode)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)

	log.Println("[CONFIG] === Operation-Specific AI Configurations ===")
	log.Printf("[CONFIG] Analyze - Provider: %s, Model: %s", c.AI.Analyze.Provider, c.AI.Analyze.Model)
	log.Printf("[CONFIG] Assistant - Provider: %s, Model: %s", c.AI.Assistant.Provider, c.AI.Assistant.Model)

	log.Println("[CONFIG] =====================================")
}
