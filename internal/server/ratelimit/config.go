package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig limits one route
type EndpointConfig struct {
	Path   string // exact path, or a prefix when it ends with "/"
	Method string
	Limit  int // requests per Window; 0 means unlimited
	Window time.Duration
	Burst  int // defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused bucket is kept
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds the tracker's limits: a per-minute default for every route and a
// stricter hourly limit on analysis, which reaches the LLM.
func NewConfig(enabled bool, perMinute, analyzePerHour int, whitelist []string) *Config {
	return &Config{
		Enabled:         enabled,
		DefaultLimit:    perMinute,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       ParseIPList(strings.Join(whitelist, ",")),
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(analyzePerHour),
	}
}

// DefaultEndpointConfigs returns the route-specific limits
func DefaultEndpointConfigs(analyzePerHour int) []EndpointConfig {
	burst := analyzePerHour / 10
	if burst < 1 {
		burst = 1
	}
	return []EndpointConfig{
		{Path: "/analyze", Method: "POST", Limit: analyzePerHour, Window: time.Hour, Burst: burst},
		{Path: "/export", Method: "GET", Limit: 30, Window: time.Minute, Burst: 5},
	}
}

// ParseIPList parses a comma-separated list of IP addresses into a set
func ParseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
