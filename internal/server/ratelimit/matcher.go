package ratelimit

import (
	"net/http"
	"strings"
)

// unlimited is returned for health checks.
var unlimited = EndpointConfig{Path: "/health"}

// MatchEndpoint returns the configuration for a request, or nil to use the default limit.
// Exact paths win over prefixes; the longest matching prefix wins among prefixes.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && (method == http.MethodGet || method == http.MethodHead) {
		match := unlimited
		return &match
	}

	var best *EndpointConfig
	for i := range configs {
		config := &configs[i]
		if config.Method != method {
			continue
		}
		if config.Path == path {
			return config
		}
		if strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) {
			if best == nil || len(config.Path) > len(best.Path) {
				best = config
			}
		}
	}
	return best
}
