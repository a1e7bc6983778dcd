// Package config handles configuration loading for bridge-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${BRIDGE_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	gateway:
//	  upstream_timeout: "30s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"   # MCP gateway and admin API
//
// Database:
//
//	database:
//	  path: "/var/lib/bridge-gateway/gateway.db"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${BRIDGE_JWT_SECRET}"   # Admin API tokens
//
// Upstream calls:
//
//	gateway:
//	  upstream_timeout: "30s"
//	  user_agent: "bridge-gateway/1.0"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load("/etc/bridge-gateway/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
