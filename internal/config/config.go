// Package config loads the proxy's startup configuration from a
// key/value mapping (spec.md §6: "A mapping with keys proxy.host,
// proxy.port; loading failure is fatal").
package config

import (
	"fmt"
	"strconv"
)

const (
	KeyHost = "proxy.host"
	KeyPort = "proxy.port"

	DefaultHost = "0.0.0.0"
	DefaultPort = 60000
)

type Config struct {
	Host string
	Port int
}

// Load reads Host/Port out of a generic key/value mapping. A missing
// proxy.host falls back to DefaultHost; a missing proxy.port falls back
// to DefaultPort. A present-but-unparseable proxy.port is a configError
// and is fatal to the caller.
func Load(values map[string]string) (Config, error) {
	cfg := Config{Host: DefaultHost, Port: DefaultPort}

	if host, ok := values[KeyHost]; ok && host != "" {
		cfg.Host = host
	}

	if portStr, ok := values[KeyPort]; ok && portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid %s %q: %w", KeyPort, portStr, err)
		}
		cfg.Port = port
	}

	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
