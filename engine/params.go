package engine

import (
	"fmt"
	"net/url"
	"os"
)

// ParseParams returns the query parameters of a driver DSN.
func ParseParams(dsn string) (map[string]string, error) {
	uri, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("could not parse engine DSN: %w", err)
	}

	params := map[string]string{}
	for key, values := range uri.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	return params, nil
}

// GetParam retrieves a parameter from the params map, falling back to an environment variable if not found.
// Returns the parameter value, or the provided default if neither the param nor env var exist.
func GetParam(params map[string]string, key, envVar, defaultValue string) string {
	if value := params[key]; value != "" {
		return value
	}

	if envVar != "" {
		if value := os.Getenv(envVar); value != "" {
			return value
		}
	}

	return defaultValue
}
