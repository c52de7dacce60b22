package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/url"
	"slices"
)

type InitFunc func(dsn string, logger *slog.Logger) (Driver, error)

var drivers = map[string]InitFunc{}

func Add(driverName string, init InitFunc) {
	drivers[driverName] = init
}

// Each visits the registered drivers in name order.
func Each(f func(string, InitFunc)) {
	for _, name := range slices.Sorted(maps.Keys(drivers)) {
		f(name, drivers[name])
	}
}

// GetFromDSN picks the driver registered for the DSN scheme.
func GetFromDSN(dsn string) (InitFunc, bool) {
	uri, err := url.Parse(dsn)
	if err != nil {
		return nil, false
	}

	init, ok := drivers[uri.Scheme]

	return init, ok
}

// Open initialises the driver named by the DSN scheme.
func Open(dsn string, logger *slog.Logger) (Driver, error) {
	init, found := GetFromDSN(dsn)
	if !found {
		return nil, fmt.Errorf("could not get storage driver: %w", errors.ErrUnsupported)
	}

	driver, err := init(dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("could not create storage client: %w", err)
	}

	return driver, nil
}
