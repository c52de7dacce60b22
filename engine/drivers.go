package engine

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

func Get(driverName string) (InitFunc, bool) {
	init, ok := drivers[driverName]

	return init, ok
}

// GetFromDSN accepts either a bare driver name ("docker") or a DSN ("docker://?host=...").
func GetFromDSN(dsn string) (InitFunc, bool) {
	uri, err := url.Parse(dsn)
	if err != nil {
		return nil, false
	}

	driverName := uri.Scheme
	if driverName == "" {
		driverName = uri.Path
	}

	return Get(driverName)
}

// Open initialises the driver named by the DSN.
func Open(dsn string, logger *slog.Logger) (Driver, error) {
	init, found := GetFromDSN(dsn)
	if !found {
		return nil, fmt.Errorf("could not get engine driver: %w", errors.ErrUnsupported)
	}

	driver, err := init(dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("could not create engine client: %w", err)
	}

	return driver, nil
}
