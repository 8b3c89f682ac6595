package config

import (
	"fmt"
	"os"

	"uptask/internal/gateway"
	"uptask/internal/gateway/gormstore"
	"uptask/internal/gateway/sqlite"
)

// CreateGateway opens the gateway selected by config.Gateway.Driver, creating the
// database directory when needed
func CreateGateway(config *Config) (gateway.Gateway, error) {
	if err := os.MkdirAll(config.Gateway.Dir, os.FileMode(config.Gateway.DirPermissions)); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbPath := config.GetDatabasePath()

	var (
		gw  gateway.Gateway
		err error
	)
	switch config.Gateway.Driver {
	case DriverGorm:
		gw, err = gormstore.New(gormstore.Options{DSN: dbPath, QueryTimeout: config.GetQueryTimeout()})
	case DriverSQLite, "":
		gw, err = sqlite.New(sqlite.Options{Path: dbPath, QueryTimeout: config.GetQueryTimeout()})
	default:
		return nil, &ConfigError{Field: "gateway.driver", Message: fmt.Sprintf("unknown driver %q", config.Gateway.Driver)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return gw, nil
}

// CreateTestGateway creates an in-memory gateway for testing
func CreateTestGateway() (gateway.Gateway, error) {
	gw, err := sqlite.New(sqlite.Options{Path: ":memory:"})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}
	return gw, nil
}
