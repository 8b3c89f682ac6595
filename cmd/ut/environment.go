package main

import (
	"os"

	"uptask/internal/cli"
	"uptask/internal/config"
	"uptask/internal/gateway"
)

// Environment represents the current environment
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// GatewayFactory opens gateways based on environment
type GatewayFactory struct {
	env Environment
}

// NewGatewayFactory creates a new gateway factory for the given environment
func NewGatewayFactory(env Environment) *GatewayFactory {
	return &GatewayFactory{env: env}
}

// Opener returns the gateway opener the CLI calls once configuration is loaded
func (gf *GatewayFactory) Opener() cli.GatewayOpener {
	switch gf.env {
	case Development:
		return gf.openDevelopment
	case Testing:
		return gf.openTesting
	default:
		return config.CreateGateway
	}
}

// openDevelopment keeps the database next to the working directory
func (gf *GatewayFactory) openDevelopment(cfg *config.Config) (gateway.Gateway, error) {
	local := *cfg
	local.Gateway.Dir = "."
	return config.CreateGateway(&local)
}

// openTesting uses an in-memory database that vanishes on exit
func (gf *GatewayFactory) openTesting(*config.Config) (gateway.Gateway, error) {
	return config.CreateTestGateway()
}

// getEnvironment reads UT_ENV, defaulting to production
func getEnvironment() Environment {
	switch Environment(os.Getenv("UT_ENV")) {
	case Development:
		return Development
	case Testing:
		return Testing
	default:
		return Production
	}
}
