// Package module defines the lifecycle interface OLTWatch modules implement
// and the registry that drives them.
package module

import (
	"context"
	"net/http"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Route represents an HTTP route exposed by a module. Path is relative to
// the module's mount point (/api/v1/{module}).
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

// Module is the interface all OLTWatch modules implement.
type Module interface {
	// Name returns the module's unique identifier (e.g., "oltsync", "probe").
	Name() string

	// Version returns the module's semantic version.
	Version() string

	// Init initializes the module with its scoped configuration and logger.
	Init(config *viper.Viper, logger *zap.Logger) error

	// Start begins the module's background operations.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the module.
	Stop() error

	// Routes returns the HTTP routes this module exposes.
	Routes() []Route
}
