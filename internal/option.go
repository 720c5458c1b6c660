package internal

import "github.com/starford/dagaz/internal/gateway"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	gateway gateway.Provider
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithGateway injects a calendar provider, overriding the configured one.
func WithGateway(p gateway.Provider) Option {
	return func(a *application) {
		a.gateway = p
	}
}
