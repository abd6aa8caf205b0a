// Package app holds the process bootstrap shared by the horn binaries:
// common flags with environment fallback, logger setup, configuration
// loading and the NATS session with its metrics endpoint.
package app
