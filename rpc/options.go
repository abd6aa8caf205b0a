package rpc

import (
	"fmt"
	"time"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
)

// CallOptions controls a single method invocation.
type CallOptions struct {
	// TTL bounds the whole call. Required.
	TTL time.Duration
	// Priority defaults to CS4 when empty.
	Priority Priority
	// Token is an optional access token forwarded in up-token.
	Token string
}

// ForRequest returns options for a request with the given TTL at priority CS4.
func ForRequest(ttl time.Duration) CallOptions {
	return CallOptions{TTL: ttl, Priority: PriorityCS4}
}

// Validate checks the options before anything is sent.
func (o CallOptions) Validate() error {
	if o.TTL <= 0 {
		return errors.WrapInvalid(fmt.Errorf("%w: ttl must be positive, got %s", errors.ErrInvalidConfig, o.TTL),
			"CallOptions", "Validate", "check ttl")
	}
	if o.Priority != "" && !o.Priority.Valid() {
		return errors.WrapInvalid(fmt.Errorf("%w: unknown priority %q", errors.ErrInvalidConfig, o.Priority),
			"CallOptions", "Validate", "check priority")
	}
	return nil
}

func (o CallOptions) priority() Priority {
	if o.Priority == "" {
		return PriorityCS4
	}
	return o.Priority
}
