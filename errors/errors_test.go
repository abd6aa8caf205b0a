package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			assert.Equal(t, test.expected, test.class.String())
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection timeout", ErrConnectionTimeout, true},
		{"connection lost", ErrConnectionLost, true},
		{"circuit open", ErrCircuitOpen, true},
		{"context deadline exceeded", context.DeadlineExceeded, true},
		{"context canceled", context.Canceled, true},
		{"no responders in message", fmt.Errorf("nats: no responders available for request"), true},
		{"invalid horn request", ErrInvalidHornRequest, false},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, IsTransient(test.err), "error: %v", test.err)
		})
	}
}

func TestIsInvalid(t *testing.T) {
	assert.True(t, IsInvalid(ErrMalformedBoolean))
	assert.True(t, IsInvalid(ErrUnknownTag))
	assert.True(t, IsInvalid(fmt.Errorf("wrapped: %w", ErrInvalidHornRequest)))
	assert.False(t, IsInvalid(ErrConnectionLost))
	assert.False(t, IsInvalid(nil))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(ErrInvalidConfig))
	assert.True(t, IsFatal(WrapFatal(fmt.Errorf("boom"), "Main", "run", "open session")))
	assert.False(t, IsFatal(ErrEmptyResponse))
	assert.False(t, IsFatal(nil))
}

func TestWrap_Format(t *testing.T) {
	err := Wrap(ErrEmptyResponse, "HornClient", "Deactivate", "await confirmation")
	require.Error(t, err)
	assert.Equal(t, "HornClient.Deactivate: await confirmation failed: empty response", err.Error())
	assert.True(t, Is(err, ErrEmptyResponse))
	assert.Nil(t, Wrap(nil, "a", "b", "c"))
}

func TestWrapClassified_PreservesChain(t *testing.T) {
	base := fmt.Errorf("dial tcp: refused")

	transient := WrapTransient(base, "Client", "Connect", "establish connection")
	var ce *ClassifiedError
	require.True(t, As(transient, &ce))
	assert.Equal(t, ErrorTransient, ce.Class)
	assert.Equal(t, "Client", ce.Component)
	assert.Equal(t, "Connect", ce.Operation)
	assert.True(t, Is(transient, base))

	// Classification survives another plain Wrap.
	outer := Wrap(WrapInvalid(ErrUnknownTag, "Bridge", "Handle", "parse tag"), "Bridge", "Run", "handle message")
	assert.Equal(t, ErrorInvalid, Classify(outer))

	assert.Nil(t, WrapTransient(nil, "a", "b", "c"))
	assert.Nil(t, WrapInvalid(nil, "a", "b", "c"))
	assert.Nil(t, WrapFatal(nil, "a", "b", "c"))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrorTransient, Classify(nil))
	assert.Equal(t, ErrorTransient, Classify(ErrConnectionTimeout))
	assert.Equal(t, ErrorFatal, Classify(ErrMissingConfig))
	assert.Equal(t, ErrorInvalid, Classify(ErrParsingFailed))
	assert.Equal(t, ErrorTransient, Classify(fmt.Errorf("something odd")))
}
