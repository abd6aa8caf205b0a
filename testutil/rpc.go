package testutil

import (
	"context"
	"sync"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/message"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/rpc"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/uri"
)

// RPCCall is one recorded invocation.
type RPCCall struct {
	Method  uri.URI
	Options rpc.CallOptions
	Payload *message.Payload
}

// MockRPCClient implements rpc.Client. InvokeFunc decides the result; when it
// is nil every call succeeds with an empty response.
type MockRPCClient struct {
	mu         sync.Mutex
	InvokeFunc func(ctx context.Context, method uri.URI, opts rpc.CallOptions, payload *message.Payload) (*message.Payload, error)
	calls      []RPCCall
}

// NewMockRPCClient creates a mock that answers every call with fn.
func NewMockRPCClient(fn func(ctx context.Context, method uri.URI, opts rpc.CallOptions, payload *message.Payload) (*message.Payload, error)) *MockRPCClient {
	return &MockRPCClient{InvokeFunc: fn}
}

// InvokeMethod records the call and delegates to InvokeFunc.
func (m *MockRPCClient) InvokeMethod(
	ctx context.Context, method uri.URI, opts rpc.CallOptions, payload *message.Payload,
) (*message.Payload, error) {
	m.mu.Lock()
	m.calls = append(m.calls, RPCCall{Method: method, Options: opts, Payload: payload})
	fn := m.InvokeFunc
	m.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(ctx, method, opts, payload)
}

// Calls returns the recorded invocations in order.
func (m *MockRPCClient) Calls() []RPCCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RPCCall(nil), m.calls...)
}
