// Package testutil provides test doubles shared by the horn packages.
//
// MockNATSClient is an in-memory stand-in for *natsclient.Client that
// supports headers, subscriptions and request/reply, so RPC clients and
// servers can be wired together without a NATS server. Published messages are
// kept for inspection:
//
//	conn := testutil.NewMockNATSClient()
//	server := rpc.NewServer(conn, nil)
//	client := rpc.NewNATSClient(conn, source, nil)
//
// MockRPCClient records method invocations and returns canned results.
//
// LogRecorder is a slog.Handler that keeps every record so tests can assert
// on log levels and messages:
//
//	rec := testutil.NewLogRecorder()
//	component := New(rec.Logger())
//	...
//	assert.Equal(t, 1, rec.Count(slog.LevelError))
//
// Integration tests use a real NATS server through testcontainers instead;
// see natsclient.NewTestClient.
package testutil
