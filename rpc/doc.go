// Package rpc carries horn service method invocations over NATS request/reply.
//
// A method is addressed by a uri.URI; requests are published on the URI's NATS
// subject with metadata headers:
//
//	up-id          time-ordered message id (UUIDv7)
//	up-ttl         request time-to-live in milliseconds
//	up-priority    class of service, CS4 for horn commands
//	up-source      URI of the calling entity
//	Content-Type   payload format, CBOR when absent
//
// Replies carry up-commstatus (a UCode) and an optional up-commstatus-message.
// A reply with a non-OK status surfaces to the caller as *Error. Transport
// failures are mapped onto codes as well: no responders becomes UNAVAILABLE and
// an expired TTL becomes DEADLINE_EXCEEDED.
//
// NATSClient implements Client for callers; Server dispatches incoming
// requests to registered Handlers and writes the reply.
package rpc
