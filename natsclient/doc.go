// Package natsclient manages the NATS session shared by the horn client, the
// software horn and the horn service.
//
// The Client wraps nats.go with a circuit breaker for connection attempts,
// health monitoring and status callbacks, and exposes the three bus primitives
// the rest of the module needs:
//
//   - PublishMsg: fire a message with headers (attachment tags, RPC attributes)
//   - SubscribeSync / Subscription.Next: drain a subject one message at a time in arrival order
//   - Request: request/reply bounded by the caller's context
//
// Basic usage:
//
//	client, err := natsclient.NewClient("nats://localhost:4222",
//	    natsclient.WithName("software-horn"),
//	    natsclient.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	sub, err := client.SubscribeSync("Vehicle/Body/Horn/IsActive")
//	for {
//	    msg, err := sub.Next(ctx)
//	    ...
//	}
//
// Circuit breaker: after a threshold of consecutive connection failures
// (default 5) the circuit opens and Connect fails fast with ErrCircuitOpen
// until the backoff elapses. Backoff doubles per round up to WithMaxBackoff.
package natsclient
