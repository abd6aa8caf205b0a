package rpc

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/message"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/natsclient"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/uri"
)

// Client invokes methods on remote services. A nil payload with a nil error
// means the service replied successfully without a body.
type Client interface {
	InvokeMethod(ctx context.Context, method uri.URI, opts CallOptions, payload *message.Payload) (*message.Payload, error)
}

// Requester sends one request and waits for one reply. *natsclient.Client
// satisfies it.
type Requester interface {
	Request(ctx context.Context, msg *nats.Msg) (*nats.Msg, error)
}

// NATSClient is a Client over NATS request/reply. It is safe for concurrent use.
type NATSClient struct {
	conn   Requester
	source uri.URI
	logger *slog.Logger
}

// NewNATSClient creates a client that identifies itself as source.
func NewNATSClient(conn Requester, source uri.URI, logger *slog.Logger) *NATSClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSClient{
		conn:   conn,
		source: source,
		logger: logger.With("component", "rpc-client"),
	}
}

// InvokeMethod sends payload to method and waits at most opts.TTL for the reply.
func (c *NATSClient) InvokeMethod(
	ctx context.Context, method uri.URI, opts CallOptions, payload *message.Payload,
) (*message.Payload, error) {
	if err := opts.Validate(); err != nil {
		return nil, &Error{Code: CodeInvalidArgument, Message: "invalid call options", Err: err}
	}

	msg := nats.NewMsg(method.Subject())
	msg.Header.Set(message.HeaderID, message.NewID())
	msg.Header.Set(message.HeaderTTL, message.FormatTTL(opts.TTL))
	msg.Header.Set(message.HeaderPriority, string(opts.priority()))
	msg.Header.Set(message.HeaderSource, c.source.String())
	if opts.Token != "" {
		msg.Header.Set(message.HeaderToken, opts.Token)
	}
	if !payload.IsEmpty() {
		msg.Header.Set(message.HeaderContentType, string(payload.Format))
		msg.Data = payload.Data
	}

	ctx, cancel := context.WithTimeout(ctx, opts.TTL)
	defer cancel()

	c.logger.Debug("Invoking method",
		"method", method.String(),
		"id", msg.Header.Get(message.HeaderID),
		"ttl", opts.TTL)

	reply, err := c.conn.Request(ctx, msg)
	if err != nil {
		return nil, transportError(err)
	}

	return decodeReply(reply)
}

func transportError(err error) *Error {
	switch {
	case stderrors.Is(err, nats.ErrNoResponders):
		return &Error{Code: CodeUnavailable, Message: "no service is listening", Err: err}
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, nats.ErrTimeout):
		return &Error{Code: CodeDeadlineExceeded, Message: "no reply within ttl", Err: err}
	case stderrors.Is(err, context.Canceled):
		return &Error{Code: CodeCancelled, Err: err}
	case stderrors.Is(err, natsclient.ErrNotConnected),
		stderrors.Is(err, nats.ErrConnectionClosed),
		stderrors.Is(err, nats.ErrDisconnected):
		return &Error{Code: CodeUnavailable, Message: "transport unavailable", Err: err}
	default:
		return &Error{Code: CodeInternal, Err: err}
	}
}

func decodeReply(reply *nats.Msg) (*message.Payload, error) {
	if code := parseUCode(reply.Header.Get(message.HeaderCommStatus)); code != CodeOK {
		return nil, &Error{Code: code, Message: reply.Header.Get(message.HeaderCommStatusMsg)}
	}

	if len(reply.Data) == 0 {
		return nil, nil
	}

	format, err := message.ParseFormat(reply.Header.Get(message.HeaderContentType))
	if err != nil {
		return nil, &Error{Code: CodeInternal, Message: "unreadable reply", Err: err}
	}

	return &message.Payload{Data: reply.Data, Format: format}, nil
}
