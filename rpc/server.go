package rpc

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/message"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/uri"
)

// Request is an incoming method invocation.
type Request struct {
	Method   uri.URI
	ID       string
	Source   string
	TTL      time.Duration
	Priority Priority
	Payload  *message.Payload
}

// Handler serves one method. Returning a nil payload sends an empty OK reply;
// returning an *Error sends its code. Any other error is reported as INTERNAL.
type Handler func(ctx context.Context, req *Request) (*message.Payload, error)

// Transport is the subset of *natsclient.Client the server needs.
type Transport interface {
	Subscribe(ctx context.Context, subject string, handler func(context.Context, *nats.Msg)) error
	PublishMsg(ctx context.Context, msg *nats.Msg) error
}

// Server dispatches requests arriving on method subjects to handlers.
type Server struct {
	conn    Transport
	logger  *slog.Logger
	limiter *rate.Limiter
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRateLimit caps accepted requests across all methods. Requests over the
// limit are answered with RESOURCE_EXHAUSTED without reaching the handler.
func WithRateLimit(perSecond float64, burst int) ServerOption {
	return func(s *Server) {
		if perSecond <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewServer creates a server on conn.
func NewServer(conn Transport, logger *slog.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		conn:   conn,
		logger: logger.With("component", "rpc-server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register starts serving method with handler until ctx is cancelled or the
// connection closes.
func (s *Server) Register(ctx context.Context, method uri.URI, handler Handler) error {
	if handler == nil {
		return errors.WrapInvalid(fmt.Errorf("nil handler for %s", method), "Server", "Register", "register handler")
	}

	err := s.conn.Subscribe(ctx, method.Subject(), func(ctx context.Context, msg *nats.Msg) {
		s.serve(ctx, method, handler, msg)
	})
	if err != nil {
		return errors.Wrap(err, "Server", "Register", fmt.Sprintf("subscribe to %s", method))
	}

	s.logger.Info("Registered method", "method", method.String(), "subject", method.Subject())
	return nil
}

func (s *Server) serve(ctx context.Context, method uri.URI, handler Handler, msg *nats.Msg) {
	if msg.Reply == "" {
		s.logger.Warn("Dropping request without reply subject", "method", method.String())
		return
	}

	if s.limiter != nil && !s.limiter.Allow() {
		s.logger.Warn("Rejecting request over rate limit", "method", method.String())
		s.reply(ctx, msg.Reply, nil, &Error{Code: CodeResourceExhausted, Message: "rate limit exceeded"})
		return
	}

	req, rpcErr := newRequest(method, msg)
	if rpcErr != nil {
		s.reply(ctx, msg.Reply, nil, rpcErr)
		return
	}

	hctx := ctx
	if req.TTL > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, req.TTL)
		defer cancel()
	}

	payload, err := handler(hctx, req)
	if err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			e = &Error{Code: CodeInternal, Message: err.Error(), Err: err}
		}
		s.logger.Warn("Method failed",
			"method", method.String(), "id", req.ID, "code", e.Code.String(), "error", err)
		s.reply(ctx, msg.Reply, nil, e)
		return
	}

	s.reply(ctx, msg.Reply, payload, nil)
}

func newRequest(method uri.URI, msg *nats.Msg) (*Request, *Error) {
	req := &Request{
		Method:   method,
		ID:       msg.Header.Get(message.HeaderID),
		Source:   msg.Header.Get(message.HeaderSource),
		TTL:      message.ParseTTL(msg.Header.Get(message.HeaderTTL)),
		Priority: Priority(msg.Header.Get(message.HeaderPriority)),
	}

	if len(msg.Data) > 0 {
		format, err := message.ParseFormat(msg.Header.Get(message.HeaderContentType))
		if err != nil {
			return nil, &Error{Code: CodeInvalidArgument, Message: "unsupported payload format", Err: err}
		}
		req.Payload = &message.Payload{Data: msg.Data, Format: format}
	}

	return req, nil
}

func (s *Server) reply(ctx context.Context, subject string, payload *message.Payload, rpcErr *Error) {
	msg := nats.NewMsg(subject)
	msg.Header.Set(message.HeaderID, message.NewID())

	if rpcErr != nil {
		msg.Header.Set(message.HeaderCommStatus, strconv.Itoa(int(rpcErr.Code)))
		if rpcErr.Message != "" {
			msg.Header.Set(message.HeaderCommStatusMsg, rpcErr.Message)
		}
	} else {
		msg.Header.Set(message.HeaderCommStatus, strconv.Itoa(int(CodeOK)))
		if !payload.IsEmpty() {
			msg.Header.Set(message.HeaderContentType, string(payload.Format))
			msg.Data = payload.Data
		}
	}

	if err := s.conn.PublishMsg(ctx, msg); err != nil {
		s.logger.Warn("Failed to send reply", "subject", subject, "error", err)
	}
}
