package horn

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/hornproto"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/message"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/metric"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/rpc"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/uri"
)

// Horn service identity.
const (
	ServiceAuthority    = "horn-service-kuksa"
	ServiceEntityID     = 0x1C
	ServiceMajorVersion = 1

	ActivateResource   uri.ResourceID = 0x0001
	DeactivateResource uri.ResourceID = 0x0002

	// CallTimeout bounds every horn RPC.
	CallTimeout = 1000 * time.Millisecond
)

// ServiceIdentity returns the identity of the horn service.
func ServiceIdentity() uri.Identity {
	return uri.Identity{
		AuthorityName: ServiceAuthority,
		EntityID:      ServiceEntityID,
		MajorVersion:  ServiceMajorVersion,
	}
}

// Policy decides how a call site treats a reply without payload.
type Policy int

const (
	// FireAndForget accepts an empty reply as success.
	FireAndForget Policy = iota
	// ConfirmRequired expects a response payload and logs its absence as an error.
	ConfirmRequired
)

func (p Policy) String() string {
	switch p {
	case FireAndForget:
		return "fire-and-forget"
	case ConfirmRequired:
		return "confirm-required"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// Method describes one horn service method and its call-site policy.
type Method struct {
	Name     string
	Resource uri.ResourceID
	Policy   Policy
}

var (
	ActivateMethod   = Method{Name: "activate", Resource: ActivateResource, Policy: FireAndForget}
	DeactivateMethod = Method{Name: "deactivate", Resource: DeactivateResource, Policy: ConfirmRequired}
)

// Outcome classifies how a call ended.
type Outcome int

const (
	OutcomeResponse Outcome = iota
	OutcomeEmpty
	OutcomeFailed
	OutcomeDecodeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResponse:
		return "response"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	case OutcomeDecodeFailed:
		return "decode_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// CallResult is the typed result of one horn RPC.
type CallResult struct {
	Outcome  Outcome
	Response fmt.Stringer
	Err      error
}

// Resolver maps resource ids of the horn service to URIs.
// *uri.StaticProvider satisfies it.
type Resolver interface {
	ResourceURI(id uri.ResourceID) uri.URI
}

// Client sends horn commands. Calls run on the caller's goroutine, one
// attempt each.
type Client struct {
	rpc     rpc.Client
	uris    Resolver
	logger  *slog.Logger
	metrics *metric.Metrics
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records per-call metrics.
func WithMetrics(m *metric.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a horn client on top of an RPC client.
func NewClient(rpcClient rpc.Client, uris Resolver, opts ...ClientOption) *Client {
	c := &Client{
		rpc:    rpcClient,
		uris:   uris,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "horn-client")
	return c
}

// ActivatePrebuilt activates the horn with a canonical pattern.
func (c *Client) ActivatePrebuilt(ctx context.Context, tag PrebuiltRequest) error {
	return c.Activate(ctx, BuildActivation(tag))
}

// Activate asks the horn service to sound the horn as described by req.
func (c *Client) Activate(ctx context.Context, req hornproto.ActivateHornRequest) error {
	_, err := c.call(ctx, ActivateMethod, req, &hornproto.ActivateHornResponse{})
	return err
}

// Deactivate asks the horn service to silence the horn.
func (c *Client) Deactivate(ctx context.Context) error {
	_, err := c.call(ctx, DeactivateMethod, BuildDeactivation(), &hornproto.DeactivateHornResponse{})
	return err
}

// call performs one RPC and logs its outcome according to m.Policy. The
// returned error is non-nil only if the request could not be sent.
func (c *Client) call(ctx context.Context, m Method, req any, resp fmt.Stringer) (CallResult, error) {
	target := c.uris.ResourceURI(m.Resource)
	if err := target.Validate(); err != nil {
		return CallResult{}, errors.Wrap(err, "Client", m.Name, "resolve method uri")
	}

	payload, err := message.Encode(req)
	if err != nil {
		return CallResult{}, errors.Wrap(err, "Client", m.Name, "encode request")
	}

	start := time.Now()
	reply, err := c.rpc.InvokeMethod(ctx, target, rpc.ForRequest(CallTimeout), payload)

	var result CallResult
	switch {
	case err != nil:
		result = CallResult{Outcome: OutcomeFailed, Err: err}
	case reply.IsEmpty():
		result = CallResult{Outcome: OutcomeEmpty}
	default:
		if derr := message.Decode(reply, resp); derr != nil {
			result = CallResult{Outcome: OutcomeDecodeFailed, Err: derr}
		} else {
			result = CallResult{Outcome: OutcomeResponse, Response: resp}
		}
	}

	c.metrics.RecordRPCCall(m.Name, result.Outcome.String(), time.Since(start))
	c.report(m, target, result)
	return result, nil
}

func (c *Client) report(m Method, target uri.URI, result CallResult) {
	log := c.logger.With("method", m.Name, "uri", target.String(), "policy", m.Policy.String())

	switch result.Outcome {
	case OutcomeResponse:
		log.Info(fmt.Sprintf("The %s horn request returned successfully", m.Name), "response", result.Response.String())
	case OutcomeEmpty:
		msg := fmt.Sprintf("The %s horn request returned an empty response", m.Name)
		if m.Policy == ConfirmRequired {
			log.Error(msg)
			return
		}
		log.Info(msg)
	case OutcomeDecodeFailed:
		log.Error(fmt.Sprintf("The %s horn response could not be decoded", m.Name), "error", result.Err)
	case OutcomeFailed:
		log.Error(fmt.Sprintf("The %s horn request returned an error", m.Name),
			"code", rpc.CodeOf(result.Err).String(), "error", result.Err)
	}
}
