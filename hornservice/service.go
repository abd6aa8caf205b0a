// Package hornservice serves the horn activate and deactivate methods and
// drives the horn topic with targetValue commands.
//
// An activation replaces any playback in progress. Continuous mode switches
// the horn on until deactivated; sequenced mode switches it on and off
// following the cycle durations, then leaves it off.
package hornservice

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/bridge"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/bus"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/horn"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/hornproto"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/message"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/metric"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/rpc"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/uri"
)

// Registrar registers method handlers. *rpc.Server satisfies it.
type Registrar interface {
	Register(ctx context.Context, method uri.URI, handler rpc.Handler) error
}

// Service is the horn service.
type Service struct {
	bus      bus.Bus
	topic    string
	identity uri.Identity
	sleep    horn.Sleeper
	logger   *slog.Logger
	metrics  *metric.Metrics

	mu       sync.Mutex
	playback *playback
}

type playback struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithTopic overrides bus.HornTopic.
func WithTopic(topic string) Option {
	return func(s *Service) {
		if topic != "" {
			s.topic = topic
		}
	}
}

// WithIdentity overrides horn.ServiceIdentity.
func WithIdentity(id uri.Identity) Option {
	return func(s *Service) {
		s.identity = id
	}
}

// WithSleeper replaces the timer used between cycle phases.
func WithSleeper(sleep horn.Sleeper) Option {
	return func(s *Service) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records service metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates a horn service publishing on b.
func New(b bus.Bus, opts ...Option) *Service {
	s := &Service{
		bus:      b,
		topic:    bus.HornTopic,
		identity: horn.ServiceIdentity(),
		sleep:    horn.Sleep,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "horn-service")
	return s
}

// Register serves both methods on r.
func (s *Service) Register(ctx context.Context, r Registrar) error {
	if err := s.identity.Validate(); err != nil {
		return errors.Wrap(err, "Service", "Register", "validate identity")
	}

	methods := []struct {
		id      uri.ResourceID
		handler rpc.Handler
	}{
		{horn.ActivateResource, s.HandleActivate},
		{horn.DeactivateResource, s.HandleDeactivate},
	}
	for _, m := range methods {
		if err := r.Register(ctx, uri.URI{Identity: s.identity, Resource: m.id}, m.handler); err != nil {
			return errors.Wrap(err, "Service", "Register", "register method")
		}
	}
	return nil
}

// Run registers the methods and serves until ctx is done, then stops playback.
func (s *Service) Run(ctx context.Context, r Registrar) error {
	if err := s.Register(ctx, r); err != nil {
		return err
	}
	s.logger.Info("Horn service ready", "authority", s.identity.AuthorityName)

	<-ctx.Done()
	s.Stop()
	return nil
}

// HandleActivate serves the activate method.
func (s *Service) HandleActivate(ctx context.Context, req *rpc.Request) (*message.Payload, error) {
	var activation hornproto.ActivateHornRequest
	if err := message.Decode(req.Payload, &activation); err != nil {
		s.metrics.RecordServiceRequest("activate", rpc.CodeInvalidArgument.String())
		return nil, &rpc.Error{Code: rpc.CodeInvalidArgument, Message: "undecodable activate request", Err: err}
	}
	if err := activation.Validate(); err != nil {
		s.metrics.RecordServiceRequest("activate", rpc.CodeInvalidArgument.String())
		return nil, &rpc.Error{Code: rpc.CodeInvalidArgument, Message: err.Error(), Err: err}
	}

	s.logger.Info("Activating horn", "request", activation.String(), "id", req.ID)
	s.start(ctx, activation)

	s.metrics.RecordServiceRequest("activate", rpc.CodeOK.String())
	return encodeReply(req, hornproto.ActivateHornResponse{Status: hornproto.Status{Code: int32(rpc.CodeOK)}})
}

// HandleDeactivate serves the deactivate method.
func (s *Service) HandleDeactivate(ctx context.Context, req *rpc.Request) (*message.Payload, error) {
	if !req.Payload.IsEmpty() {
		var deactivation hornproto.DeactivateHornRequest
		if err := message.Decode(req.Payload, &deactivation); err != nil {
			s.metrics.RecordServiceRequest("deactivate", rpc.CodeInvalidArgument.String())
			return nil, &rpc.Error{Code: rpc.CodeInvalidArgument, Message: "undecodable deactivate request", Err: err}
		}
	}

	s.logger.Info("Deactivating horn", "id", req.ID)
	s.mu.Lock()
	s.stopLocked()
	s.publish(ctx, false)
	s.mu.Unlock()

	s.metrics.RecordServiceRequest("deactivate", rpc.CodeOK.String())
	return encodeReply(req, hornproto.DeactivateHornResponse{Status: hornproto.Status{Code: int32(rpc.CodeOK)}})
}

// Stop cancels the running playback and waits for it to end.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Wait blocks until the current playback, if any, has finished.
func (s *Service) Wait() {
	s.mu.Lock()
	p := s.playback
	s.mu.Unlock()

	if p != nil {
		<-p.done
	}
}

// stopLocked must be called with s.mu held. Playback goroutines never take
// s.mu, so waiting here cannot deadlock.
func (s *Service) stopLocked() {
	if s.playback == nil {
		return
	}
	s.playback.cancel()
	<-s.playback.done
	s.playback = nil
}

func (s *Service) start(ctx context.Context, activation hornproto.ActivateHornRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	// Playback outlives the request that started it.
	pctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p := &playback{cancel: cancel, done: make(chan struct{})}
	s.playback = p

	go func() {
		defer close(p.done)
		defer cancel()
		s.play(pctx, activation)
	}()
}

func (s *Service) play(ctx context.Context, activation hornproto.ActivateHornRequest) {
	if activation.Mode == hornproto.ModeContinuous {
		s.publish(ctx, true)
		return
	}

	for i, cycle := range activation.Cycles() {
		s.logger.Debug("Playing cycle", "index", i, "cycle", cycle.String())

		s.publish(ctx, true)
		if err := s.sleep(ctx, time.Duration(cycle.OnTime)*time.Millisecond); err != nil {
			return
		}
		s.publish(ctx, false)
		if err := s.sleep(ctx, time.Duration(cycle.OffTime)*time.Millisecond); err != nil {
			return
		}
	}
}

func (s *Service) publish(ctx context.Context, on bool) {
	err := s.bus.Publish(ctx, s.topic, bus.Message{
		Body:       []byte(strconv.FormatBool(on)),
		Attachment: bridge.TagTarget.String(),
	})
	if err != nil {
		s.logger.Warn("Failed to publish target value", "on", on, "error", err)
	}
}

func encodeReply(req *rpc.Request, v any) (*message.Payload, error) {
	format := message.FormatCBOR
	if req.Payload != nil && req.Payload.Format == message.FormatJSON {
		format = message.FormatJSON
	}
	payload, err := message.EncodeAs(format, v)
	if err != nil {
		return nil, &rpc.Error{Code: rpc.CodeInternal, Message: "encode reply", Err: err}
	}
	return payload, nil
}
