package rpc_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/message"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/natsclient"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/rpc"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/testutil"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/uri"
)

var identity = uri.Identity{AuthorityName: "horn-service-kuksa", EntityID: 0x1C, MajorVersion: 1}

func method(id uri.ResourceID) uri.URI {
	return uri.URI{Identity: identity, Resource: id}
}

func source() uri.URI {
	return uri.URI{Identity: uri.Identity{AuthorityName: "horn-client", EntityID: 0x1000, MajorVersion: 1}}
}

func TestUCode_String(t *testing.T) {
	assert.Equal(t, "OK", rpc.CodeOK.String())
	assert.Equal(t, "DEADLINE_EXCEEDED", rpc.CodeDeadlineExceeded.String())
	assert.Equal(t, "UNAVAILABLE", rpc.CodeUnavailable.String())
	assert.Equal(t, "UCODE(99)", rpc.UCode(99).String())
}

func TestCallOptions_Validate(t *testing.T) {
	assert.NoError(t, rpc.ForRequest(time.Second).Validate())
	assert.Equal(t, rpc.PriorityCS4, rpc.ForRequest(time.Second).Priority)

	err := rpc.CallOptions{}.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	err = rpc.CallOptions{TTL: time.Second, Priority: "CS9"}.Validate()
	assert.True(t, errors.IsInvalid(err))
}

func TestError(t *testing.T) {
	e := &rpc.Error{Code: rpc.CodeUnavailable, Message: "no service", Err: nats.ErrNoResponders}
	assert.Contains(t, e.Error(), "UNAVAILABLE")
	assert.Contains(t, e.Error(), "no service")
	assert.ErrorIs(t, e, nats.ErrNoResponders)

	wrapped := fmt.Errorf("outer: %w", e)
	assert.Equal(t, rpc.CodeUnavailable, rpc.CodeOf(wrapped))
	assert.Equal(t, rpc.CodeOK, rpc.CodeOf(nil))
	assert.Equal(t, rpc.CodeUnknown, rpc.CodeOf(stderrors.New("plain")))
	assert.Equal(t, "rpc NOT_FOUND", rpc.NewError(rpc.CodeNotFound, "").Error())
}

// requester returns a fixed reply or error and keeps the request it saw.
type requester struct {
	reply *nats.Msg
	err   error
	seen  *nats.Msg
	wait  bool
}

func (r *requester) Request(ctx context.Context, msg *nats.Msg) (*nats.Msg, error) {
	r.seen = msg
	if r.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return r.reply, r.err
}

func TestNATSClient_RequestHeaders(t *testing.T) {
	req := &requester{reply: &nats.Msg{Header: nats.Header{}}}
	client := rpc.NewNATSClient(req, source(), nil)

	payload := &message.Payload{Data: []byte{0xa0}, Format: message.FormatCBOR}
	opts := rpc.CallOptions{TTL: 1000 * time.Millisecond, Priority: rpc.PriorityCS4, Token: "secret"}

	resp, err := client.InvokeMethod(context.Background(), method(0x0002), opts, payload)
	require.NoError(t, err)
	assert.Nil(t, resp)

	require.NotNil(t, req.seen)
	assert.Equal(t, "up.horn-service-kuksa.1c.1.2", req.seen.Subject)
	assert.Equal(t, "1000", req.seen.Header.Get(message.HeaderTTL))
	assert.Equal(t, "CS4", req.seen.Header.Get(message.HeaderPriority))
	assert.Equal(t, "secret", req.seen.Header.Get(message.HeaderToken))
	assert.Equal(t, "application/cbor", req.seen.Header.Get(message.HeaderContentType))
	assert.Equal(t, source().String(), req.seen.Header.Get(message.HeaderSource))
	assert.NotEmpty(t, req.seen.Header.Get(message.HeaderID))
	assert.Equal(t, []byte{0xa0}, req.seen.Data)
}

func TestNATSClient_TransportErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code rpc.UCode
	}{
		{"no responders", nats.ErrNoResponders, rpc.CodeUnavailable},
		{"not connected", errors.WrapTransient(natsclient.ErrNotConnected, "Client", "Request", "check connection"), rpc.CodeUnavailable},
		{"timeout", nats.ErrTimeout, rpc.CodeDeadlineExceeded},
		{"cancelled", context.Canceled, rpc.CodeCancelled},
		{"other", stderrors.New("boom"), rpc.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := rpc.NewNATSClient(&requester{err: tt.err}, source(), nil)
			_, err := client.InvokeMethod(context.Background(), method(1), rpc.ForRequest(time.Second), nil)
			require.Error(t, err)
			assert.Equal(t, tt.code, rpc.CodeOf(err))
		})
	}
}

func TestNATSClient_TTLBoundsCall(t *testing.T) {
	client := rpc.NewNATSClient(&requester{wait: true}, source(), nil)

	start := time.Now()
	_, err := client.InvokeMethod(context.Background(), method(1), rpc.ForRequest(20*time.Millisecond), nil)
	require.Error(t, err)
	assert.Equal(t, rpc.CodeDeadlineExceeded, rpc.CodeOf(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestNATSClient_InvalidOptions(t *testing.T) {
	req := &requester{}
	client := rpc.NewNATSClient(req, source(), nil)

	_, err := client.InvokeMethod(context.Background(), method(1), rpc.CallOptions{}, nil)
	assert.Equal(t, rpc.CodeInvalidArgument, rpc.CodeOf(err))
	assert.Nil(t, req.seen, "nothing is sent with invalid options")
}

func TestNATSClient_ReplyStatus(t *testing.T) {
	reply := &nats.Msg{Header: nats.Header{}}
	reply.Header.Set(message.HeaderCommStatus, "5")
	reply.Header.Set(message.HeaderCommStatusMsg, "no such method")

	client := rpc.NewNATSClient(&requester{reply: reply}, source(), nil)
	_, err := client.InvokeMethod(context.Background(), method(9), rpc.ForRequest(time.Second), nil)

	var rpcErr *rpc.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, rpc.CodeNotFound, rpcErr.Code)
	assert.Equal(t, "no such method", rpcErr.Message)
}

func TestNATSClient_ReplyUnknownFormat(t *testing.T) {
	reply := &nats.Msg{Header: nats.Header{}, Data: []byte("x")}
	reply.Header.Set(message.HeaderContentType, "application/x-unknown")

	client := rpc.NewNATSClient(&requester{reply: reply}, source(), nil)
	_, err := client.InvokeMethod(context.Background(), method(1), rpc.ForRequest(time.Second), nil)
	assert.Equal(t, rpc.CodeInternal, rpc.CodeOf(err))
}

func TestServer_RoundTrip(t *testing.T) {
	conn := testutil.NewMockNATSClient()
	ctx := context.Background()

	server := rpc.NewServer(conn, nil)
	var got *rpc.Request
	err := server.Register(ctx, method(1), func(_ context.Context, req *rpc.Request) (*message.Payload, error) {
		got = req
		return message.EncodeAs(message.FormatText, "pong")
	})
	require.NoError(t, err)

	client := rpc.NewNATSClient(conn, source(), nil)
	in, err := message.EncodeAs(message.FormatText, "ping")
	require.NoError(t, err)

	resp, err := client.InvokeMethod(ctx, method(1), rpc.ForRequest(time.Second), in)
	require.NoError(t, err)
	require.NotNil(t, resp)

	var body string
	require.NoError(t, message.Decode(resp, &body))
	assert.Equal(t, "pong", body)

	require.NotNil(t, got)
	assert.Equal(t, time.Second, got.TTL)
	assert.Equal(t, rpc.PriorityCS4, got.Priority)
	assert.Equal(t, source().String(), got.Source)
	assert.Equal(t, message.FormatText, got.Payload.Format)
}

func TestServer_EmptyReply(t *testing.T) {
	conn := testutil.NewMockNATSClient()
	ctx := context.Background()

	server := rpc.NewServer(conn, nil)
	require.NoError(t, server.Register(ctx, method(2), func(context.Context, *rpc.Request) (*message.Payload, error) {
		return nil, nil
	}))

	resp, err := rpc.NewNATSClient(conn, source(), nil).
		InvokeMethod(ctx, method(2), rpc.ForRequest(time.Second), nil)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestServer_HandlerErrors(t *testing.T) {
	conn := testutil.NewMockNATSClient()
	ctx := context.Background()
	server := rpc.NewServer(conn, nil)

	require.NoError(t, server.Register(ctx, method(1), func(context.Context, *rpc.Request) (*message.Payload, error) {
		return nil, rpc.NewError(rpc.CodeInvalidArgument, "bad mode")
	}))
	require.NoError(t, server.Register(ctx, method(2), func(context.Context, *rpc.Request) (*message.Payload, error) {
		return nil, stderrors.New("broken")
	}))

	client := rpc.NewNATSClient(conn, source(), nil)

	_, err := client.InvokeMethod(ctx, method(1), rpc.ForRequest(time.Second), nil)
	var rpcErr *rpc.Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, rpc.CodeInvalidArgument, rpcErr.Code)
	assert.Equal(t, "bad mode", rpcErr.Message)

	_, err = client.InvokeMethod(ctx, method(2), rpc.ForRequest(time.Second), nil)
	assert.Equal(t, rpc.CodeInternal, rpc.CodeOf(err))
}

func TestServer_UnsupportedFormat(t *testing.T) {
	conn := testutil.NewMockNATSClient()
	ctx := context.Background()

	called := false
	require.NoError(t, rpc.NewServer(conn, nil).Register(ctx, method(1),
		func(context.Context, *rpc.Request) (*message.Payload, error) {
			called = true
			return nil, nil
		}))

	payload := &message.Payload{Data: []byte("?"), Format: "application/x-unknown"}
	_, err := rpc.NewNATSClient(conn, source(), nil).
		InvokeMethod(ctx, method(1), rpc.ForRequest(time.Second), payload)
	assert.Equal(t, rpc.CodeInvalidArgument, rpc.CodeOf(err))
	assert.False(t, called)
}

func TestServer_RegisterNilHandler(t *testing.T) {
	err := rpc.NewServer(testutil.NewMockNATSClient(), nil).Register(context.Background(), method(1), nil)
	assert.True(t, errors.IsInvalid(err))
}

func TestNATSClient_NoResponders(t *testing.T) {
	conn := testutil.NewMockNATSClient()
	_, err := rpc.NewNATSClient(conn, source(), nil).
		InvokeMethod(context.Background(), method(1), rpc.ForRequest(time.Second), nil)
	assert.Equal(t, rpc.CodeUnavailable, rpc.CodeOf(err))
}

func TestServer_RateLimit(t *testing.T) {
	conn := testutil.NewMockNATSClient()
	ctx := context.Background()

	calls := 0
	server := rpc.NewServer(conn, nil, rpc.WithRateLimit(0.001, 1))
	require.NoError(t, server.Register(ctx, method(1), func(context.Context, *rpc.Request) (*message.Payload, error) {
		calls++
		return nil, nil
	}))

	client := rpc.NewNATSClient(conn, source(), nil)
	_, err := client.InvokeMethod(ctx, method(1), rpc.ForRequest(time.Second), nil)
	require.NoError(t, err)

	_, err = client.InvokeMethod(ctx, method(1), rpc.ForRequest(time.Second), nil)
	assert.Equal(t, rpc.CodeResourceExhausted, rpc.CodeOf(err))
	assert.Equal(t, 1, calls)
}
