package message

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/hornproto"
)

func TestEncodeDecode_CBOR(t *testing.T) {
	req := hornproto.ActivateHornRequest{
		Mode: hornproto.ModeSequenced,
		Command: []hornproto.HornSequence{
			{HornCycles: []hornproto.HornCycle{{OnTime: 100, OffTime: 100}, {OnTime: 10000, OffTime: 500}}},
		},
	}

	p, err := Encode(req)
	require.NoError(t, err)
	assert.Equal(t, FormatCBOR, p.Format)
	assert.False(t, p.IsEmpty())

	var decoded hornproto.ActivateHornRequest
	require.NoError(t, Decode(p, &decoded))
	assert.Equal(t, req, decoded)
}

func TestEncode_Deterministic(t *testing.T) {
	req := hornproto.ActivateHornRequest{Mode: hornproto.ModeContinuous, Command: []hornproto.HornSequence{{}}}

	a, err := Encode(req)
	require.NoError(t, err)
	b, err := Encode(req)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)
}

func TestEncode_EmptyDeactivateIsEmptyMap(t *testing.T) {
	p, err := Encode(hornproto.DeactivateHornRequest{})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xa0}, p.Data)
}

func TestEncodeDecode_JSON(t *testing.T) {
	resp := hornproto.ActivateHornResponse{Status: hornproto.Status{Code: 3, Message: "bad mode"}}

	p, err := EncodeAs(FormatJSON, resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":{"code":3,"message":"bad mode"}}`, string(p.Data))

	var decoded hornproto.ActivateHornResponse
	require.NoError(t, Decode(p, &decoded))
	assert.Equal(t, resp, decoded)
}

func TestEncodeDecode_Text(t *testing.T) {
	p, err := EncodeAs(FormatText, "true")
	require.NoError(t, err)

	var s string
	require.NoError(t, Decode(p, &s))
	assert.Equal(t, "true", s)

	_, err = EncodeAs(FormatText, 42)
	assert.True(t, errors.IsInvalid(err))
}

func TestDecode_Errors(t *testing.T) {
	var resp hornproto.ActivateHornResponse

	err := Decode(nil, &resp)
	assert.ErrorIs(t, err, errors.ErrEmptyResponse)

	err = Decode(&Payload{Data: []byte{0xff, 0x00}, Format: FormatCBOR}, &resp)
	assert.ErrorIs(t, err, errors.ErrParsingFailed)
	assert.True(t, errors.IsInvalid(err))

	err = Decode(&Payload{Data: []byte("x"), Format: "application/x-protobuf"}, &resp)
	assert.ErrorIs(t, err, errors.ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCBOR, f)

	f, err = ParseFormat("application/json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("image/png")
	assert.ErrorIs(t, err, errors.ErrUnknownFormat)
}

func TestHeaders_TTLAndID(t *testing.T) {
	assert.Equal(t, "1000", FormatTTL(time.Second))
	assert.Equal(t, time.Second, ParseTTL("1000"))
	assert.Zero(t, ParseTTL("soon"))

	id, err := uuid.Parse(NewID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}
