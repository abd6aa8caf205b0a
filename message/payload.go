package message

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
)

// Format identifies the encoding of a payload.
type Format string

// Supported payload formats
const (
	FormatCBOR Format = "application/cbor"
	FormatJSON Format = "application/json"
	FormatText Format = "text/plain"
)

// ParseFormat maps a Content-Type header value to a Format. An empty value
// defaults to CBOR.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCBOR:
		return FormatCBOR, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownFormat, s)
	}
}

// Payload is an encoded message body.
type Payload struct {
	Data   []byte
	Format Format
}

// IsEmpty reports whether the payload carries no bytes.
func (p *Payload) IsEmpty() bool {
	return p == nil || len(p.Data) == 0
}

// String returns a short description for logs.
func (p *Payload) String() string {
	if p == nil {
		return "<nil payload>"
	}
	return fmt.Sprintf("%s (%d bytes)", p.Format, len(p.Data))
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	// Core deterministic encoding keeps identical requests byte-identical.
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("message: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("message: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode encodes v as CBOR.
func Encode(v any) (*Payload, error) {
	return EncodeAs(FormatCBOR, v)
}

// EncodeAs encodes v using the given format. FormatText accepts string and
// fmt.Stringer values only.
func EncodeAs(format Format, v any) (*Payload, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatCBOR:
		data, err = encMode.Marshal(v)
	case FormatJSON:
		data, err = json.Marshal(v)
	case FormatText:
		switch s := v.(type) {
		case string:
			data = []byte(s)
		case fmt.Stringer:
			data = []byte(s.String())
		default:
			err = fmt.Errorf("%w: %T is not text", errors.ErrInvalidData, v)
		}
	default:
		err = fmt.Errorf("%w: %q", errors.ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, errors.WrapInvalid(err, "message", "EncodeAs", "encode payload")
	}

	return &Payload{Data: data, Format: format}, nil
}

// Decode decodes p into v according to p.Format. An empty payload is an error.
func Decode(p *Payload, v any) error {
	if p.IsEmpty() {
		return errors.WrapInvalid(errors.ErrEmptyResponse, "message", "Decode", "decode payload")
	}

	var err error
	switch p.Format {
	case FormatCBOR, "":
		err = decMode.Unmarshal(p.Data, v)
	case FormatJSON:
		err = json.Unmarshal(p.Data, v)
	case FormatText:
		s, ok := v.(*string)
		if !ok {
			err = fmt.Errorf("%w: text payload into %T", errors.ErrInvalidData, v)
			break
		}
		*s = string(p.Data)
	default:
		err = fmt.Errorf("%w: %q", errors.ErrUnknownFormat, p.Format)
	}
	if err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err), "message", "Decode", "decode payload")
	}
	return nil
}
