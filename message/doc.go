// Package message carries RPC payloads between the horn client and the horn
// service.
//
// A Payload is the encoded bytes plus the Format needed to decode them. The
// format travels in the Content-Type header next to the uProtocol-style
// attributes (message id, TTL, priority, communication status) defined in
// headers.go.
//
//	p, err := message.Encode(req)               // CBOR by default
//	var resp hornproto.ActivateHornResponse
//	err = message.Decode(p, &resp)
package message
