// Package hornproto defines the request and response schema of the vehicle horn
// service: horn modes, on/off cycles, and the ActivateHorn / DeactivateHorn
// messages exchanged over RPC.
//
// Struct tags use integer keys so the CBOR encoding carries field numbers the
// same way the upstream COVESA horn service schema does. Zero-valued fields are
// omitted, which keeps an empty DeactivateHornRequest an empty map on the wire.
package hornproto
