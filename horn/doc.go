// Package horn drives the COVESA horn service over RPC.
//
// BuildActivation and BuildDeactivation produce the canonical requests;
// NewActivation builds validated custom patterns. Client sends them to the
// horn service's activate and deactivate methods with a fixed 1000 ms TTL.
//
// Each method carries a Policy. Activation is FireAndForget: an empty reply
// is fine. Deactivation is ConfirmRequired: an empty reply is logged as an
// error. In both cases RPC failures are logged and the call still succeeds,
// so a controller sequencing horn commands never halts on one lost command.
// Only failures that happen before anything is sent (URI resolution, payload
// encoding) are returned.
//
// RunExampleLoop is the demonstration cadence used by cmd/horn-client.
package horn
