// Package servicetosignal connects a horn service API to a horn signal on a
// vehicle bus over NATS.
//
// Three processes make up the system:
//
//   - horn-client (cmd/horn-client) calls the horn service's activate and
//     deactivate methods with NATS request/reply and runs an example
//     sequence.
//   - horn-service (cmd/horn-service) answers those methods and plays the
//     requested pattern by publishing target values for
//     Vehicle/Body/Horn/IsActive.
//   - software-horn (cmd/software-horn) applies target values to a software
//     actuator and publishes the resulting current value.
//
// The packages split along the same lines: hornproto holds the wire
// messages, uri addresses services, rpc carries calls, bus carries tagged
// signal updates, horn and bridge hold the client and the signal bridge,
// and natsclient, config, metric, health and app provide the shared
// process plumbing.
package servicetosignal
