// Package config loads the configuration shared by the horn processes.
//
// A configuration file is JSONC (JSON with comments and trailing commas, the
// default for .json, .jsonc and .json5 files) or YAML (.yaml, .yml). Files are
// layered over Default: only the keys present in a file override the layer
// below. Environment variables prefixed with HORN_ are applied last:
//
//	HORN_NATS_URLS                 comma separated server URLs
//	HORN_NATS_USERNAME / _PASSWORD credentials
//	HORN_NATS_TOKEN                token authentication
//	HORN_BRIDGE_TOPIC              horn topic
//	HORN_BRIDGE_MALFORMED_POLICY   discard | coerce-false
//	HORN_METRICS_PORT              metrics port, 0 for the process default, -1 disables
//
// Example:
//
//	{
//	  // local development broker
//	  "nats": {"urls": ["nats://localhost:4222"], "reconnect_wait": "2s", "drain_timeout": "3s"},
//	  "bridge": {"malformed_policy": "discard"},
//	  "metrics": {"port": 9090},
//	}
package config
