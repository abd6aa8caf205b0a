// Package health aggregates component health checks into a single process
// status and serves it as JSON.
//
// Components register a Check with a Monitor. Report runs every check and
// folds the results: any unhealthy check makes the process unhealthy, any
// degraded check without an unhealthy one makes it degraded. Messages are
// sanitized before they leave the process so URLs and credentials in error
// strings are not exposed on the endpoint.
package health
