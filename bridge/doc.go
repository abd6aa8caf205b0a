// Package bridge turns horn commands on the shared horn topic into actuator
// state and state reports.
//
// Commands and reports share one topic and are told apart by the attachment
// tag: "targetValue" marks a command, "currentValue" a report. The bridge
// reacts to targetValue messages only, so its own reports never retrigger it.
//
// A command body must be exactly "true" or "false". Anything else is governed
// by MalformedPolicy: Discard (the default) logs an error and drops the
// message; CoerceFalse treats readable but unrecognised text as "false" and
// still drops bodies that are not valid UTF-8.
//
// Messages are handled one at a time in arrival order. Publish failures are
// logged and the loop keeps running; only a failing subscription ends Run.
package bridge
