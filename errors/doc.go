// Package errors provides the error classification used across the horn
// client, the software horn and the horn service.
//
// # Error Classification
//
// Errors fall into three classes that drive how a caller reacts:
//
//   - Transient: bus timeouts, lost connections, no responders (log, keep going)
//   - Invalid: malformed commands, bad configuration, invalid horn requests (do not retry)
//   - Fatal: unrecoverable startup failures (terminate the process)
//
// Wrapping follows a single format so log lines stay greppable:
//
//	"component.method: action failed: %w"
//
// Use the classification-aware wrappers at the point where the class is known:
//
//	if err := client.Connect(ctx); err != nil {
//	    return errors.WrapTransient(err, "Client", "Connect", "establish connection")
//	}
//
//	if len(req.Cycles()) == 0 {
//	    return errors.WrapInvalid(errors.ErrInvalidHornRequest, "horn", "NewActivation", "validate cycles")
//	}
//
// Classification survives further wrapping with Wrap and is inspected with
// IsTransient, IsInvalid, IsFatal or Classify. All helpers work with the
// standard errors.Is / errors.As chain.
package errors
