package bridge

import (
	"fmt"
	"strings"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/errors"
)

// Tag classifies a message on the horn topic.
type Tag int

const (
	// TagTarget marks a command carrying the desired horn state.
	TagTarget Tag = iota + 1
	// TagCurrent marks a report carrying the confirmed horn state.
	TagCurrent
)

// String returns the attachment value of the tag.
func (t Tag) String() string {
	switch t {
	case TagTarget:
		return "targetValue"
	case TagCurrent:
		return "currentValue"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

// ParseTag maps an attachment value onto a Tag. Matching is exact.
func ParseTag(s string) (Tag, error) {
	switch s {
	case "targetValue":
		return TagTarget, nil
	case "currentValue":
		return TagCurrent, nil
	default:
		return 0, fmt.Errorf("%w: %q", errors.ErrUnknownTag, s)
	}
}

// MalformedPolicy decides what happens to a command whose body is not a boolean.
type MalformedPolicy int

const (
	// Discard logs the command as an error and drops it.
	Discard MalformedPolicy = iota
	// CoerceFalse handles readable non-boolean text as "false".
	CoerceFalse
)

func (p MalformedPolicy) String() string {
	switch p {
	case Discard:
		return "discard"
	case CoerceFalse:
		return "coerce-false"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseMalformedPolicy reads the String form of a MalformedPolicy. Empty means Discard.
func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "discard":
		return Discard, nil
	case "coerce-false", "coerce_false":
		return CoerceFalse, nil
	default:
		return 0, errors.WrapInvalid(fmt.Errorf("%w: malformed policy %q", errors.ErrInvalidConfig, s),
			"bridge", "ParseMalformedPolicy", "parse policy")
	}
}

// parseBool accepts exactly "true" and "false".
func parseBool(body []byte) (bool, error) {
	switch string(body) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", errors.ErrMalformedBoolean, body)
	}
}
