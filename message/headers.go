package message

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Header keys used on the bus.
const (
	HeaderID            = "up-id"
	HeaderTTL           = "up-ttl"
	HeaderPriority      = "up-priority"
	HeaderToken         = "up-token"
	HeaderSource        = "up-source"
	HeaderCommStatus    = "up-commstatus"
	HeaderCommStatusMsg = "up-commstatus-message"
	HeaderContentType   = "Content-Type"

	// HeaderAttachment carries the out-of-band tag of pub/sub messages.
	HeaderAttachment = "Attachment"
)

// NewID returns a new time-ordered message id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// FormatTTL renders a TTL header value in milliseconds.
func FormatTTL(ttl time.Duration) string {
	return strconv.FormatInt(ttl.Milliseconds(), 10)
}

// ParseTTL reads a TTL header value. Missing or malformed values return zero.
func ParseTTL(s string) time.Duration {
	ms, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}
