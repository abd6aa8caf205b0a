package health

import (
	"regexp"
	"strings"
	"time"
)

var (
	urlRegex        = regexp.MustCompile(`(?:https?|nats|tls|wss?)://[^\s]+`)
	ipAddrRegex     = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}(?::\d{2,5})?\b`)
	credentialRegex = regexp.MustCompile(`(?i)(password|token|secret|credential)[^a-zA-Z]*[:=][^,\s}]+`)
)

// State is the health of a component.
type State string

// Health states, ordered from best to worst.
const (
	StateHealthy   State = "healthy"
	StateDegraded  State = "degraded"
	StateUnhealthy State = "unhealthy"
)

func (s State) rank() int {
	switch s {
	case StateHealthy:
		return 0
	case StateDegraded:
		return 1
	default:
		return 2
	}
}

// Status is the result of a health check.
type Status struct {
	Component   string    `json:"component"`
	State       State     `json:"status"`
	Message     string    `json:"message,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	SubStatuses []Status  `json:"sub_statuses,omitempty"`
}

// Healthy reports whether the status is healthy.
func (s Status) Healthy() bool {
	return s.State == StateHealthy
}

// NewHealthy creates a healthy status.
func NewHealthy(component, message string) Status {
	return Status{Component: component, State: StateHealthy, Message: message, Timestamp: time.Now()}
}

// NewDegraded creates a degraded status.
func NewDegraded(component, message string) Status {
	return Status{Component: component, State: StateDegraded, Message: message, Timestamp: time.Now()}
}

// NewUnhealthy creates an unhealthy status. The message is sanitized.
func NewUnhealthy(component, message string) Status {
	return Status{
		Component: component,
		State:     StateUnhealthy,
		Message:   sanitizeMessage(message),
		Timestamp: time.Now(),
	}
}

// Aggregate folds sub into one status for component. The worst state wins.
func Aggregate(component string, sub []Status) Status {
	worst := StateHealthy
	for _, s := range sub {
		if s.State.rank() > worst.rank() {
			worst = s.State
		}
	}

	var status Status
	switch worst {
	case StateUnhealthy:
		status = NewUnhealthy(component, "One or more components are unhealthy")
	case StateDegraded:
		status = NewDegraded(component, "One or more components are degraded")
	default:
		status = NewHealthy(component, "All components are healthy")
	}
	if len(sub) > 0 {
		status.SubStatuses = append([]Status(nil), sub...)
	}
	return status
}

// sanitizeMessage strips addresses and credentials from error text.
func sanitizeMessage(msg string) string {
	if msg == "" {
		return ""
	}

	msg = urlRegex.ReplaceAllString(msg, "[URL]")
	msg = ipAddrRegex.ReplaceAllString(msg, "[IP]")

	lower := strings.ToLower(msg)
	if strings.Contains(lower, "password") || strings.Contains(lower, "token") ||
		strings.Contains(lower, "secret") || strings.Contains(lower, "credential") {
		msg = credentialRegex.ReplaceAllString(msg, "[REDACTED]")
	}
	return msg
}
